package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/validator"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/schema"
)

// Loader implements ports.FlowLoader from an in-memory map.
// Safe for concurrent use.
type Loader struct {
	flows map[string]*domain.Flow
	mu    sync.RWMutex
}

// NewLoader creates an empty in-memory loader.
func NewLoader() *Loader {
	return &Loader{flows: make(map[string]*domain.Flow)}
}

// NewFromFlows creates a loader pre-populated with parsed flows.
// Handy for tests and embedded deployments.
func NewFromFlows(flows ...*domain.Flow) (*Loader, error) {
	l := NewLoader()
	for _, f := range flows {
		if err := l.AddFlow(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewFromDocuments parses raw flow documents (JSON or YAML) keyed by flow ID.
// The document's own id attribute wins when it is set.
func NewFromDocuments(docs map[string][]byte) (*Loader, error) {
	l := NewLoader()
	for id, data := range docs {
		flow, err := schema.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing flow %q: %w", id, err)
		}
		if flow.ID == "" {
			flow.ID = id
		}
		if err := l.AddFlow(flow); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewFromDir loads every .json, .yaml, and .yml flow document in dir,
// validating each. A document without its own id gets the file's base name.
func NewFromDir(dir string) (*Loader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading flow directory: %w", err)
	}

	l := NewLoader()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		flow, err := schema.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		if flow.ID == "" {
			flow.ID = strings.TrimSuffix(entry.Name(), ext)
		}
		if err := validator.ValidateFlow(flow); err != nil {
			return nil, err
		}
		if err := l.AddFlow(flow); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AddFlow registers a flow, replacing any previous flow with the same ID.
func (l *Loader) AddFlow(flow *domain.Flow) error {
	if flow == nil || flow.ID == "" {
		return fmt.Errorf("flow missing ID")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flows[flow.ID] = flow
	return nil
}

// GetFlow retrieves a flow by ID.
func (l *Loader) GetFlow(ctx context.Context, id string) (*domain.Flow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	flow, ok := l.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, id)
	}
	return flow, nil
}

// ListFlows returns all registered flow IDs in deterministic order.
func (l *Loader) ListFlows(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.flows))
	for id := range l.flows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
