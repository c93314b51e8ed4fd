package funcexec

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/template"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// maxResponseBytes caps how much of a function response is read. Responses
// feed equation conditions and variable mapping, not bulk transfer.
const maxResponseBytes = 1 << 20

var arrayIndex = regexp.MustCompile(`\[(\d+)\]`)

func (e *Executor) executeHTTP(ctx context.Context, cfg *domain.HTTPConfig, bindings domain.Bindings) Result {
	timeout := e.httpTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	url := template.Substitute(cfg.URL, bindings)

	var body io.Reader
	if cfg.Body != "" {
		body = strings.NewReader(template.Substitute(cfg.Body, bindings))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		e.logger.Warn("http function request build failed", "url", url, "err", err)
		return Result{Success: false, Variables: domain.Bindings{}}
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, template.Substitute(v, bindings))
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Timeouts and transport failures degrade identically.
		e.logger.Warn("http function call failed", "url", url, "err", err)
		return Result{Success: false, Variables: domain.Bindings{}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		e.logger.Warn("http function body read failed", "url", url, "err", err)
		return Result{Success: false, Variables: domain.Bindings{}}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Warn("http function non-2xx", "url", url, "status", resp.StatusCode)
		return Result{Success: false, Variables: domain.Bindings{}}
	}

	vars := domain.Bindings{domain.KeyRawResponse: string(raw)}
	if len(cfg.ResponseMap) > 0 {
		isJSON := gjson.ValidBytes(raw)
		for name, path := range cfg.ResponseMap {
			if !isJSON {
				vars[name] = nil
				continue
			}
			field := gjson.GetBytes(raw, normalizePath(path))
			if !field.Exists() {
				// Stored as nil, not "", so downstream exists checks see it
				// as absent.
				vars[name] = nil
				continue
			}
			vars[name] = field.Value()
		}
	}
	return Result{Success: true, Variables: vars}
}

// normalizePath converts dot-notation with name[index] array access into a
// gjson path: "items[2].price" -> "items.2.price".
func normalizePath(p string) string {
	return arrayIndex.ReplaceAllString(p, ".$1")
}
