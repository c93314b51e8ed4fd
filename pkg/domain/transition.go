package domain

// Transition condition types.
const (
	// ConditionEquation is a deterministic expression over variables and
	// the latest user utterance.
	ConditionEquation = "equation"
	// ConditionPrompt is a natural-language criterion resolved by the model.
	ConditionPrompt = "prompt"
)

// TransitionCondition is a rule gating one labeled exit from a node.
// Authored order is significant and must be preserved exactly.
type TransitionCondition struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Type      string `json:"type" yaml:"type" mapstructure:"type"`
	Condition string `json:"condition" yaml:"condition" mapstructure:"condition"`
	Handle    string `json:"handle" yaml:"handle" mapstructure:"handle"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}
