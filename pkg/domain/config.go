package domain

// ContentMode selects how a conversation node produces speech.
const (
	// ContentStatic speaks the authored text verbatim (after substitution).
	ContentStatic = "static"
	// ContentPrompt generates speech from the authored prompt via the model.
	ContentPrompt = "prompt"
)

// ExecutionType selects how a function node performs its side-effect.
const (
	ExecutionHTTP = "http"
	ExecutionCode = "code"
)

// TransferMode selects the handoff style of a call_transfer node.
const (
	// TransferCold hands the call off immediately.
	TransferCold = "cold"
	// TransferWarm keeps the caller while the destination is dialed.
	TransferWarm = "warm"
)

// ModelParams carries per-node overrides for the completion model.
type ModelParams struct {
	Model       string   `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" mapstructure:"temperature"`
	MaxTokens   *int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" mapstructure:"max_tokens"`
}

// StartConfig configures the entry node.
type StartConfig struct {
	// Greeting is spoken when SpeakFirst is set; otherwise the node is a
	// silent pass-through to its default edge.
	Greeting   string `json:"greeting,omitempty" yaml:"greeting,omitempty" mapstructure:"greeting"`
	SpeakFirst bool   `json:"speak_first,omitempty" yaml:"speak_first,omitempty" mapstructure:"speak_first"`
}

// ConversationConfig configures a speaking/listening node.
type ConversationConfig struct {
	// Mode is ContentStatic or ContentPrompt.
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
	// Content is the static text or the base prompt, depending on Mode.
	Content     string                `json:"content" yaml:"content" mapstructure:"content"`
	Transitions []TransitionCondition `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
	Model       ModelParams           `json:"model_params,omitempty" yaml:"model_params,omitempty" mapstructure:"model_params"`
}

// HTTPConfig configures an outbound HTTP call.
type HTTPConfig struct {
	Method  string            `json:"method" yaml:"method" mapstructure:"method"`
	URL     string            `json:"url" yaml:"url" mapstructure:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty" mapstructure:"body"`
	// TimeoutSeconds bounds the whole call; zero means the executor default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	// ResponseMap assigns dot-notation paths (with optional name[index]
	// array access) of the JSON response body to named variables.
	ResponseMap map[string]string `json:"response_map,omitempty" yaml:"response_map,omitempty" mapstructure:"response_map"`
}

// CodeConfig configures a sandboxed transformation.
type CodeConfig struct {
	// Source is the caller-authored chunk; its return value becomes the
	// value of Output.
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	// Inputs whitelists the variables visible inside the sandbox.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
	Output string   `json:"output" yaml:"output" mapstructure:"output"`
	// TimeoutMillis bounds execution of untrusted code; zero means the
	// executor default.
	TimeoutMillis int `json:"timeout_millis,omitempty" yaml:"timeout_millis,omitempty" mapstructure:"timeout_millis"`
}

// FunctionConfig configures an external side-effect node.
type FunctionConfig struct {
	// ExecutionType is ExecutionHTTP or ExecutionCode.
	ExecutionType string      `json:"execution_type" yaml:"execution_type" mapstructure:"execution_type"`
	HTTP          *HTTPConfig `json:"http,omitempty" yaml:"http,omitempty" mapstructure:"http"`
	Code          *CodeConfig `json:"code,omitempty" yaml:"code,omitempty" mapstructure:"code"`
	// Speech, if set, is spoken while the function executes; the node then
	// waits a turn before moving on. Without it the node is a transparent
	// hop within the same turn.
	Speech      string                `json:"speech,omitempty" yaml:"speech,omitempty" mapstructure:"speech"`
	Transitions []TransitionCondition `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
}

// Assignment operations for set_variable nodes.
const (
	OpSet       = "set"
	OpAppend    = "append"
	OpIncrement = "increment"
	OpDecrement = "decrement"
)

// Assignment is one ordered mutation of a call variable. Value is
// template-substituted before applying, so a later assignment may read an
// earlier one's result within the same node.
type Assignment struct {
	Variable  string `json:"variable" yaml:"variable" mapstructure:"variable"`
	Operation string `json:"operation" yaml:"operation" mapstructure:"operation"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// SetVariableConfig configures a silent variable-mutation node.
type SetVariableConfig struct {
	Assignments []Assignment `json:"assignments" yaml:"assignments" mapstructure:"assignments"`
}

// TransferConfig configures a call handoff.
type TransferConfig struct {
	// Destination is template-substituted before the handoff.
	Destination string `json:"destination" yaml:"destination" mapstructure:"destination"`
	// Mode is TransferCold or TransferWarm.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	// Message, if set, is spoken before the handoff starts.
	Message string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	// Warm-transfer options, passed through to the call-control layer.
	HoldMusicURL   string `json:"hold_music_url,omitempty" yaml:"hold_music_url,omitempty" mapstructure:"hold_music_url"`
	HumanDetection bool   `json:"human_detection,omitempty" yaml:"human_detection,omitempty" mapstructure:"human_detection"`
}

// EndConfig configures the terminal node.
type EndConfig struct {
	Farewell string `json:"farewell,omitempty" yaml:"farewell,omitempty" mapstructure:"farewell"`
}
