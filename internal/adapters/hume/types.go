package hume

import (
	"humesync/internal/domain/agent"
)

// Fixed parts of every config we create
const (
	VoiceProvider       = "HUME_AI"
	ModelProvider       = "HUME_AI"
	Model               = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	ToolWebSearch       = "web_search"
	ToolHangUp          = "hang_up"
	descriptionLimit    = 200
	descriptionEllipsis = "..."
)

// Snapshot is the provider's full config JSON
type Snapshot = agent.Snapshot

// CreateRequest describes a config to create.
// Prompt is the base prompt; it is enhanced with Agent data before sending.
type CreateRequest struct {
	Name     string
	Prompt   string
	Voice    string // defaults to ITO
	Language string // defaults to en
	Agent    *agent.Agent
}

// UpdateRequest carries the fields to change; empty fields are left untouched.
// Prompt is sent as given, it is not composed.
type UpdateRequest struct {
	Name     string
	Prompt   string
	Voice    string
	Language string
}

// IsEmpty reports whether no field was supplied
func (r UpdateRequest) IsEmpty() bool {
	return r.Name == "" && r.Prompt == "" && r.Voice == "" && r.Language == ""
}

type promptSpec struct {
	Text string `json:"text"`
}

type voiceSpec struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type languageSpec struct {
	Code string `json:"code"`
}

type modelSpec struct {
	Provider            string `json:"provider"`
	Model               string `json:"model"`
	AllowShortResponses bool   `json:"allow_short_responses"`
}

type builtinTool struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type createConfigPayload struct {
	Name         string        `json:"name"`
	Prompt       promptSpec    `json:"prompt"`
	Voice        voiceSpec     `json:"voice"`
	Language     languageSpec  `json:"language"`
	EllmModel    modelSpec     `json:"ellm_model"`
	BuiltinTools []builtinTool `json:"builtin_tools"`
	Description  string        `json:"description"`
}

type updateConfigPayload struct {
	Name     string        `json:"name,omitempty"`
	Prompt   *promptSpec   `json:"prompt,omitempty"`
	Voice    *voiceSpec    `json:"voice,omitempty"`
	Language *languageSpec `json:"language,omitempty"`
}

type createConfigResponse struct {
	ID string `json:"id"`
}

// Configs is a pointer so a body without the key is told apart from an empty list
type listConfigsResponse struct {
	Configs *[]Snapshot `json:"configs"`
}
