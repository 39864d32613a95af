package widget

import "time"

const (
	DefaultContainerSelector = "#nova-voice-agent"
	DefaultPollInterval      = time.Second
	DefaultElementTag        = "elevenlabs-convai"
	DefaultScriptURL         = "https://unpkg.com/@elevenlabs/convai-widget-embed"
)

// EmbedConfig tells the page which agent to load and where to put it.
type EmbedConfig struct {
	AgentID           string        `json:"agent_id"`
	ElementTag        string        `json:"element_tag"`
	ScriptURL         string        `json:"script_url"`
	ContainerSelector string        `json:"container_selector"`
	PollInterval      time.Duration `json:"-"`
	PollIntervalMS    int64         `json:"poll_interval_ms"`
}

// NewEmbedConfig fills defaults for anything left empty.
func NewEmbedConfig(agentID, containerSelector string, pollInterval time.Duration) EmbedConfig {
	if containerSelector == "" {
		containerSelector = DefaultContainerSelector
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return EmbedConfig{
		AgentID:           agentID,
		ElementTag:        DefaultElementTag,
		ScriptURL:         DefaultScriptURL,
		ContainerSelector: containerSelector,
		PollInterval:      pollInterval,
		PollIntervalMS:    pollInterval.Milliseconds(),
	}
}

// Enabled reports whether an agent is configured.
func (c EmbedConfig) Enabled() bool {
	return c.AgentID != ""
}
