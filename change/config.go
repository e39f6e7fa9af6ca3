package change

import (
	reactive "github.com/goliatone/go-reactive"
	"github.com/goliatone/go-reactive/gerrit"
	"github.com/goliatone/go-reactive/internal/layering"
)

// DefaultServerConfig holds the settings assumed when the server leaves them
// out of its response.
func DefaultServerConfig() map[string]any {
	return map[string]any{
		"change": map[string]any{
			"submit_whole_topic": false,
			"update_delay":       300,
			"large_change":       500,
		},
	}
}

// ConfigModel publishes the server configuration once it has been fetched.
type ConfigModel struct {
	server   *reactive.Subject[*gerrit.ServerInfo]
	defaults []map[string]any
}

// NewConfigModel returns a model whose configuration is not loaded yet.
// defaults are merged under every loaded payload, strongest first; without
// any, DefaultServerConfig is used.
func NewConfigModel(defaults ...map[string]any) *ConfigModel {
	if len(defaults) == 0 {
		defaults = []map[string]any{DefaultServerConfig()}
	}
	return &ConfigModel{
		server:   reactive.NewSubject[*gerrit.ServerInfo](nil),
		defaults: defaults,
	}
}

// SetServerConfig replaces the configuration.
func (c *ConfigModel) SetServerConfig(info *gerrit.ServerInfo) {
	c.server.Next(info)
}

// LoadServerConfig fills payload from the defaults, decodes it and publishes
// the result. A nil payload is rejected.
func (c *ConfigModel) LoadServerConfig(payload map[string]any) error {
	if payload != nil {
		payload = layering.Payloads(append([]map[string]any{payload}, c.defaults...)...)
	}
	info, err := gerrit.DecodeServerInfo(payload)
	if err != nil {
		return err
	}
	c.SetServerConfig(info)
	return nil
}

// ServerConfig streams the configuration; nil until loaded.
func (c *ConfigModel) ServerConfig() reactive.Field[*gerrit.ServerInfo] {
	return c.server
}

// Close stops the stream.
func (c *ConfigModel) Close() {
	c.server.Close()
}
