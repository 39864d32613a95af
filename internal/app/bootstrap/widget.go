package bootstrap

import (
	"github.com/novavoice/nova-voice/internal/browser"
	appconfig "github.com/novavoice/nova-voice/internal/config"
	"github.com/novavoice/nova-voice/internal/observability/metrics"
	"github.com/novavoice/nova-voice/internal/widget"
	"github.com/novavoice/nova-voice/pkg/logging"
)

// BuildEmbedConfig derives the widget embed settings served to the page.
func BuildEmbedConfig(cfg *appconfig.Config) widget.EmbedConfig {
	return widget.NewEmbedConfig(cfg.WidgetAgentID, cfg.WidgetContainerSelector, cfg.WidgetPollInterval)
}

// BuildRelocator returns a relocation loop driving the browser sidecar, or nil
// when no agent or sidecar is configured.
func BuildRelocator(cfg *appconfig.Config, m *metrics.LandingMetrics, logger *logging.Logger) *widget.Relocator {
	if logger == nil {
		logger = logging.Default()
	}
	embed := BuildEmbedConfig(cfg)
	if !embed.Enabled() || cfg.WidgetSidecarURL == "" || cfg.WidgetPageURL == "" {
		return nil
	}
	host := browser.NewClient(cfg.WidgetSidecarURL, cfg.WidgetPageURL,
		browser.WithLogger(logger),
		browser.WithElementTag(embed.ElementTag),
	)
	logger.Info("widget relocation enabled", "sidecar", cfg.WidgetSidecarURL, "container", embed.ContainerSelector)
	return widget.NewRelocator(host, embed, logger).WithMetrics(m)
}
