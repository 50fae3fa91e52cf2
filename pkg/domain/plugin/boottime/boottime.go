// Package boottime implements the boot-time-verbose reference plugin: the
// hardest, most representative metric-extraction plugin, supporting both
// the pre-aggregated label-value path and several raw dataset JSON shapes
// (RHIVOS local, Horreum v4, Horreum v6).
package boottime

import (
	"context"
	"log/slog"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
)

// ID is the canonical identifier this plugin registers under.
const ID = "boot-time-verbose"

// Plugin extracts boot-time KPIs from boot-time datasets or label values.
type Plugin struct {
	Logger *slog.Logger
}

// New returns a boot-time-verbose plugin. A nil logger defaults to
// slog.Default().
func New(logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{Logger: logger}
}

func (p *Plugin) ID() string { return ID }

func (p *Plugin) KPIs() []string {
	return []string{
		"boot.time.total_ms",
		"boot.phase.kernel_pre_timer_ms",
		"boot.phase.kernel_ms",
		"boot.phase.initrd_ms",
		"boot.phase.switchroot_ms",
		"boot.phase.system_init_ms",
		"boot.timestamp.early_service_ms",
		"boot.timestamp.start_kmod_load_ms",
		"boot.timestamp.first_service_ms",
		"boot.timestamp.network_online_ms",
	}
}

func (p *Plugin) Glossary() map[string]plugin.MetricMeta {
	return map[string]plugin.MetricMeta{
		"boot.time.total_ms":                {Description: "Total boot time (mean for multi-sample)", Unit: "ms"},
		"boot.time.total_ms.mean":           {Description: "Mean boot time across samples", Unit: "ms"},
		"boot.time.total_ms.median":         {Description: "Median boot time across samples", Unit: "ms"},
		"boot.time.total_ms.p95":            {Description: "95th percentile boot time", Unit: "ms"},
		"boot.time.total_ms.p99":            {Description: "99th percentile boot time", Unit: "ms"},
		"boot.time.total_ms.std_dev":        {Description: "Standard deviation of boot time", Unit: "ms"},
		"boot.time.total_ms.cv":             {Description: "Coefficient of variance (std_dev/mean)", Unit: "ratio"},
		"boot.time.total_ms.min":            {Description: "Minimum boot time across samples", Unit: "ms"},
		"boot.time.total_ms.max":            {Description: "Maximum boot time across samples", Unit: "ms"},
		"boot.phase.kernel_pre_timer_ms":    {Description: "Kernel initialization before timer subsystem", Unit: "ms"},
		"boot.phase.kernel_ms":              {Description: "Kernel initialization after timer subsystem", Unit: "ms"},
		"boot.phase.initrd_ms":              {Description: "Initial RAM disk execution duration", Unit: "ms"},
		"boot.phase.switchroot_ms":          {Description: "Transition from initrd to actual root filesystem", Unit: "ms"},
		"boot.phase.system_init_ms":         {Description: "System/userspace initialization (systemd)", Unit: "ms"},
		"boot.timestamp.early_service_ms":   {Description: "First critical service becomes active", Unit: "ms"},
		"boot.timestamp.start_kmod_load_ms": {Description: "Kernel module loading begins", Unit: "ms"},
		"boot.timestamp.first_service_ms":   {Description: "First systemd service activated", Unit: "ms"},
		"boot.timestamp.network_online_ms":  {Description: "Network connectivity established", Unit: "ms"},
	}
}

// Extract prefers the label-value path when label values are supplied and
// yield at least one point; otherwise it falls back to dataset JSON
// parsing.
func (p *Plugin) Extract(ctx context.Context, in plugin.ExtractInput) ([]model.MetricPoint, error) {
	if len(in.LabelValues) > 0 {
		points := p.extractFromLabelValues(in.LabelValues, in.RunTypeFilter, in.OSFilter)
		if len(points) > 0 {
			return points, nil
		}
		p.Logger.Warn("boot_time.extract.label_values_empty")
	}

	body, ok := in.JSONBody.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	if points := p.extractMultiSample(body, in.OSFilter); points != nil {
		return points, nil
	}

	points := p.extractRhivosLocal(body, in.OSFilter)
	if len(points) == 0 {
		points = p.extractHorreumV4(body, in.OSFilter)
	}
	return points, nil
}
