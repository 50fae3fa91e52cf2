package boottime

import (
	"context"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/stretchr/testify/require"
)

func TestExtractFromLabelValuesComputesTotalFromPhases(t *testing.T) {
	p := New(nil)
	items := []model.ExportedLabelValues{
		{
			Start: "2025-01-01T00:00:00Z",
			Values: []model.LabelValue{
				{Name: "BOOT1 Kernel Pre Timer Duration Average", Value: 100.0},
				{Name: "BOOT2 Kernel Duration Average", Value: 200.0},
				{Name: "BOOT3 Initrd Duration Average", Value: 300.0},
				{Name: "RHIVOS OS ID", Value: "autosd"},
				{Name: "RHIVOS Target", Value: "qemu"},
			},
		},
	}

	points, err := p.Extract(context.Background(), plugin.ExtractInput{LabelValues: items})
	require.NoError(t, err)
	require.NotEmpty(t, points)

	var total *model.MetricPoint
	for i := range points {
		if points[i].MetricID == "boot.time.total_ms" {
			total = &points[i]
		}
	}
	require.NotNil(t, total)
	require.Equal(t, 600.0, total.Value)
	require.Equal(t, "qemu", total.Dimensions["target"])
	require.Equal(t, "autosd", total.Dimensions["os_id"])
	require.Equal(t, model.DimensionUndefined, total.Dimensions["mode"])
}

func TestExtractFromLabelValuesMissingPhaseTreatedAsZero(t *testing.T) {
	p := New(nil)
	items := []model.ExportedLabelValues{
		{
			Values: []model.LabelValue{
				{Name: "BOOT1 Kernel Pre Timer Duration Average", Value: "Need to collect"},
				{Name: "BOOT2 Kernel Duration Average", Value: 50.0},
			},
		},
	}

	points, err := p.Extract(context.Background(), plugin.ExtractInput{LabelValues: items})
	require.NoError(t, err)

	var total *model.MetricPoint
	for i := range points {
		if points[i].MetricID == "boot.time.total_ms" {
			total = &points[i]
		}
	}
	require.NotNil(t, total)
	require.Equal(t, 50.0, total.Value)
	require.Contains(t, total.Dimensions["missing_phases"], "kernel_pre_timer")
}

func TestExtractFromLabelValuesOSFilterExcludes(t *testing.T) {
	p := New(nil)
	items := []model.ExportedLabelValues{
		{Values: []model.LabelValue{
			{Name: "RHIVOS OS ID", Value: "fedora"},
			{Name: "BOOT2 Kernel Duration Average", Value: 50.0},
		}},
	}
	points, err := p.Extract(context.Background(), plugin.ExtractInput{LabelValues: items, OSFilter: "autosd"})
	require.NoError(t, err)
	require.Empty(t, points)
}

func TestExtractMultiSampleDataset(t *testing.T) {
	p := New(nil)
	body := map[string]interface{}{
		"boot_time": []interface{}{10.0, 20.0, 30.0, 40.0, 50.0},
	}
	points, err := p.Extract(context.Background(), plugin.ExtractInput{JSONBody: body})
	require.NoError(t, err)
	require.NotEmpty(t, points)

	found := map[string]bool{}
	for _, pt := range points {
		found[pt.MetricID] = true
	}
	require.True(t, found["boot.time.total_ms"])
	require.True(t, found["boot.time.total_ms.mean"])
	require.True(t, found["boot.time.total_ms.p95"])
}

func TestExtractRhivosLocalDataset(t *testing.T) {
	p := New(nil)
	body := map[string]interface{}{
		"timestamp": "2025-09-22T10:30:00Z",
		"boot_metrics": map[string]interface{}{
			"total_boot_time_ms": 12500.0,
			"phases": map[string]interface{}{
				"kernel":    3000.0,
				"initrd":    1500.0,
				"userspace": 5500.0,
			},
		},
		"system_info": map[string]interface{}{"os_id": "rhel-9.2", "mode": "standard"},
	}
	points, err := p.Extract(context.Background(), plugin.ExtractInput{JSONBody: body})
	require.NoError(t, err)
	require.Len(t, points, 4)
}

func TestExtractHorreumV4Dataset(t *testing.T) {
	p := New(nil)
	body := map[string]interface{}{
		"test_results": []interface{}{
			map[string]interface{}{
				"start_time": "2025-01-01T00:00:00Z",
				"satime": map[string]interface{}{
					"total":   5000.0,
					"kernel":  1000.0,
					"initrd":  500.0,
				},
			},
		},
		"system_config": map[string]interface{}{"os_id": "rhel", "image_target": "qemu"},
	}
	points, err := p.Extract(context.Background(), plugin.ExtractInput{JSONBody: body})
	require.NoError(t, err)
	require.NotEmpty(t, points)
}

func TestGlossaryAndKPIsNonEmpty(t *testing.T) {
	p := New(nil)
	require.Equal(t, ID, p.ID())
	require.NotEmpty(t, p.Glossary())
	require.NotEmpty(t, p.KPIs())
}
