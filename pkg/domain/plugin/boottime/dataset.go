package boottime

import (
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/stats"
)

// extractMultiSample recognizes the multi-sample dataset shape: a
// "boot_time" field holding an array of finite numbers. Returns nil (not
// an empty slice) when the shape does not match, so the caller can fall
// through to the single-sample parsers.
func (p *Plugin) extractMultiSample(body map[string]interface{}, osFilter string) []model.MetricPoint {
	raw, ok := body["boot_time"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}

	samples := make([]float64, 0, len(raw))
	for _, v := range raw {
		f, ok := toFloat(v)
		if !ok {
			return nil
		}
		samples = append(samples, f)
	}

	stat := stats.ComputeStatistics(samples, nil)
	if stat == nil {
		return nil
	}

	dims := map[string]string{}
	if rh, ok := body["rhivos_config"].(map[string]interface{}); ok {
		if osID, ok := asString(rh["os_id"]); ok {
			dims["os_id"] = osID
			if osFilter != "" && !equalFoldSafe(osID, osFilter) {
				return []model.MetricPoint{}
			}
		}
		if mode, ok := asString(rh["image_target"]); ok {
			dims["mode"] = mode
		} else if mode, ok := asString(rh["mode"]); ok {
			dims["mode"] = mode
		}
	}
	var dimsOrNil map[string]string
	if len(dims) > 0 {
		dimsOrNil = dims
	}

	ts := time.Now().UTC()
	var points []model.MetricPoint

	add := func(suffix string, value float64) {
		if !stats.IsValidFloat(value) {
			return
		}
		metricID := "boot.time.total_ms"
		if suffix != "" {
			metricID = "boot.time.total_ms." + suffix
		}
		points = append(points, model.MetricPoint{
			MetricID: metricID, Timestamp: ts, Value: value, Unit: "ms",
			Dimensions: dimsOrNil, Source: p.ID(),
		})
	}

	add("mean", stat.Mean)
	add("median", stat.Median)
	add("min", stat.Min)
	add("max", stat.Max)
	add("p95", stat.P95)
	add("p99", stat.P99)
	if stat.StdDev != nil {
		add("std_dev", *stat.StdDev)
	}
	if stat.CV != nil {
		add("cv", *stat.CV)
	}
	add("", stat.Mean)

	return points
}

func equalFoldSafe(a, b string) bool {
	return strings.EqualFold(a, b)
}

// extractRhivosLocal recognizes the RHIVOS local collector shape:
// boot_metrics.{total_boot_time_ms, phases.{kernel,initrd,switchroot,
// userspace}} plus system_info.{os_id,mode,target}.
func (p *Plugin) extractRhivosLocal(body map[string]interface{}, osFilter string) []model.MetricPoint {
	boot, ok := body["boot_metrics"].(map[string]interface{})
	if !ok {
		return nil
	}

	ts := time.Now().UTC()
	if s, ok := asString(body["timestamp"]); ok {
		if parsed, err := stats.ParseTimestamp(s); err == nil {
			ts = parsed
		}
	}

	dims := map[string]string{}
	if sysinfo, ok := body["system_info"].(map[string]interface{}); ok {
		if osID, ok := asString(sysinfo["os_id"]); ok {
			dims["os_id"] = osID
			if osFilter != "" && !equalFoldSafe(osID, osFilter) {
				return nil
			}
		}
		if mode, ok := asString(sysinfo["mode"]); ok {
			dims["mode"] = mode
		}
		if target, ok := asString(sysinfo["target"]); ok {
			dims["target"] = target
		} else if hw, ok := asString(sysinfo["hardware"]); ok {
			dims["target"] = hw
		}
	}
	var dimsOrNil map[string]string
	if len(dims) > 0 {
		dimsOrNil = dims
	}

	var points []model.MetricPoint
	emit := func(metricID string, v interface{}) {
		f, ok := toFloat(v)
		if !ok {
			return
		}
		points = append(points, model.MetricPoint{
			MetricID: metricID, Timestamp: ts, Value: f, Unit: "ms",
			Dimensions: dimsOrNil, Source: p.ID(),
		})
	}

	emit("boot.time.total_ms", boot["total_boot_time_ms"])

	if phases, ok := boot["phases"].(map[string]interface{}); ok {
		emit("boot.phase.kernel_ms", phases["kernel"])
		emit("boot.phase.initrd_ms", phases["initrd"])
		emit("boot.phase.switchroot_ms", phases["switchroot"])
		emit("boot.phase.system_init_ms", phases["userspace"])
	}

	return points
}

// extractHorreumV4 recognizes the Horreum v4 (test_results-based) and v6
// (boot_time/boot_logs-based) boot-time-verbose schemas.
func (p *Plugin) extractHorreumV4(body map[string]interface{}, osFilter string) []model.MetricPoint {
	if points := p.extractV04(body, osFilter); points != nil {
		return points
	}
	return p.extractV06(body, osFilter)
}

func (p *Plugin) extractV04(body map[string]interface{}, osFilter string) []model.MetricPoint {
	results, ok := body["test_results"].([]interface{})
	if !ok || len(results) == 0 {
		return nil
	}
	first, ok := results[0].(map[string]interface{})
	if !ok {
		return nil
	}

	ts := time.Now().UTC()
	if s, ok := asString(first["end_time"]); ok {
		if parsed, err := stats.ParseTimestamp(s); err == nil {
			ts = parsed
		}
	} else if s, ok := asString(first["start_time"]); ok {
		if parsed, err := stats.ParseTimestamp(s); err == nil {
			ts = parsed
		}
	}

	dims := map[string]string{}
	if syscfg, ok := body["system_config"].(map[string]interface{}); ok {
		if osID, ok := asString(syscfg["os_id"]); ok {
			dims["os_id"] = osID
			if osFilter != "" && !equalFoldSafe(osID, osFilter) {
				return []model.MetricPoint{}
			}
		}
		if mode, ok := asString(syscfg["mode"]); ok {
			dims["mode"] = mode
		}
		if target, ok := asString(syscfg["image_target"]); ok {
			dims["target"] = target
		}
	}
	var dimsOrNil map[string]string
	if len(dims) > 0 {
		dimsOrNil = dims
	}

	var points []model.MetricPoint
	emit := func(metricID string, v interface{}) {
		f, ok := toFloat(v)
		if !ok {
			return
		}
		points = append(points, model.MetricPoint{
			MetricID: metricID, Timestamp: ts, Value: f, Unit: "ms",
			Dimensions: dimsOrNil, Source: p.ID(),
		})
	}

	if satime, ok := first["satime"].(map[string]interface{}); ok {
		emit("boot.time.total_ms", satime["total"])
		emit("boot.phase.kernel_ms", satime["kernel"])
		emit("boot.phase.initrd_ms", satime["initrd"])
		emit("boot.phase.system_init_ms", satime["userspace"])
		emit("boot.phase.switchroot_ms", satime["switchroot"])
	}

	if clktick, ok := first["clktick"].(map[string]interface{}); ok {
		emit("boot.phase.kernel_pre_timer_ms", clktick["time_init_ts"])
	}

	if earlyservice, ok := first["earlyservice"].(map[string]interface{}); ok {
		emit("boot.timestamp.early_service_ms", earlyservice["earlyservice_ts"])
	}

	if dlkm, ok := first["dlkm"].(map[string]interface{}); ok {
		emit("boot.timestamp.start_kmod_load_ms", dlkm["start_kmod_load_ts"])
	}

	if timingDetails, ok := first["timing_details"].([]interface{}); ok {
		var firstServiceTS, networkOnlineTS *float64
		for _, entry := range timingDetails {
			service, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			activated, ok := toFloat(service["activated"])
			if !ok {
				continue
			}
			if firstServiceTS == nil || activated < *firstServiceTS {
				v := activated
				firstServiceTS = &v
			}
			name, _ := asString(service["name"])
			nameLower := strings.ToLower(name)
			if strings.Contains(nameLower, "network") || strings.Contains(nameLower, "networkmanager") || strings.Contains(nameLower, "systemd-networkd") {
				if networkOnlineTS == nil || activated < *networkOnlineTS {
					v := activated
					networkOnlineTS = &v
				}
			}
		}
		if firstServiceTS != nil {
			emit("boot.timestamp.first_service_ms", *firstServiceTS)
		}
		if networkOnlineTS != nil {
			emit("boot.timestamp.network_online_ms", *networkOnlineTS)
		}
	}

	if len(points) == 0 {
		if reboot, ok := first["reboot"].(map[string]interface{}); ok {
			emit("boot.time.total_ms", reboot["total_et"])
		}
	}

	return points
}

func (p *Plugin) extractV06(body map[string]interface{}, osFilter string) []model.MetricPoint {
	bootTime, ok := body["boot_time"].([]interface{})
	if !ok || len(bootTime) == 0 {
		return nil
	}
	firstBT, ok := bootTime[0].(map[string]interface{})
	if !ok {
		return nil
	}
	logs, _ := firstBT["boot_logs"].([]interface{})

	var tsEnd, tsStart *time.Time
	if s, ok := asString(body["end_time"]); ok {
		if parsed, err := stats.ParseTimestamp(s); err == nil {
			tsEnd = &parsed
		}
	}
	if s, ok := asString(body["start_time"]); ok {
		if parsed, err := stats.ParseTimestamp(s); err == nil {
			tsStart = &parsed
		}
	}

	ts := time.Now().UTC()
	if tsEnd != nil {
		ts = *tsEnd
	} else if tsStart != nil {
		ts = *tsStart
	}

	var totalFromTS float64
	haveTotalFromTS := false
	if tsEnd != nil && tsStart != nil {
		totalFromTS = tsEnd.Sub(*tsStart).Seconds() * 1000.0
		haveTotalFromTS = true
	}

	var maxValue float64
	haveMax := false
	for _, entry := range logs {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		for _, key := range []string{"activated", "time", "duration", "elapsed"} {
			if v, ok := toFloat(m[key]); ok {
				if !haveMax || v > maxValue {
					maxValue = v
					haveMax = true
				}
			}
		}
	}

	var totalMS float64
	haveTotal := false
	if haveTotalFromTS && totalFromTS > 0 {
		totalMS = totalFromTS
		haveTotal = true
	} else if haveMax {
		if maxValue > 1_000_000 {
			totalMS = maxValue / 1_000_000.0
		} else {
			totalMS = maxValue
		}
		haveTotal = true
	}

	dims := map[string]string{}
	if rhcfg, ok := body["rhivos_config"].(map[string]interface{}); ok {
		if osID, ok := asString(rhcfg["os_id"]); ok {
			dims["os_id"] = osID
			if osFilter != "" && !equalFoldSafe(osID, osFilter) {
				return nil
			}
		}
		if mode, ok := asString(rhcfg["mode"]); ok {
			dims["mode"] = mode
		}
		if target, ok := asString(rhcfg["image_target"]); ok {
			dims["target"] = target
		}
	}
	var dimsOrNil map[string]string
	if len(dims) > 0 {
		dimsOrNil = dims
	}

	if !haveTotal {
		return nil
	}

	return []model.MetricPoint{{
		MetricID: "boot.time.total_ms", Timestamp: ts, Value: totalMS, Unit: "ms",
		Dimensions: dimsOrNil, Source: p.ID(),
	}}
}
