package boottime

import (
	"strconv"
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/stats"
)

func normalizeLabelName(name string) string {
	replaced := strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(strings.ToLower(replaced)), " ")
}

func isDuration(name string) bool {
	norm := normalizeLabelName(name)
	if strings.Contains(norm, "timestamp") {
		return false
	}
	for _, word := range []string{"duration", "time", "ms", "latency", "delay"} {
		if strings.Contains(norm, word) {
			return true
		}
	}
	return false
}

func isTimestampLabel(name string) bool {
	norm := normalizeLabelName(name)
	return strings.Contains(norm, "timestamp") || strings.Contains(norm, "ts")
}

func extractStatisticType(name string) string {
	norm := normalizeLabelName(name)
	switch {
	case strings.Contains(norm, "average"):
		return "average"
	case strings.Contains(norm, "confidence"):
		return "confidence"
	default:
		return ""
	}
}

// matchLabelToMetric maps a label name to a canonical metric id using the
// same flexible keyword rules as the label-value extraction path: boot
// duration labels resolve to a phase id (or total), KPI timestamp labels
// resolve to a timestamp id, and a small set of exact aliases resolve to
// the total directly.
func matchLabelToMetric(name string) string {
	norm := normalizeLabelName(name)

	if (strings.Contains(norm, "boot") || strings.HasPrefix(name, "BOOT")) && isDuration(name) {
		switch {
		case strings.Contains(norm, "kernel") && (strings.Contains(norm, "pre") || strings.Contains(name, "1")):
			return "boot.phase.kernel_pre_timer_ms"
		case strings.Contains(norm, "kernel") && (strings.Contains(norm, "post") || strings.Contains(name, "2")):
			return "boot.phase.kernel_ms"
		case strings.Contains(norm, "initrd") || strings.Contains(norm, "initramfs") || strings.Contains(name, "3"):
			return "boot.phase.initrd_ms"
		case strings.Contains(norm, "switchroot") ||
			(strings.Contains(norm, "switch") && strings.Contains(norm, "root")) ||
			strings.Contains(name, "4"):
			return "boot.phase.switchroot_ms"
		case strings.Contains(strings.ReplaceAll(norm, " ", ""), "systeminit") ||
			(strings.Contains(norm, "system") && strings.Contains(norm, "init")) ||
			strings.Contains(norm, "userspace") ||
			strings.Contains(name, "0"):
			return "boot.phase.system_init_ms"
		case strings.Contains(norm, "total") || norm == "boot time" || norm == "boot" || norm == "boot_time":
			return "boot.time.total_ms"
		}
		return ""
	}

	if strings.Contains(norm, "kpi") && isTimestampLabel(name) {
		switch {
		case strings.Contains(norm, "early") && strings.Contains(norm, "service"):
			return "boot.timestamp.early_service_ms"
		case strings.Contains(norm, "kmod") || (strings.Contains(norm, "module") && strings.Contains(norm, "load")):
			return "boot.timestamp.start_kmod_load_ms"
		case strings.Contains(norm, "first") && (strings.Contains(norm, "service") || strings.Contains(norm, "link")):
			return "boot.timestamp.first_service_ms"
		case strings.Contains(norm, "network") || (strings.Contains(norm, "link") && strings.Contains(norm, "up")):
			return "boot.timestamp.network_online_ms"
		}
		return ""
	}

	switch name {
	case "boot.time.total_ms", "boot.total_ms", "boot_time_total_ms", "Boot Time", "boot_time":
		return "boot.time.total_ms"
	}
	return ""
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func orUndefined(v string) string {
	if v == "" {
		return model.DimensionUndefined
	}
	return v
}

// extractFromLabelValues is the preferred extraction path. Total boot time
// is calculated by summing recognized boot phases per statistic-type
// group, never read directly from a label; missing or non-numeric phases
// count as zero and are recorded in a "missing_phases" dimension.
func (p *Plugin) extractFromLabelValues(items []model.ExportedLabelValues, runTypeFilter, osFilter string) []model.MetricPoint {
	var points []model.MetricPoint

	for _, item := range items {
		if runTypeFilter != "" {
			runType, testDesc := "", ""
			for _, lv := range item.Values {
				if lv.Name == "Run type" {
					if s, ok := asString(lv.Value); ok {
						runType = s
					}
				} else if lv.Name == "Test Description" {
					if s, ok := asString(lv.Value); ok {
						testDesc = s
					}
				}
			}
			if runType != "" {
				if !strings.EqualFold(runType, runTypeFilter) {
					continue
				}
			} else if testDesc != "" {
				if !strings.Contains(strings.ToLower(testDesc), strings.ToLower(runTypeFilter)) {
					continue
				}
			}
		}

		if osFilter != "" {
			osID := ""
			for _, lv := range item.Values {
				if lv.Name == "RHIVOS OS ID" {
					if s, ok := asString(lv.Value); ok {
						osID = s
					}
					break
				}
			}
			if osID != "" && !strings.EqualFold(osID, osFilter) {
				continue
			}
		}

		var itemOSID, itemMode, itemTarget, itemRelease, itemImageName, itemUser, itemBuild string
		itemSamples := ""
		for _, lv := range item.Values {
			s, isStr := asString(lv.Value)
			switch lv.Name {
			case "RHIVOS OS ID":
				if isStr {
					itemOSID = strings.ToLower(s)
				}
			case "RHIVOS Mode":
				if isStr {
					itemMode = strings.ToLower(s)
				}
			case "RHIVOS Target":
				if isStr {
					itemTarget = strings.ToLower(s)
				}
			case "RHIVOS Release":
				if isStr {
					itemRelease = s
				}
			case "RHIVOS image name":
				if isStr {
					itemImageName = s
				}
			case "Number of Samples":
				if f, ok := toFloat(lv.Value); ok {
					itemSamples = strconv.Itoa(int(f))
				}
			case "User":
				if isStr {
					itemUser = s
				}
			case "RHIVOS Build":
				if isStr {
					itemBuild = s
				}
			}
		}

		ts := time.Now().UTC()
		tsSource := item.Stop
		if tsSource == "" {
			tsSource = item.Start
		}
		if tsSource != "" {
			if parsed, err := stats.ParseTimestamp(tsSource); err == nil {
				ts = parsed
			}
		}

		type phaseGroup struct {
			phases  map[string]float64
			missing []string
		}
		byStatType := map[string]*phaseGroup{}
		type kpiEntry struct {
			metricID string
			value    float64
			statType string
		}
		var kpis []kpiEntry

		for _, lv := range item.Values {
			metricID := matchLabelToMetric(lv.Name)
			if metricID == "" {
				continue
			}
			statType := extractStatisticType(lv.Name)
			if statType == "" {
				statType = "unknown"
			}
			numeric, isNumeric := toFloat(lv.Value)

			if strings.Contains(metricID, "phase") {
				g, ok := byStatType[statType]
				if !ok {
					g = &phaseGroup{phases: map[string]float64{}}
					byStatType[statType] = g
				}
				if isNumeric {
					g.phases[metricID] = numeric
				} else {
					g.phases[metricID] = 0.0
					g.missing = append(g.missing, metricID)
				}
			} else if strings.Contains(metricID, "timestamp") && isNumeric {
				kpis = append(kpis, kpiEntry{metricID, numeric, statType})
			}
		}

		buildDims := func(statType string, missing []string) map[string]string {
			dims := map[string]string{
				"os_id":       orUndefined(itemOSID),
				"mode":        orUndefined(itemMode),
				"target":      orUndefined(itemTarget),
				"release":     orUndefined(itemRelease),
				"image_name":  orUndefined(itemImageName),
				"samples":     orUndefined(itemSamples),
				"user":        orUndefined(itemUser),
				"build":       orUndefined(itemBuild),
			}
			if statType != "unknown" {
				dims["statistic_type"] = statType
			}
			if len(missing) > 0 {
				names := make([]string, len(missing))
				for i, m := range missing {
					short := m[strings.LastIndex(m, ".")+1:]
					names[i] = strings.TrimSuffix(short, "_ms")
				}
				dims["missing_phases"] = strings.Join(names, ",")
			}
			return dims
		}

		for statType, group := range byStatType {
			dims := buildDims(statType, group.missing)
			total := 0.0
			for phaseID, value := range group.phases {
				total += value
				if stats.IsValidFloat(value) {
					points = append(points, model.MetricPoint{
						MetricID: phaseID, Timestamp: ts, Value: value, Unit: "ms",
						Dimensions: dims, Source: p.ID(),
					})
				}
			}
			if stats.IsValidFloat(total) {
				points = append(points, model.MetricPoint{
					MetricID: "boot.time.total_ms", Timestamp: ts, Value: total, Unit: "ms",
					Dimensions: dims, Source: p.ID(),
				})
			}
		}

		for _, k := range kpis {
			if !stats.IsValidFloat(k.value) {
				continue
			}
			dims := buildDims(k.statType, nil)
			points = append(points, model.MetricPoint{
				MetricID: k.metricID, Timestamp: ts, Value: k.value, Unit: "ms",
				Dimensions: dims, Source: p.ID(),
			})
		}
	}

	return points
}
