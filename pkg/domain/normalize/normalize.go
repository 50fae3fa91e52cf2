// Package normalize canonicalizes the free-form parameter map a
// get_key_metrics caller (LLM, HTTP client, or MCP tool invocation) may
// send into the shape the orchestrator expects: synonym keys collapsed,
// relative dates resolved, and OS/run-type values an LLM mistakenly put in
// test_id rescued into filter hints.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/ty"
)

// DetectedOSFilterKey and DetectedRunTypeKey are the internal hint keys
// GetKeyMetricsParams adds to the normalized map; RequestFromParams reads
// them into the orchestrator Request's OS and run-type filters.
const (
	DetectedOSFilterKey  = "_detected_os_filter"
	DetectedRunTypeKey   = "_detected_run_type"
	DefaultDatasetType   = "boot-time-verbose"
	DefaultLimit         = 100
)

var (
	daysAgoPattern = regexp.MustCompile(`(?i)^(\d+)\s+days?\s+ago$`)
	shortDaysPattern = regexp.MustCompile(`^(\d+)d$`)
)

var datasetTypeAliases = map[string]string{
	"boot-time":  DefaultDatasetType,
	"boot_time":  DefaultDatasetType,
	"boot":       DefaultDatasetType,
}

// knownOSIdentifiers is the closed set of OS identifiers an LLM sometimes
// places in test_id by mistake.
var knownOSIdentifiers = map[string]bool{
	"rhel": true, "rhel-9": true, "rhel-8": true, "rhel9": true, "rhel8": true,
	"autosd": true, "autosd-9": true,
	"fedora": true, "centos": true, "centos-stream": true,
	"fedora-coreos": true, "fcos": true,
}

// osAliasMap normalizes OS identifier spellings to canonical ones.
var osAliasMap = map[string]string{
	"rhel":   "rhel",
	"autosd": "autosd",
}

// knownRunTypes is the closed set of run-type keywords an LLM sometimes
// places in test_id (or schema_uri) by mistake.
var knownRunTypes = map[string]bool{
	"nightly": true, "ci": true, "release": true, "manual": true,
	"ad-hoc": true, "adhoc": true,
}

var cosmeticKeys = []string{"output_format", "table_format"}

// GetKeyMetricsParams normalizes raw into the canonical get_key_metrics
// parameter shape, mutating and returning a fresh map (raw is not
// modified).
func GetKeyMetricsParams(raw ty.MI) ty.MI {
	params := unwrapEnvelope(raw)

	applySynonyms(params)
	coerceTypes(params)
	applyRelativeDates(params)
	applyDatasetTypeAliases(params)
	detectOSFilter(params)
	detectRunType(params)

	if _, ok := params["limit"]; !ok {
		params["limit"] = DefaultLimit
	}

	for _, key := range cosmeticKeys {
		delete(params, key)
	}

	return params
}

// unwrapEnvelope handles {"params": {...}} and {"args": {...}} nesting.
func unwrapEnvelope(raw ty.MI) ty.MI {
	params := raw
	if nested, ok := raw["params"].(ty.MI); ok {
		params = nested
	} else if nested, ok := raw["params"].(map[string]interface{}); ok {
		params = ty.MI(nested)
	}

	hasCoreKeys := false
	for _, k := range []string{"dataset_types", "data", "source_id"} {
		if _, ok := params[k]; ok {
			hasCoreKeys = true
			break
		}
	}
	if !hasCoreKeys {
		if nested, ok := params["args"].(ty.MI); ok {
			params = nested
		} else if nested, ok := params["args"].(map[string]interface{}); ok {
			params = ty.MI(nested)
		}
	}

	out := make(ty.MI, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func applySynonyms(params ty.MI) {
	if v, ok := params["dataset_type"]; ok {
		if _, exists := params["dataset_types"]; !exists {
			if s, isStr := v.(string); isStr {
				params["dataset_types"] = []string{s}
			} else {
				params["dataset_types"] = []interface{}{v}
			}
		}
		delete(params, "dataset_type")
	}
	movePlain(params, "source", "source_id")
	moveFirst(params, "test_id", "testId", "test")
	moveFirst(params, "run_id", "runId", "run")
	movePlain(params, "schema", "schema_uri")
	moveFirst(params, "from", "from_time", "from_timestamp", "fromTimestamp")
	moveFirst(params, "to", "to_time", "to_timestamp", "toTimestamp")
}

func movePlain(params ty.MI, from, to string) {
	if v, ok := params[from]; ok {
		if _, exists := params[to]; !exists {
			params[to] = v
		}
		delete(params, from)
	}
}

// moveFirst moves the first present alias in aliases into to, if to is
// not already set.
func moveFirst(params ty.MI, to string, aliases ...string) {
	if _, exists := params[to]; exists {
		return
	}
	for _, alt := range aliases {
		if v, ok := params[alt]; ok {
			params[to] = v
			delete(params, alt)
			return
		}
	}
}

func coerceTypes(params ty.MI) {
	if v, ok := params["test_id"]; ok {
		params["test_id"] = coerceIDString(v)
	}
	if v, ok := params["run_id"]; ok {
		params["run_id"] = coerceIDString(v)
	}
	if v, ok := params["limit"]; ok {
		if n, ok := coerceInt(v); ok {
			params["limit"] = n
		}
	}
}

func coerceIDString(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return v
	}
}

func coerceInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// parseRelativeDate resolves "now", "N days ago" and "Nd" into an
// ISO8601Z instant; any other string passes through unchanged.
func parseRelativeDate(value string) string {
	if strings.EqualFold(value, "now") {
		return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}
	if m := daysAgoPattern.FindStringSubmatch(value); m != nil {
		days, _ := strconv.Atoi(m[1])
		return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02T15:04:05.000000Z")
	}
	if m := shortDaysPattern.FindStringSubmatch(value); m != nil {
		days, _ := strconv.Atoi(m[1])
		return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02T15:04:05.000000Z")
	}
	return value
}

func applyRelativeDates(params ty.MI) {
	if v, ok := params["from"].(string); ok {
		params["from"] = parseRelativeDate(v)
	}
	if v, ok := params["to"].(string); ok {
		params["to"] = parseRelativeDate(v)
	}
}

func applyDatasetTypeAliases(params ty.MI) {
	raw, ok := params["dataset_types"]
	if !ok {
		return
	}
	switch v := raw.(type) {
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				out[i] = resolveDatasetAlias(s)
			} else {
				out[i] = item
			}
		}
		params["dataset_types"] = out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = resolveDatasetAlias(item)
		}
		params["dataset_types"] = out
	case string:
		params["dataset_types"] = []string{resolveDatasetAlias(v)}
	}
}

func resolveDatasetAlias(s string) string {
	if alias, ok := datasetTypeAliases[s]; ok {
		return alias
	}
	return s
}

func hasDatasetTypes(params ty.MI) bool {
	switch v := params["dataset_types"].(type) {
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return false
	}
}

func setDefaultBootTimeDatasetType(params ty.MI) {
	if !hasDatasetTypes(params) {
		params["dataset_types"] = []string{DefaultDatasetType}
	}
}

// detectOSFilter rescues an OS identifier mistakenly passed as test_id (or
// explicitly as os_id), recording it as an internal _detected_os_filter
// hint rather than letting it reach the orchestrator as a test id.
func detectOSFilter(params ty.MI) {
	if raw, ok := params["os_id"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			lower := strings.ToLower(s)
			params[DetectedOSFilterKey] = resolveOSAlias(lower)
			setDefaultBootTimeDatasetType(params)
		}
	}

	testIDVal, _ := params["test_id"].(string)
	lowerTestID := strings.ToLower(testIDVal)
	if lowerTestID != "" && knownOSIdentifiers[lowerTestID] {
		setDefaultBootTimeDatasetType(params)
		delete(params, "test_id")
		params[DetectedOSFilterKey] = resolveOSAlias(lowerTestID)
	}
}

func resolveOSAlias(lower string) string {
	if canonical, ok := osAliasMap[lower]; ok {
		return canonical
	}
	return lower
}

// detectRunType rescues a run-type keyword mistakenly passed as test_id
// (or present in schema_uri), and honors an explicit run_type/runType
// parameter first.
func detectRunType(params ty.MI) {
	if raw, ok := firstNonEmpty(params, "run_type", "runType"); ok {
		lower := strings.ToLower(raw)
		if lower == "ad-hoc" || lower == "adhoc" {
			lower = "manual"
		}
		params[DetectedRunTypeKey] = lower
		delete(params, "run_type")
		delete(params, "runType")
		return
	}

	testIDVal, _ := params["test_id"].(string)
	lowerTestID := strings.ToLower(testIDVal)
	if knownRunTypes[lowerTestID] {
		params[DetectedRunTypeKey] = lowerTestID
		delete(params, "test_id")
		setDefaultBootTimeDatasetType(params)
		return
	}

	for _, key := range []string{"test_id", "schema_uri"} {
		val := strings.ToLower(stringOrEmpty(params[key]))
		for runType := range knownRunTypes {
			if strings.Contains(val, runType) {
				params[DetectedRunTypeKey] = runType
				if key == "test_id" {
					delete(params, "test_id")
					setDefaultBootTimeDatasetType(params)
				}
				return
			}
		}
	}
}

func firstNonEmpty(params ty.MI, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := params[key]; ok {
			s := stringOrEmpty(v)
			if s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func stringOrEmpty(v interface{}) string {
	s, _ := v.(string)
	return s
}
