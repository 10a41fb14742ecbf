package telemetry

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelResource  = "resource"
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelActorRole = "actor_role"
	ProfilingLabelOperation = "operation"
)

// MaxLabelValueLength caps label values to keep profile series bounded.
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels.
var highCardinalityLabels = map[string]bool{
	"actor_id":       true,
	"request_id":     true,
	"trace_id":       true,
	"span_id":        true,
	"product_id":     true,
	"material_id":    true,
	"reservation_id": true,
}

// WithProfilingLabels runs fn with the given pprof labels attached, so
// CPU samples taken inside fn can be filtered in Pyroscope.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns sorted key/value pairs with empty, high-cardinality
// and malformed keys removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	clean := make(map[string]string, len(labels))
	for k, v := range labels {
		key := sanitizeLabelKey(k)
		if key == "" || v == "" || highCardinalityLabels[key] {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		clean[key] = v
	}

	pairs := make([]string, 0, len(clean)*2)
	for _, k := range slices.Sorted(maps.Keys(clean)) {
		pairs = append(pairs, k, clean[k])
	}
	return pairs
}

func sanitizeLabelKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}
