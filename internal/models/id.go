package models

import "strings"

// Slug normalizes an entity name for use in identifiers: lowercase,
// trimmed, runs of whitespace collapsed to a single underscore.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "_")
}

// NodeID builds the canonical node identifier "type:slug(name)".
func NodeID(entityType, name string) string {
	return entityType + ":" + Slug(name)
}

// MetricID joins hierarchical metric id parts with colons, skipping
// empty parts so optional trailing segments (market area, district)
// can be omitted by callers.
func MetricID(parts ...string) string {
	kept := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = Slug(p); p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, ":")
}

const reversePrefix = "reverse:"

// ReverseRelation returns the reverse-namespace twin of a relation name.
func ReverseRelation(relation string) string {
	return reversePrefix + relation
}

// ForwardRelation strips the reverse namespace if present, reporting
// whether the input was reverse-namespaced.
func ForwardRelation(relation string) (string, bool) {
	if rest, ok := strings.CutPrefix(relation, reversePrefix); ok {
		return rest, true
	}

	return relation, false
}
