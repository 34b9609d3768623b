package model

// Edge identifies a side of a rectangular or diamond node where a connection
// attaches.
type Edge string

// Edge values.
const (
	EdgeTop    Edge = "top"
	EdgeRight  Edge = "right"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeCenter Edge = "center"
)

// ParseEdge maps a raw string onto an Edge, falling back to def for anything
// unrecognized. Dialect parsers use this instead of passing arbitrary strings
// through.
func ParseEdge(s string, def Edge) Edge {
	switch Edge(s) {
	case EdgeTop, EdgeRight, EdgeBottom, EdgeLeft, EdgeCenter:
		return Edge(s)
	default:
		return def
	}
}

// Cardinality is a branch cardinality in a relationship.
type Cardinality string

// Cardinality values.
const (
	CardinalityOne Cardinality = "1"
	CardinalityN   Cardinality = "N"
	CardinalityM   Cardinality = "M"
)

// ParseCardinality maps a raw string onto a Cardinality with fallback def.
func ParseCardinality(s string, def Cardinality) Cardinality {
	switch Cardinality(s) {
	case CardinalityOne, CardinalityN, CardinalityM:
		return Cardinality(s)
	default:
		return def
	}
}

// IsMany reports whether c is one of the many-valued cardinalities.
func (c Cardinality) IsMany() bool {
	return c == CardinalityN || c == CardinalityM
}

// Participation marks a branch as total or partial.
type Participation string

// Participation values.
const (
	ParticipationTotal   Participation = "total"
	ParticipationPartial Participation = "partial"
)

// ParseParticipation maps a raw string onto a Participation with fallback def.
func ParseParticipation(s string, def Participation) Participation {
	switch Participation(s) {
	case ParticipationTotal, ParticipationPartial:
		return Participation(s)
	default:
		return def
	}
}

// Style is a connection rendering style.
type Style string

// Style values.
const (
	StyleStraight   Style = "straight"
	StyleOrthogonal Style = "orthogonal"
)

// ParseStyle maps a raw string onto a Style with fallback def.
func ParseStyle(s string, def Style) Style {
	switch Style(s) {
	case StyleStraight, StyleOrthogonal:
		return Style(s)
	default:
		return def
	}
}

// ArrowKind distinguishes the two freeform arrow directions.
type ArrowKind string

// ArrowKind values.
const (
	ArrowLeft  ArrowKind = "arrow-left"
	ArrowRight ArrowKind = "arrow-right"
)

// ParseArrowKind maps a raw string onto an ArrowKind with fallback def.
func ParseArrowKind(s string, def ArrowKind) ArrowKind {
	switch ArrowKind(s) {
	case ArrowLeft, ArrowRight:
		return ArrowKind(s)
	default:
		return def
	}
}
