// Package model defines the canonical in-memory diagram representation.
// Both XML dialects map onto and off of these types; the UI store and the
// interchange codecs share them. Positions are the top-left corner of a
// shape's bounding box unless noted otherwise.
package model

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Minimum shape dimensions enforced on resize.
const (
	MinEntityWidth  = 50
	MinEntityHeight = 30
)

// Entity is a box on the canvas representing an entity set.
type Entity struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Position   Point             `json:"position"`
	Size       Size              `json:"size"`
	Rotation   float64           `json:"rotation,omitempty"`
	IsWeak     bool              `json:"isWeak,omitempty"`
	Attributes []EntityAttribute `json:"attributes,omitempty"`
}

// EntityAttribute is an attribute owned by an Entity or Relationship.
// Composite attributes reference their decomposition through SubAttributeIDs.
type EntityAttribute struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	IsKey           bool     `json:"isKey,omitempty"`
	IsDiscriminant  bool     `json:"isDiscriminant,omitempty"`
	IsMultivalued   bool     `json:"isMultivalued,omitempty"`
	IsDerived       bool     `json:"isDerived,omitempty"`
	IsComposite     bool     `json:"isComposite,omitempty"`
	SubAttributeIDs []string `json:"subAttributeIds,omitempty"`
}

// Relationship is a diamond on the canvas. EntityIDs is ordered and may hold
// more than two participants for n-ary relationships. Every key in
// Cardinalities and Participations must appear in EntityIDs; Normalize
// enforces this after parsing.
type Relationship struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Position       Point                    `json:"position"`
	Size           Size                     `json:"size"`
	Rotation       float64                  `json:"rotation,omitempty"`
	IsWeak         bool                     `json:"isWeak,omitempty"`
	EntityIDs      []string                 `json:"entityIds"`
	Attributes     []EntityAttribute        `json:"attributes,omitempty"`
	Cardinalities  map[string]Cardinality   `json:"cardinalities,omitempty"`
	Participations map[string]Participation `json:"participations,omitempty"`
}

// Attribute is a standalone canvas attribute (an oval), distinct from
// EntityAttribute. Exactly one of EntityID or RelationshipID is set; the
// reference is weak and may dangle. Composite trees link through
// ParentAttributeID and SubAttributeIDs.
type Attribute struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Position          Point    `json:"position"`
	IsKey             bool     `json:"isKey,omitempty"`
	IsDiscriminant    bool     `json:"isDiscriminant,omitempty"`
	IsMultivalued     bool     `json:"isMultivalued,omitempty"`
	IsDerived         bool     `json:"isDerived,omitempty"`
	IsComposite       bool     `json:"isComposite,omitempty"`
	EntityID          string   `json:"entityId,omitempty"`
	RelationshipID    string   `json:"relationshipId,omitempty"`
	ParentAttributeID string   `json:"parentAttributeId,omitempty"`
	SubAttributeIDs   []string `json:"subAttributeIds,omitempty"`
}

// Connection links two nodes (entities or relationships) on the canvas.
// FromID/ToID are weak references. Waypoints are user-dragged intermediate
// points; Points is the last-computed rendering cache and is recomputed at
// render time, never authoritative.
type Connection struct {
	ID            string        `json:"id"`
	FromID        string        `json:"fromId"`
	ToID          string        `json:"toId"`
	FromPoint     Edge          `json:"fromPoint"`
	ToPoint       Edge          `json:"toPoint"`
	Style         Style         `json:"style"`
	Cardinality   Cardinality   `json:"cardinality"`
	Participation Participation `json:"participation"`
	Waypoints     []Point       `json:"waypoints,omitempty"`
	Points        []float64     `json:"points,omitempty"`
	LabelPosition *Point        `json:"labelPosition,omitempty"`
}

// Generalization is an ISA hierarchy: one parent entity, ordered child
// entities, rendered as a triangle. IsTotal draws a double line to the parent.
// ParentID and ChildIDs are weak references.
type Generalization struct {
	ID       string   `json:"id"`
	Position Point    `json:"position"`
	Size     Size     `json:"size"`
	ParentID string   `json:"parentId"`
	ChildIDs []string `json:"childIds"`
	IsTotal  bool     `json:"isTotal,omitempty"`
}

// LineShape is a freeform annotation line. Points is a flat x,y coordinate
// sequence.
type LineShape struct {
	ID          string    `json:"id"`
	Points      []float64 `json:"points"`
	StrokeWidth float64   `json:"strokeWidth"`
}

// ArrowShape is a freeform annotation arrow.
type ArrowShape struct {
	ID            string    `json:"id"`
	Points        []float64 `json:"points"`
	StrokeWidth   float64   `json:"strokeWidth"`
	Kind          ArrowKind `json:"type"`
	PointerLength float64   `json:"pointerLength"`
	PointerWidth  float64   `json:"pointerWidth"`
}

// Diagram is the aggregate root. Connections and generalizations hold weak
// id references into the entity/relationship lists; a dangling reference is
// tolerated everywhere (looked up as not-found, rendered as nothing).
type Diagram struct {
	Entities        []Entity         `json:"entities"`
	Relationships   []Relationship   `json:"relationships"`
	Attributes      []Attribute      `json:"attributes"`
	Connections     []Connection     `json:"connections"`
	Generalizations []Generalization `json:"generalizations"`
	Lines           []LineShape      `json:"lines"`
	Arrows          []ArrowShape     `json:"arrows"`
}

// New returns an empty diagram with all sequences allocated.
func New() *Diagram {
	return &Diagram{
		Entities:        []Entity{},
		Relationships:   []Relationship{},
		Attributes:      []Attribute{},
		Connections:     []Connection{},
		Generalizations: []Generalization{},
		Lines:           []LineShape{},
		Arrows:          []ArrowShape{},
	}
}

// IsEmpty reports whether the diagram holds no shapes at all.
func (d *Diagram) IsEmpty() bool {
	return len(d.Entities) == 0 && len(d.Relationships) == 0 &&
		len(d.Attributes) == 0 && len(d.Connections) == 0 &&
		len(d.Generalizations) == 0 && len(d.Lines) == 0 && len(d.Arrows) == 0
}

// ClampSize enforces the minimum entity dimensions on s and returns it.
func ClampSize(s Size) Size {
	if s.Width < MinEntityWidth {
		s.Width = MinEntityWidth
	}
	if s.Height < MinEntityHeight {
		s.Height = MinEntityHeight
	}
	return s
}

// Center returns the center point of a box with top-left p and size s.
func Center(p Point, s Size) Point {
	return Point{X: p.X + s.Width/2, Y: p.Y + s.Height/2}
}
