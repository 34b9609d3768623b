package standard

import (
	"encoding/xml"
	"fmt"

	"github.com/hargabyte/erd/internal/geometry"
	"github.com/hargabyte/erd/internal/model"
)

// Options are the sizes filled in when a document omits a shape's width or
// height. Configurable so installations can change their editor defaults
// without rewriting stored documents.
type Options struct {
	EntityWidth        float64
	EntityHeight       float64
	RelationshipWidth  float64
	RelationshipHeight float64
}

// DefaultOptions returns the documented default sizes.
func DefaultOptions() Options {
	return Options{
		EntityWidth:        DefaultEntityWidth,
		EntityHeight:       DefaultEntityHeight,
		RelationshipWidth:  DefaultRelationshipWidth,
		RelationshipHeight: DefaultRelationshipHeight,
	}
}

// Decode parses a standard-dialect document into a canonical diagram. The
// document must be well-formed and carry an <ERDiagram> root; anything else
// is a malformed-document failure. Missing optional attributes get the
// documented defaults, missing ids are generated, and references are taken
// as-is — a dangling fromId/toId is the consumer's problem, never a parse
// failure.
func Decode(text string) (*model.Diagram, error) {
	return DecodeWithOptions(text, DefaultOptions())
}

// DecodeWithOptions is Decode with configured fallback sizes.
func DecodeWithOptions(text string, opts Options) (*model.Diagram, error) {
	var doc xmlDiagram
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse standard dialect: %w", err)
	}
	return fromWire(wireView(doc), opts), nil
}

// DecodeAny is Decode without the root-name requirement. The dispatcher uses
// it as the permissive fallback for unrecognized roots: a document with no
// known elements decodes to an empty diagram.
func DecodeAny(text string) (*model.Diagram, error) {
	return DecodeAnyWithOptions(text, DefaultOptions())
}

// DecodeAnyWithOptions is DecodeAny with configured fallback sizes.
func DecodeAnyWithOptions(text string, opts Options) (*model.Diagram, error) {
	var doc xmlAnyRoot
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse standard dialect: %w", err)
	}
	return fromWire(doc, opts), nil
}

func wireView(doc xmlDiagram) xmlAnyRoot {
	return xmlAnyRoot{
		Entities:        doc.Entities,
		Relationships:   doc.Relationships,
		Attributes:      doc.Attributes,
		Connections:     doc.Connections,
		Generalizations: doc.Generalizations,
		Lines:           doc.Lines,
		Arrows:          doc.Arrows,
	}
}

func fromWire(doc xmlAnyRoot, opts Options) *model.Diagram {
	d := model.New()

	for _, xe := range doc.Entities {
		d.Entities = append(d.Entities, model.Entity{
			ID:   model.EnsureID(xe.ID),
			Name: xe.Name,
			Position: model.Point{
				X: parseNum(xe.X, 0),
				Y: parseNum(xe.Y, 0),
			},
			Size: model.Size{
				Width:  parseNum(xe.Width, opts.EntityWidth),
				Height: parseNum(xe.Height, opts.EntityHeight),
			},
			Rotation:   parseNum(xe.Rotation, 0),
			IsWeak:     parseBool(xe.Weak),
			Attributes: decodeOwnedAttrs(xe.Attributes),
		})
	}

	for _, xr := range doc.Relationships {
		r := model.Relationship{
			ID:   model.EnsureID(xr.ID),
			Name: xr.Name,
			Position: model.Point{
				X: parseNum(xr.X, 0),
				Y: parseNum(xr.Y, 0),
			},
			Size: model.Size{
				Width:  parseNum(xr.Width, opts.RelationshipWidth),
				Height: parseNum(xr.Height, opts.RelationshipHeight),
			},
			Rotation:   parseNum(xr.Rotation, 0),
			IsWeak:     parseBool(xr.Weak),
			Attributes: decodeOwnedAttrs(xr.Attributes),
		}
		if len(xr.Members) > 0 {
			r.Cardinalities = make(map[string]model.Cardinality, len(xr.Members))
			r.Participations = make(map[string]model.Participation, len(xr.Members))
		}
		for _, m := range xr.Members {
			if m.EntityID == "" {
				continue
			}
			r.EntityIDs = append(r.EntityIDs, m.EntityID)
			r.Cardinalities[m.EntityID] = model.ParseCardinality(m.Cardinality, model.CardinalityOne)
			r.Participations[m.EntityID] = model.ParseParticipation(m.Participation, model.ParticipationPartial)
		}
		d.Relationships = append(d.Relationships, r)
	}

	for _, xa := range doc.Attributes {
		d.Attributes = append(d.Attributes, model.Attribute{
			ID:   model.EnsureID(xa.ID),
			Name: xa.Name,
			Position: model.Point{
				X: parseNum(xa.X, 0),
				Y: parseNum(xa.Y, 0),
			},
			IsKey:             parseBool(xa.Key),
			IsDiscriminant:    parseBool(xa.Discriminant),
			IsMultivalued:     parseBool(xa.Multivalued),
			IsDerived:         parseBool(xa.Derived),
			IsComposite:       parseBool(xa.Composite),
			EntityID:          xa.EntityID,
			RelationshipID:    xa.RelationshipID,
			ParentAttributeID: xa.ParentID,
			SubAttributeIDs:   splitIDs(xa.SubIDs),
		})
	}

	for _, xc := range doc.Connections {
		c := model.Connection{
			ID:            model.EnsureID(xc.ID),
			FromID:        xc.FromID,
			ToID:          xc.ToID,
			FromPoint:     model.ParseEdge(xc.FromPoint, model.EdgeRight),
			ToPoint:       model.ParseEdge(xc.ToPoint, model.EdgeLeft),
			Style:         model.ParseStyle(xc.Style, model.StyleStraight),
			Cardinality:   model.ParseCardinality(xc.Cardinality, model.CardinalityOne),
			Participation: model.ParseParticipation(xc.Participation, model.ParticipationPartial),
			Points:        splitPoints(xc.Points),
		}
		if xc.LabelX != "" || xc.LabelY != "" {
			c.LabelPosition = &model.Point{X: parseNum(xc.LabelX, 0), Y: parseNum(xc.LabelY, 0)}
		}
		for _, w := range xc.Waypoints {
			c.Waypoints = append(c.Waypoints, model.Point{X: parseNum(w.X, 0), Y: parseNum(w.Y, 0)})
		}
		d.Connections = append(d.Connections, c)
	}

	for _, xg := range doc.Generalizations {
		d.Generalizations = append(d.Generalizations, model.Generalization{
			ID: model.EnsureID(xg.ID),
			Position: model.Point{
				X: parseNum(xg.X, 0),
				Y: parseNum(xg.Y, 0),
			},
			Size: model.Size{
				Width:  parseNum(xg.Width, 0),
				Height: parseNum(xg.Height, 0),
			},
			ParentID: xg.ParentID,
			ChildIDs: splitIDs(xg.ChildIDs),
			IsTotal:  parseBool(xg.Total),
		})
	}

	for _, xl := range doc.Lines {
		d.Lines = append(d.Lines, model.LineShape{
			ID:          model.EnsureID(xl.ID),
			Points:      splitPoints(xl.Points),
			StrokeWidth: parseNum(xl.StrokeWidth, DefaultStrokeWidth),
		})
	}

	for _, xa := range doc.Arrows {
		d.Arrows = append(d.Arrows, model.ArrowShape{
			ID:            model.EnsureID(xa.ID),
			Points:        splitPoints(xa.Points),
			StrokeWidth:   parseNum(xa.StrokeWidth, DefaultStrokeWidth),
			Kind:          model.ParseArrowKind(xa.Type, model.ArrowRight),
			PointerLength: parseNum(xa.PointerLength, DefaultPointerLength),
			PointerWidth:  parseNum(xa.PointerWidth, DefaultPointerWidth),
		})
	}

	d.Normalize()
	return d
}

func decodeOwnedAttrs(attrs []xmlOwnedAttr) []model.EntityAttribute {
	var out []model.EntityAttribute
	for _, xa := range attrs {
		out = append(out, model.EntityAttribute{
			ID:              model.EnsureID(xa.ID),
			Name:            xa.Name,
			IsKey:           parseBool(xa.Key),
			IsDiscriminant:  parseBool(xa.Discriminant),
			IsMultivalued:   parseBool(xa.Multivalued),
			IsDerived:       parseBool(xa.Derived),
			IsComposite:     parseBool(xa.Composite),
			SubAttributeIDs: splitIDs(xa.SubIDs),
		})
	}
	return out
}

// ShapePosition derives a shape's position from its point list: the
// componentwise minimum, i.e. the top-left corner of the bounding box. The
// wire format never stores positions for lines, arrows, or connection point
// caches.
func ShapePosition(points []float64) model.Point {
	return geometry.MinCorner(points)
}
