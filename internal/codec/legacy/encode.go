package legacy

import (
	"encoding/xml"
	"fmt"
	"math"

	"github.com/hargabyte/erd/internal/model"
)

// Options are the sizes assumed for shapes the dialect stores only a center
// point for. The legacy application's own internal default entity size was
// never conclusively confirmed (its published constants say 80×40, its layout
// heuristics suggest 100×50); we assume the standard-dialect defaults 150×80
// so standard→legacy→standard round trips are drift-free. Override through
// the legacy section of the config for binary compatibility.
type Options struct {
	EntityWidth        float64
	EntityHeight       float64
	RelationshipWidth  float64
	RelationshipHeight float64
}

// DefaultOptions returns the compatibility sizes documented above.
func DefaultOptions() Options {
	return Options{
		EntityWidth:        150,
		EntityHeight:       80,
		RelationshipWidth:  120,
		RelationshipHeight: 80,
	}
}

// Generalization triangles have no stored size either.
const (
	generalizationWidth  = 60
	generalizationHeight = 40
)

// AttrSize is the visual size heuristic for a standalone attribute, used on
// both encode and decode so positions do not drift across a round trip.
func AttrSize(name string) model.Size {
	w := float64(len(name)*8 + 20)
	if w < 80 {
		w = 80
	}
	return model.Size{Width: w, Height: 30}
}

// Encode serializes a diagram as an <ERDatabaseModel> document. Integer ids
// are assigned in first-seen order by a fresh allocator per call. Standalone
// canvas attributes fold into their owner's Attributes section and keep a
// Position element; nested entity attributes have no position. Freeform
// lines, arrows, and explicit connections have no legacy representation and
// are dropped, as is total participation on relationships that degrade to
// NToN.
func Encode(d *model.Diagram) (string, error) {
	alloc := newIDAllocator()
	doc := xmlModel{}

	for i := range d.Entities {
		e := &d.Entities[i]
		set, positions := encodeEntitySet(d, e, alloc)
		if e.IsWeak {
			doc.Schema.WeakEntitySets = append(doc.Schema.WeakEntitySets, set)
		} else {
			doc.Schema.StrongEntitySets = append(doc.Schema.StrongEntitySets, set)
		}
		doc.Diagram.Positions = append(doc.Diagram.Positions, centerPosition(alloc.id(e.ID), e.Position, e.Size))
		doc.Diagram.Positions = append(doc.Diagram.Positions, positions...)
	}

	for i := range d.Relationships {
		r := &d.Relationships[i]
		set, positions := encodeRelSet(d, r, alloc)
		switch InferRelType(r) {
		case RelOneToOne:
			doc.Schema.RelOneToOne = append(doc.Schema.RelOneToOne, set)
		case IdentifyingRelOneToOne:
			doc.Schema.IdentifyingOneToOne = append(doc.Schema.IdentifyingOneToOne, set)
		case RelOneToN:
			doc.Schema.RelOneToN = append(doc.Schema.RelOneToN, set)
		case IdentifyingRelOneToN:
			doc.Schema.IdentifyingOneToN = append(doc.Schema.IdentifyingOneToN, set)
		default:
			doc.Schema.RelNToN = append(doc.Schema.RelNToN, set)
		}
		doc.Diagram.Positions = append(doc.Diagram.Positions, centerPosition(alloc.id(r.ID), r.Position, r.Size))
		doc.Diagram.Positions = append(doc.Diagram.Positions, positions...)
	}

	for _, g := range d.Generalizations {
		set := xmlGenSet{
			ID:     alloc.id(g.ID),
			Parent: xmlEntityRef{EntitySetID: alloc.id(g.ParentID)},
		}
		for _, child := range g.ChildIDs {
			set.Children = append(set.Children, xmlEntityRef{EntitySetID: alloc.id(child)})
		}
		if g.IsTotal {
			doc.Schema.TotalGeneralizations = append(doc.Schema.TotalGeneralizations, set)
		} else {
			doc.Schema.Generalizations = append(doc.Schema.Generalizations, set)
		}
		doc.Diagram.Positions = append(doc.Diagram.Positions, centerPosition(set.ID, g.Position, g.Size))
	}

	doc.Schema.LastID = alloc.last()

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal legacy model: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// encodeEntitySet builds the logical entity set plus Position elements for
// its standalone attributes.
func encodeEntitySet(d *model.Diagram, e *model.Entity, alloc *idAllocator) (xmlEntitySet, []xmlPosition) {
	set := xmlEntitySet{ID: alloc.id(e.ID), Name: e.Name}
	var positions []xmlPosition

	appendAttr := func(id int, name string, multivalued, derived, composite, key, discriminant bool) {
		set.Attributes = append(set.Attributes, xmlSchemaAttr{
			ID: id, Name: name, Multivalued: multivalued, Derived: derived, Composite: composite,
		})
		if key {
			set.PrimaryKey = append(set.PrimaryKey, xmlAttrRef{ID: id})
		}
		if discriminant {
			set.Discriminant = append(set.Discriminant, xmlAttrRef{ID: id})
		}
	}

	for _, a := range e.Attributes {
		appendAttr(alloc.id(a.ID), a.Name, a.IsMultivalued, a.IsDerived, a.IsComposite, a.IsKey, a.IsDiscriminant)
	}
	for _, a := range d.Attributes {
		if a.EntityID != e.ID {
			continue
		}
		id := alloc.id(a.ID)
		appendAttr(id, a.Name, a.IsMultivalued, a.IsDerived, a.IsComposite, a.IsKey, a.IsDiscriminant)
		positions = append(positions, centerPosition(id, a.Position, AttrSize(a.Name)))
	}
	return set, positions
}

// encodeRelSet builds the relationship set with its branches, own
// attributes, and standalone-attribute positions.
func encodeRelSet(d *model.Diagram, r *model.Relationship, alloc *idAllocator) (xmlRelSet, []xmlPosition) {
	set := xmlRelSet{ID: alloc.id(r.ID), Name: r.Name}
	var positions []xmlPosition

	relType := InferRelType(r)
	for i, entityID := range r.EntityIDs {
		total := r.Participations[entityID] == model.ParticipationTotal
		if relType == RelNToN {
			// No identifying NToN variant exists; the flag is dropped.
			total = false
		}
		set.Branches = append(set.Branches, xmlBranch{
			ID:                 alloc.id(branchKey(r.ID, i)),
			EntitySetID:        alloc.id(entityID),
			Cardinality:        string(cardinalityOrDefault(r.Cardinalities[entityID])),
			TotalParticipation: total,
		})
	}

	for _, a := range r.Attributes {
		set.Attributes = append(set.Attributes, xmlSchemaAttr{
			ID: alloc.id(a.ID), Name: a.Name,
			Multivalued: a.IsMultivalued, Derived: a.IsDerived, Composite: a.IsComposite,
		})
	}
	for _, a := range d.Attributes {
		if a.RelationshipID != r.ID {
			continue
		}
		id := alloc.id(a.ID)
		set.Attributes = append(set.Attributes, xmlSchemaAttr{
			ID: id, Name: a.Name,
			Multivalued: a.IsMultivalued, Derived: a.IsDerived, Composite: a.IsComposite,
		})
		positions = append(positions, centerPosition(id, a.Position, AttrSize(a.Name)))
	}
	return set, positions
}

func cardinalityOrDefault(c model.Cardinality) model.Cardinality {
	if c == "" {
		return model.CardinalityOne
	}
	return c
}

// centerPosition converts a top-left position to the dialect's rounded
// center coordinates.
func centerPosition(refID int, p model.Point, s model.Size) xmlPosition {
	return xmlPosition{
		RefID:   refID,
		CenterX: int(math.Round(p.X + s.Width/2)),
		CenterY: int(math.Round(p.Y + s.Height/2)),
	}
}
