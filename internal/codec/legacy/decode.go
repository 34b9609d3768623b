package legacy

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/hargabyte/erd/internal/geometry"
	"github.com/hargabyte/erd/internal/model"
)

// Decode parses an <ERDatabaseModel> document with the default assumed
// sizes.
func Decode(text string) (*model.Diagram, error) {
	return DecodeWithOptions(text, DefaultOptions())
}

// DecodeWithOptions inverts Encode: weakness comes back from the element
// tag, key/discriminant flags from PrimaryKey/Discriminant membership,
// participation from the branch totalParticipation flag (or the identifying
// tag), and every stored center coordinate converts back to top-left using
// the assumed sizes in opts — the same sizes Encode's documents were laid
// out with, so positions survive within integer rounding.
//
// Canonical ids are the decimal form of the dialect's integer ids: stable
// within the document, no global uniqueness implied. Dangling references
// (branches, parents, children naming unknown sets) are kept as dangling
// ids, never a failure.
func DecodeWithOptions(text string, opts Options) (*model.Diagram, error) {
	var doc xmlModel
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse legacy dialect: %w", err)
	}

	dec := &decoder{
		opts: opts,
		pos:  make(map[int]model.Point, len(doc.Diagram.Positions)),
		out:  model.New(),
	}
	for _, p := range doc.Diagram.Positions {
		dec.pos[p.RefID] = model.Point{X: float64(p.CenterX), Y: float64(p.CenterY)}
	}

	for _, set := range doc.Schema.StrongEntitySets {
		dec.entitySet(set, false)
	}
	for _, set := range doc.Schema.WeakEntitySets {
		dec.entitySet(set, true)
	}

	dec.relGroup(doc.Schema.RelOneToOne, false, false)
	dec.relGroup(doc.Schema.IdentifyingOneToOne, true, false)
	dec.relGroup(doc.Schema.RelOneToN, false, false)
	dec.relGroup(doc.Schema.IdentifyingOneToN, true, false)
	dec.relGroup(doc.Schema.RelNToN, false, true)

	for _, set := range doc.Schema.Generalizations {
		dec.generalization(set, false)
	}
	for _, set := range doc.Schema.TotalGeneralizations {
		dec.generalization(set, true)
	}

	dec.out.Normalize()
	return dec.out, nil
}

type decoder struct {
	opts Options
	pos  map[int]model.Point
	out  *model.Diagram
}

// canonicalID maps a dialect integer id onto the canonical string id space.
func canonicalID(n int) string {
	return strconv.Itoa(n)
}

// topLeft converts a stored center back to a top-left corner for the given
// assumed size.
func (dec *decoder) topLeft(refID int, s model.Size) (model.Point, bool) {
	center, ok := dec.pos[refID]
	if !ok {
		return model.Point{}, false
	}
	return model.Point{X: center.X - s.Width/2, Y: center.Y - s.Height/2}, true
}

func (dec *decoder) entitySet(set xmlEntitySet, weak bool) {
	size := model.Size{Width: dec.opts.EntityWidth, Height: dec.opts.EntityHeight}
	pos, _ := dec.topLeft(set.ID, size)

	e := model.Entity{
		ID:       canonicalID(set.ID),
		Name:     set.Name,
		Position: pos,
		Size:     size,
		IsWeak:   weak,
	}

	keys := refSet(set.PrimaryKey)
	discs := refSet(set.Discriminant)

	for _, xa := range set.Attributes {
		if center, ok := dec.pos[xa.ID]; ok {
			// A positioned attribute round-trips as a standalone canvas
			// attribute owned by this entity.
			s := AttrSize(xa.Name)
			dec.out.Attributes = append(dec.out.Attributes, model.Attribute{
				ID:             canonicalID(xa.ID),
				Name:           xa.Name,
				Position:       model.Point{X: center.X - s.Width/2, Y: center.Y - s.Height/2},
				IsKey:          keys[xa.ID],
				IsDiscriminant: discs[xa.ID],
				IsMultivalued:  xa.Multivalued,
				IsDerived:      xa.Derived,
				IsComposite:    xa.Composite,
				EntityID:       e.ID,
			})
			continue
		}
		e.Attributes = append(e.Attributes, model.EntityAttribute{
			ID:             canonicalID(xa.ID),
			Name:           xa.Name,
			IsKey:          keys[xa.ID],
			IsDiscriminant: discs[xa.ID],
			IsMultivalued:  xa.Multivalued,
			IsDerived:      xa.Derived,
			IsComposite:    xa.Composite,
		})
	}

	dec.out.Entities = append(dec.out.Entities, e)
}

// relGroup decodes one tag group of relationship sets. identifying upgrades
// participation when no branch carries the flag; nton marks the group whose
// participation data the dialect never stored.
func (dec *decoder) relGroup(sets []xmlRelSet, identifying, nton bool) {
	for _, set := range sets {
		dec.relSet(set, identifying, nton)
	}
}

func (dec *decoder) relSet(set xmlRelSet, identifying, nton bool) {
	size := model.Size{Width: dec.opts.RelationshipWidth, Height: dec.opts.RelationshipHeight}
	pos, _ := dec.topLeft(set.ID, size)

	r := model.Relationship{
		ID:             canonicalID(set.ID),
		Name:           set.Name,
		Position:       pos,
		Size:           size,
		Cardinalities:  make(map[string]model.Cardinality, len(set.Branches)),
		Participations: make(map[string]model.Participation, len(set.Branches)),
	}

	anyTotal := false
	for _, b := range set.Branches {
		entityID := canonicalID(b.EntitySetID)
		r.EntityIDs = append(r.EntityIDs, entityID)
		r.Cardinalities[entityID] = model.ParseCardinality(b.Cardinality, model.CardinalityOne)
		p := model.ParticipationPartial
		if b.TotalParticipation && !nton {
			p = model.ParticipationTotal
			anyTotal = true
		}
		r.Participations[entityID] = p
	}
	// Identifying tags imply total participation even in documents that
	// never set the branch flag; pin it on the first branch so the tag
	// survives a round trip.
	if identifying && !anyTotal && len(r.EntityIDs) > 0 {
		r.Participations[r.EntityIDs[0]] = model.ParticipationTotal
	}

	for _, xa := range set.Attributes {
		if center, ok := dec.pos[xa.ID]; ok {
			s := AttrSize(xa.Name)
			dec.out.Attributes = append(dec.out.Attributes, model.Attribute{
				ID:             canonicalID(xa.ID),
				Name:           xa.Name,
				Position:       model.Point{X: center.X - s.Width/2, Y: center.Y - s.Height/2},
				IsMultivalued:  xa.Multivalued,
				IsDerived:      xa.Derived,
				IsComposite:    xa.Composite,
				RelationshipID: r.ID,
			})
			continue
		}
		r.Attributes = append(r.Attributes, model.EntityAttribute{
			ID:            canonicalID(xa.ID),
			Name:          xa.Name,
			IsMultivalued: xa.Multivalued,
			IsDerived:     xa.Derived,
			IsComposite:   xa.Composite,
		})
	}

	dec.out.Relationships = append(dec.out.Relationships, r)
	dec.synthesizeConnections(&r)
}

// synthesizeConnections rebuilds the canvas lines between a relationship and
// its branch entities; the dialect stores no connection objects. Attachment
// edges come from the geometry helpers so repeated branches on one entity
// spread across its edges deterministically.
func (dec *decoder) synthesizeConnections(r *model.Relationship) {
	relBox := geometry.Box{Position: r.Position, Size: r.Size}
	for _, entityID := range r.EntityIDs {
		e, ok := dec.out.FindEntity(entityID)
		if !ok {
			// Dangling branch: nothing to draw, keep the branch data.
			continue
		}
		entityBox := geometry.Box{Position: e.Position, Size: e.Size}
		from := geometry.BestAvailableEdge(entityID, dec.out.ConnectionsAt(entityID),
			model.Center(r.Position, r.Size), entityBox)
		to := geometry.ClosestEdge(model.Center(e.Position, e.Size), relBox)

		dec.out.Connections = append(dec.out.Connections, model.Connection{
			ID:            model.NewID(),
			FromID:        entityID,
			ToID:          r.ID,
			FromPoint:     from,
			ToPoint:       to,
			Style:         model.StyleStraight,
			Cardinality:   r.Cardinalities[entityID],
			Participation: r.Participations[entityID],
		})
	}
}

func (dec *decoder) generalization(set xmlGenSet, total bool) {
	size := model.Size{Width: generalizationWidth, Height: generalizationHeight}
	pos, _ := dec.topLeft(set.ID, size)

	g := model.Generalization{
		ID:       canonicalID(set.ID),
		Position: pos,
		Size:     size,
		IsTotal:  total,
	}
	if set.Parent.EntitySetID != 0 {
		g.ParentID = canonicalID(set.Parent.EntitySetID)
	}
	for _, child := range set.Children {
		g.ChildIDs = append(g.ChildIDs, canonicalID(child.EntitySetID))
	}
	dec.out.Generalizations = append(dec.out.Generalizations, g)
}

func refSet(refs []xmlAttrRef) map[int]bool {
	out := make(map[int]bool, len(refs))
	for _, r := range refs {
		out[r.ID] = true
	}
	return out
}
