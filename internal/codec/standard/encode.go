package standard

import (
	"encoding/xml"
	"fmt"

	"github.com/hargabyte/erd/internal/model"
)

// Encode serializes a diagram as a standard-dialect <ERDiagram> document.
// The mapping is field-for-field: ids stay opaque strings, element order
// follows diagram order, and optional fields (rotation, label position,
// false flags) are omitted rather than written empty. String escaping is
// handled by the XML layer.
func Encode(d *model.Diagram) (string, error) {
	doc := xmlDiagram{Version: Version}

	for _, e := range d.Entities {
		doc.Entities = append(doc.Entities, xmlEntity{
			ID:         e.ID,
			Name:       e.Name,
			X:          formatNum(e.Position.X),
			Y:          formatNum(e.Position.Y),
			Width:      formatNum(e.Size.Width),
			Height:     formatNum(e.Size.Height),
			Rotation:   encodeRotation(e.Rotation),
			Weak:       formatBool(e.IsWeak),
			Attributes: encodeOwnedAttrs(e.Attributes),
		})
	}

	for _, r := range d.Relationships {
		xr := xmlRelationship{
			ID:         r.ID,
			Name:       r.Name,
			X:          formatNum(r.Position.X),
			Y:          formatNum(r.Position.Y),
			Width:      formatNum(r.Size.Width),
			Height:     formatNum(r.Size.Height),
			Rotation:   encodeRotation(r.Rotation),
			Weak:       formatBool(r.IsWeak),
			Attributes: encodeOwnedAttrs(r.Attributes),
		}
		for _, id := range r.EntityIDs {
			xr.Members = append(xr.Members, xmlMember{
				EntityID:      id,
				Cardinality:   string(r.Cardinalities[id]),
				Participation: string(r.Participations[id]),
			})
		}
		doc.Relationships = append(doc.Relationships, xr)
	}

	for _, a := range d.Attributes {
		doc.Attributes = append(doc.Attributes, xmlAttribute{
			ID:             a.ID,
			Name:           a.Name,
			X:              formatNum(a.Position.X),
			Y:              formatNum(a.Position.Y),
			Key:            formatBool(a.IsKey),
			Discriminant:   formatBool(a.IsDiscriminant),
			Multivalued:    formatBool(a.IsMultivalued),
			Derived:        formatBool(a.IsDerived),
			Composite:      formatBool(a.IsComposite),
			EntityID:       a.EntityID,
			RelationshipID: a.RelationshipID,
			ParentID:       a.ParentAttributeID,
			SubIDs:         joinIDs(a.SubAttributeIDs),
		})
	}

	for _, c := range d.Connections {
		xc := xmlConnection{
			ID:            c.ID,
			FromID:        c.FromID,
			ToID:          c.ToID,
			FromPoint:     string(c.FromPoint),
			ToPoint:       string(c.ToPoint),
			Style:         string(c.Style),
			Cardinality:   string(c.Cardinality),
			Participation: string(c.Participation),
			Points:        joinPoints(c.Points),
		}
		if c.LabelPosition != nil {
			xc.LabelX = formatNum(c.LabelPosition.X)
			xc.LabelY = formatNum(c.LabelPosition.Y)
		}
		for _, w := range c.Waypoints {
			xc.Waypoints = append(xc.Waypoints, xmlWaypoint{X: formatNum(w.X), Y: formatNum(w.Y)})
		}
		doc.Connections = append(doc.Connections, xc)
	}

	for _, g := range d.Generalizations {
		doc.Generalizations = append(doc.Generalizations, xmlGeneralization{
			ID:       g.ID,
			X:        formatNum(g.Position.X),
			Y:        formatNum(g.Position.Y),
			Width:    formatNum(g.Size.Width),
			Height:   formatNum(g.Size.Height),
			ParentID: g.ParentID,
			ChildIDs: joinIDs(g.ChildIDs),
			Total:    formatBool(g.IsTotal),
		})
	}

	for _, l := range d.Lines {
		doc.Lines = append(doc.Lines, xmlLine{
			ID:          l.ID,
			Points:      joinPoints(l.Points),
			StrokeWidth: formatNum(l.StrokeWidth),
		})
	}

	for _, a := range d.Arrows {
		doc.Arrows = append(doc.Arrows, xmlArrow{
			ID:            a.ID,
			Points:        joinPoints(a.Points),
			StrokeWidth:   formatNum(a.StrokeWidth),
			Type:          string(a.Kind),
			PointerLength: formatNum(a.PointerLength),
			PointerWidth:  formatNum(a.PointerWidth),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal diagram: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

func encodeOwnedAttrs(attrs []model.EntityAttribute) []xmlOwnedAttr {
	var out []xmlOwnedAttr
	for _, a := range attrs {
		out = append(out, xmlOwnedAttr{
			ID:           a.ID,
			Name:         a.Name,
			Key:          formatBool(a.IsKey),
			Discriminant: formatBool(a.IsDiscriminant),
			Multivalued:  formatBool(a.IsMultivalued),
			Derived:      formatBool(a.IsDerived),
			Composite:    formatBool(a.IsComposite),
			SubIDs:       joinIDs(a.SubAttributeIDs),
		})
	}
	return out
}

// encodeRotation omits the default 0 rotation.
func encodeRotation(deg float64) string {
	if deg == 0 {
		return ""
	}
	return formatNum(deg)
}
