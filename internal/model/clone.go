package model

// Clone returns a deep copy of the diagram. Codecs treat diagrams as
// immutable; the store and the HTTP layer clone before handing a diagram to
// anything that mutates.
func (d *Diagram) Clone() *Diagram {
	out := &Diagram{
		Entities:        make([]Entity, len(d.Entities)),
		Relationships:   make([]Relationship, len(d.Relationships)),
		Attributes:      make([]Attribute, len(d.Attributes)),
		Connections:     make([]Connection, len(d.Connections)),
		Generalizations: make([]Generalization, len(d.Generalizations)),
		Lines:           make([]LineShape, len(d.Lines)),
		Arrows:          make([]ArrowShape, len(d.Arrows)),
	}

	for i, e := range d.Entities {
		e.Attributes = cloneEntityAttributes(e.Attributes)
		out.Entities[i] = e
	}
	for i, r := range d.Relationships {
		r.EntityIDs = append([]string(nil), r.EntityIDs...)
		r.Attributes = cloneEntityAttributes(r.Attributes)
		r.Cardinalities = cloneMap(r.Cardinalities)
		r.Participations = cloneMap(r.Participations)
		out.Relationships[i] = r
	}
	for i, a := range d.Attributes {
		a.SubAttributeIDs = append([]string(nil), a.SubAttributeIDs...)
		out.Attributes[i] = a
	}
	for i, c := range d.Connections {
		c.Waypoints = append([]Point(nil), c.Waypoints...)
		c.Points = append([]float64(nil), c.Points...)
		if c.LabelPosition != nil {
			p := *c.LabelPosition
			c.LabelPosition = &p
		}
		out.Connections[i] = c
	}
	for i, g := range d.Generalizations {
		g.ChildIDs = append([]string(nil), g.ChildIDs...)
		out.Generalizations[i] = g
	}
	for i, l := range d.Lines {
		l.Points = append([]float64(nil), l.Points...)
		out.Lines[i] = l
	}
	for i, a := range d.Arrows {
		a.Points = append([]float64(nil), a.Points...)
		out.Arrows[i] = a
	}
	return out
}

func cloneEntityAttributes(attrs []EntityAttribute) []EntityAttribute {
	if attrs == nil {
		return nil
	}
	out := make([]EntityAttribute, len(attrs))
	for i, a := range attrs {
		a.SubAttributeIDs = append([]string(nil), a.SubAttributeIDs...)
		out[i] = a
	}
	return out
}

func cloneMap[V ~string](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
