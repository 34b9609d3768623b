package model

// Cascade deletes. Removing a node also removes the standalone attributes it
// owns, every connection touching it, and prunes it out of generalizations and
// relationship branches. All removals tolerate unknown ids (no-op).

// RemoveEntity deletes the entity with the given id and cascades to
// dependents. Generalizations left with no parent and no children are dropped.
func (d *Diagram) RemoveEntity(id string) {
	d.Entities = deleteByID(d.Entities, func(e Entity) string { return e.ID }, id)
	d.cascadeNodeRemoval(id)

	kept := d.Generalizations[:0]
	for _, g := range d.Generalizations {
		if g.ParentID == id {
			g.ParentID = ""
		}
		g.ChildIDs = removeString(g.ChildIDs, id)
		if g.ParentID == "" && len(g.ChildIDs) == 0 {
			continue
		}
		kept = append(kept, g)
	}
	d.Generalizations = kept

	for i := range d.Relationships {
		r := &d.Relationships[i]
		r.EntityIDs = removeString(r.EntityIDs, id)
		delete(r.Cardinalities, id)
		delete(r.Participations, id)
	}
}

// RemoveRelationship deletes the relationship with the given id and cascades
// to dependents.
func (d *Diagram) RemoveRelationship(id string) {
	d.Relationships = deleteByID(d.Relationships, func(r Relationship) string { return r.ID }, id)
	d.cascadeNodeRemoval(id)

	// A relationship can itself participate in another relationship.
	for i := range d.Relationships {
		r := &d.Relationships[i]
		r.EntityIDs = removeString(r.EntityIDs, id)
		delete(r.Cardinalities, id)
		delete(r.Participations, id)
	}
}

// RemoveConnection deletes a single connection.
func (d *Diagram) RemoveConnection(id string) {
	d.Connections = deleteByID(d.Connections, func(c Connection) string { return c.ID }, id)
}

// RemoveGeneralization deletes a single generalization.
func (d *Diagram) RemoveGeneralization(id string) {
	d.Generalizations = deleteByID(d.Generalizations, func(g Generalization) string { return g.ID }, id)
}

// RemoveAttribute deletes a standalone attribute together with its composite
// subtree, and unlinks it from its parent attribute if it has one.
func (d *Diagram) RemoveAttribute(id string) {
	a, ok := d.FindAttribute(id)
	if !ok {
		return
	}
	subs := append([]string(nil), a.SubAttributeIDs...)
	parentID := a.ParentAttributeID

	d.Attributes = deleteByID(d.Attributes, func(a Attribute) string { return a.ID }, id)
	for _, sub := range subs {
		d.RemoveAttribute(sub)
	}
	if parentID != "" {
		if parent, ok := d.FindAttribute(parentID); ok {
			parent.SubAttributeIDs = removeString(parent.SubAttributeIDs, id)
		}
	}
}

// cascadeNodeRemoval drops connections touching the node and the standalone
// attributes it owned.
func (d *Diagram) cascadeNodeRemoval(id string) {
	conns := d.Connections[:0]
	for _, c := range d.Connections {
		if c.FromID == id || c.ToID == id {
			continue
		}
		conns = append(conns, c)
	}
	d.Connections = conns

	var owned []string
	for _, a := range d.Attributes {
		if a.EntityID == id || a.RelationshipID == id {
			owned = append(owned, a.ID)
		}
	}
	for _, attrID := range owned {
		d.RemoveAttribute(attrID)
	}
}

func deleteByID[T any](items []T, idOf func(T) string, id string) []T {
	kept := items[:0]
	for _, item := range items {
		if idOf(item) == id {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func removeString(items []string, s string) []string {
	kept := items[:0]
	for _, item := range items {
		if item == s {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}
