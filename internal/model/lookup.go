package model

// NodeKind tells FindNode callers what a resolved id refers to.
type NodeKind int

// Node kinds.
const (
	NodeEntity NodeKind = iota
	NodeRelationship
)

// Node is the common view of an entity or relationship that connections and
// generalizations attach to.
type Node struct {
	Kind     NodeKind
	ID       string
	Name     string
	Position Point
	Size     Size
}

// FindEntity returns the entity with the given id. The boolean is false for
// dangling ids; callers must treat not-found as a skippable condition, never
// an error.
func (d *Diagram) FindEntity(id string) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].ID == id {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// FindRelationship returns the relationship with the given id.
func (d *Diagram) FindRelationship(id string) (*Relationship, bool) {
	for i := range d.Relationships {
		if d.Relationships[i].ID == id {
			return &d.Relationships[i], true
		}
	}
	return nil, false
}

// FindNode resolves an id against entities first, then relationships.
func (d *Diagram) FindNode(id string) (Node, bool) {
	if e, ok := d.FindEntity(id); ok {
		return Node{Kind: NodeEntity, ID: e.ID, Name: e.Name, Position: e.Position, Size: e.Size}, true
	}
	if r, ok := d.FindRelationship(id); ok {
		return Node{Kind: NodeRelationship, ID: r.ID, Name: r.Name, Position: r.Position, Size: r.Size}, true
	}
	return Node{}, false
}

// FindAttribute returns the standalone attribute with the given id.
func (d *Diagram) FindAttribute(id string) (*Attribute, bool) {
	for i := range d.Attributes {
		if d.Attributes[i].ID == id {
			return &d.Attributes[i], true
		}
	}
	return nil, false
}

// FindGeneralization returns the generalization with the given id.
func (d *Diagram) FindGeneralization(id string) (*Generalization, bool) {
	for i := range d.Generalizations {
		if d.Generalizations[i].ID == id {
			return &d.Generalizations[i], true
		}
	}
	return nil, false
}

// ConnectionsAt returns all connections with an endpoint on the given node id,
// in diagram order.
func (d *Diagram) ConnectionsAt(nodeID string) []Connection {
	var out []Connection
	for _, c := range d.Connections {
		if c.FromID == nodeID || c.ToID == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// Normalize repairs invariants after a parse: cardinality/participation keys
// that do not appear in a relationship's EntityIDs are dropped, and nil maps
// are left nil. It never fails; partially valid diagrams still load.
func (d *Diagram) Normalize() {
	for i := range d.Relationships {
		r := &d.Relationships[i]
		members := make(map[string]bool, len(r.EntityIDs))
		for _, id := range r.EntityIDs {
			members[id] = true
		}
		for id := range r.Cardinalities {
			if !members[id] {
				delete(r.Cardinalities, id)
			}
		}
		for id := range r.Participations {
			if !members[id] {
				delete(r.Participations, id)
			}
		}
	}
}
