// Package geometry provides pure routing helpers shared by the canvas layer
// and the interchange codecs: choosing which edge of a node a connection
// should attach to, and rewriting freeform polylines as orthogonal paths.
// Everything here is deterministic and stateless.
package geometry

import (
	"github.com/hargabyte/erd/internal/model"
)

// Box is a rectangle given by its top-left corner and size. Diamond-shaped
// nodes use their bounding box.
type Box struct {
	Position model.Point
	Size     model.Size
}

// edgeOrder is the fixed tie-break priority for edge selection.
var edgeOrder = []model.Edge{model.EdgeTop, model.EdgeRight, model.EdgeBottom, model.EdgeLeft}

// ClosestEdge returns the edge of box whose midpoint is nearest to p,
// comparing the point's normalized offset within the box rather than raw
// distance, so elongated boxes still pick the intuitively nearest side.
// Ties break in the fixed order top, right, bottom, left.
func ClosestEdge(p model.Point, box Box) model.Edge {
	w := box.Size.Width
	h := box.Size.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	// Offset of p from the box center, normalized to [-0.5, 0.5] inside the box.
	nx := (p.X - box.Position.X - w/2) / w
	ny := (p.Y - box.Position.Y - h/2) / h

	dist := map[model.Edge]float64{
		model.EdgeTop:    ny + 0.5,
		model.EdgeRight:  0.5 - nx,
		model.EdgeBottom: 0.5 - ny,
		model.EdgeLeft:   nx + 0.5,
	}

	best := edgeOrder[0]
	for _, e := range edgeOrder[1:] {
		if dist[e] < dist[best] {
			best = e
		}
	}
	return best
}

// EdgeMidpoint returns the midpoint of the given edge of box. EdgeCenter (and
// anything unrecognized) yields the box center.
func EdgeMidpoint(box Box, edge model.Edge) model.Point {
	cx := box.Position.X + box.Size.Width/2
	cy := box.Position.Y + box.Size.Height/2
	switch edge {
	case model.EdgeTop:
		return model.Point{X: cx, Y: box.Position.Y}
	case model.EdgeRight:
		return model.Point{X: box.Position.X + box.Size.Width, Y: cy}
	case model.EdgeBottom:
		return model.Point{X: cx, Y: box.Position.Y + box.Size.Height}
	case model.EdgeLeft:
		return model.Point{X: box.Position.X, Y: cy}
	default:
		return model.Point{X: cx, Y: cy}
	}
}

// BestAvailableEdge picks an attachment edge for a new connection at nodeID,
// preferring the edge closest to toward but stepping to the next edge in
// priority order when earlier connections already occupy it. With all four
// edges taken it falls back to the closest edge and lets the renderer offset
// along it. Deterministic given the same existing connections and call order.
func BestAvailableEdge(nodeID string, existing []model.Connection, toward model.Point, box Box) model.Edge {
	used := make(map[model.Edge]int, 4)
	for _, c := range existing {
		if c.FromID == nodeID {
			used[c.FromPoint]++
		}
		if c.ToID == nodeID {
			used[c.ToPoint]++
		}
	}

	preferred := ClosestEdge(toward, box)
	if used[preferred] == 0 {
		return preferred
	}

	// Walk the priority ring starting just after the preferred edge.
	start := 0
	for i, e := range edgeOrder {
		if e == preferred {
			start = i
			break
		}
	}
	for i := 1; i < len(edgeOrder); i++ {
		e := edgeOrder[(start+i)%len(edgeOrder)]
		if used[e] == 0 {
			return e
		}
	}
	return preferred
}
