package geometry

import "github.com/hargabyte/erd/internal/model"

// OrthogonalPath rewrites an arbitrary polyline as an axis-aligned one. The
// input points (endpoints plus any waypoints) are all preserved in order;
// between each consecutive pair that differs in both axes a single bend point
// is inserted. fromEdge and toEdge are optional hints ("" to ignore) naming
// the edge the path leaves the first point from and the edge it enters the
// last point on: a vertical edge (top/bottom) forces the first/last segment
// onto the y axis, a horizontal edge (left/right) onto the x axis.
//
// The result contains no diagonal segments: every consecutive pair of output
// points differs in at most one axis.
func OrthogonalPath(points []model.Point, fromEdge, toEdge model.Edge) []model.Point {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return []model.Point{points[0]}
	}

	out := make([]model.Point, 0, len(points)*2-1)
	out = append(out, points[0])

	for i := 1; i < len(points); i++ {
		prev := out[len(out)-1]
		next := points[i]

		if prev.X == next.X || prev.Y == next.Y {
			out = append(out, next)
			continue
		}

		// Pick the axis the bend travels first.
		verticalFirst := false
		switch {
		case i == 1 && isVerticalEdge(fromEdge):
			verticalFirst = true
		case i == 1 && isHorizontalEdge(fromEdge):
			verticalFirst = false
		case i == len(points)-1 && isVerticalEdge(toEdge):
			// Entering on a vertical edge means the final segment is
			// vertical, so travel horizontally first.
			verticalFirst = false
		case i == len(points)-1 && isHorizontalEdge(toEdge):
			verticalFirst = true
		default:
			// Default to horizontal-then-vertical.
			verticalFirst = false
		}

		if verticalFirst {
			out = append(out, model.Point{X: prev.X, Y: next.Y})
		} else {
			out = append(out, model.Point{X: next.X, Y: prev.Y})
		}
		out = append(out, next)
	}

	return dedupePoints(out)
}

// OrthogonalFlat is OrthogonalPath over a flat x,y coordinate sequence, the
// shape encoding the canvas and the codecs use. Odd trailing values are
// dropped.
func OrthogonalFlat(flat []float64, fromEdge, toEdge model.Edge) []float64 {
	pts := make([]model.Point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, model.Point{X: flat[i], Y: flat[i+1]})
	}
	routed := OrthogonalPath(pts, fromEdge, toEdge)
	out := make([]float64, 0, len(routed)*2)
	for _, p := range routed {
		out = append(out, p.X, p.Y)
	}
	return out
}

func isVerticalEdge(e model.Edge) bool {
	return e == model.EdgeTop || e == model.EdgeBottom
}

func isHorizontalEdge(e model.Edge) bool {
	return e == model.EdgeLeft || e == model.EdgeRight
}

// dedupePoints removes consecutive duplicates produced by degenerate input
// segments.
func dedupePoints(points []model.Point) []model.Point {
	out := points[:0]
	for i, p := range points {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MinCorner returns the componentwise minimum over a flat x,y sequence: the
// top-left corner of the bounding box. An empty sequence yields the origin.
func MinCorner(flat []float64) model.Point {
	if len(flat) < 2 {
		return model.Point{}
	}
	min := model.Point{X: flat[0], Y: flat[1]}
	for i := 2; i+1 < len(flat); i += 2 {
		if flat[i] < min.X {
			min.X = flat[i]
		}
		if flat[i+1] < min.Y {
			min.Y = flat[i+1]
		}
	}
	return min
}
