// Package standard implements the native XML dialect: a flat <ERDiagram>
// document with a direct field-for-field mapping onto the canonical model.
// Ids are carried as opaque strings. Optional attributes are omitted when
// absent and filled with documented defaults on decode, so a document with
// missing ids, sizes, or enum values still loads.
package standard

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Version is written to the ERDiagram version attribute.
const Version = "1.0"

// Defaults applied on decode when an attribute is absent.
const (
	DefaultEntityWidth        = 150
	DefaultEntityHeight       = 80
	DefaultRelationshipWidth  = 120
	DefaultRelationshipHeight = 80
	DefaultStrokeWidth        = 2
	DefaultPointerLength      = 10
	DefaultPointerWidth       = 10
)

// Wire structs. All attributes are strings: decode applies defaults
// explicitly instead of trusting zero values, and encode controls omission
// through omitempty.

type xmlDiagram struct {
	XMLName         xml.Name            `xml:"ERDiagram"`
	Version         string              `xml:"version,attr"`
	Entities        []xmlEntity         `xml:"entity"`
	Relationships   []xmlRelationship   `xml:"relationship"`
	Attributes      []xmlAttribute      `xml:"attribute"`
	Connections     []xmlConnection     `xml:"connection"`
	Generalizations []xmlGeneralization `xml:"generalization"`
	Lines           []xmlLine           `xml:"line"`
	Arrows          []xmlArrow          `xml:"arrow"`
}

// xmlAnyRoot is xmlDiagram without the fixed root name, used by the
// permissive decode path the dispatcher falls back to.
type xmlAnyRoot struct {
	XMLName         xml.Name
	Version         string              `xml:"version,attr"`
	Entities        []xmlEntity         `xml:"entity"`
	Relationships   []xmlRelationship   `xml:"relationship"`
	Attributes      []xmlAttribute      `xml:"attribute"`
	Connections     []xmlConnection     `xml:"connection"`
	Generalizations []xmlGeneralization `xml:"generalization"`
	Lines           []xmlLine           `xml:"line"`
	Arrows          []xmlArrow          `xml:"arrow"`
}

type xmlEntity struct {
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr"`
	X          string         `xml:"x,attr,omitempty"`
	Y          string         `xml:"y,attr,omitempty"`
	Width      string         `xml:"width,attr,omitempty"`
	Height     string         `xml:"height,attr,omitempty"`
	Rotation   string         `xml:"rotation,attr,omitempty"`
	Weak       string         `xml:"weak,attr,omitempty"`
	Attributes []xmlOwnedAttr `xml:"attribute"`
}

type xmlOwnedAttr struct {
	ID           string `xml:"id,attr,omitempty"`
	Name         string `xml:"name,attr"`
	Key          string `xml:"key,attr,omitempty"`
	Discriminant string `xml:"discriminant,attr,omitempty"`
	Multivalued  string `xml:"multivalued,attr,omitempty"`
	Derived      string `xml:"derived,attr,omitempty"`
	Composite    string `xml:"composite,attr,omitempty"`
	SubIDs       string `xml:"subAttributeIds,attr,omitempty"`
}

type xmlRelationship struct {
	ID         string         `xml:"id,attr,omitempty"`
	Name       string         `xml:"name,attr"`
	X          string         `xml:"x,attr,omitempty"`
	Y          string         `xml:"y,attr,omitempty"`
	Width      string         `xml:"width,attr,omitempty"`
	Height     string         `xml:"height,attr,omitempty"`
	Rotation   string         `xml:"rotation,attr,omitempty"`
	Weak       string         `xml:"weak,attr,omitempty"`
	Members    []xmlMember    `xml:"member"`
	Attributes []xmlOwnedAttr `xml:"attribute"`
}

// xmlMember is one participating entity: the ordered entityIds list plus the
// cardinality/participation maps keyed by entityId collapse into repeated
// member elements.
type xmlMember struct {
	EntityID      string `xml:"entityId,attr"`
	Cardinality   string `xml:"cardinality,attr,omitempty"`
	Participation string `xml:"participation,attr,omitempty"`
}

type xmlAttribute struct {
	ID             string `xml:"id,attr,omitempty"`
	Name           string `xml:"name,attr"`
	X              string `xml:"x,attr,omitempty"`
	Y              string `xml:"y,attr,omitempty"`
	Key            string `xml:"key,attr,omitempty"`
	Discriminant   string `xml:"discriminant,attr,omitempty"`
	Multivalued    string `xml:"multivalued,attr,omitempty"`
	Derived        string `xml:"derived,attr,omitempty"`
	Composite      string `xml:"composite,attr,omitempty"`
	EntityID       string `xml:"entityId,attr,omitempty"`
	RelationshipID string `xml:"relationshipId,attr,omitempty"`
	ParentID       string `xml:"parentAttributeId,attr,omitempty"`
	SubIDs         string `xml:"subAttributeIds,attr,omitempty"`
}

type xmlConnection struct {
	ID            string        `xml:"id,attr,omitempty"`
	FromID        string        `xml:"fromId,attr"`
	ToID          string        `xml:"toId,attr"`
	FromPoint     string        `xml:"fromPoint,attr,omitempty"`
	ToPoint       string        `xml:"toPoint,attr,omitempty"`
	Style         string        `xml:"style,attr,omitempty"`
	Cardinality   string        `xml:"cardinality,attr,omitempty"`
	Participation string        `xml:"participation,attr,omitempty"`
	LabelX        string        `xml:"labelX,attr,omitempty"`
	LabelY        string        `xml:"labelY,attr,omitempty"`
	Waypoints     []xmlWaypoint `xml:"waypoint"`
	Points        string        `xml:"points,attr,omitempty"`
}

type xmlWaypoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

type xmlGeneralization struct {
	ID       string `xml:"id,attr,omitempty"`
	X        string `xml:"x,attr,omitempty"`
	Y        string `xml:"y,attr,omitempty"`
	Width    string `xml:"width,attr,omitempty"`
	Height   string `xml:"height,attr,omitempty"`
	ParentID string `xml:"parentId,attr,omitempty"`
	ChildIDs string `xml:"childIds,attr,omitempty"`
	Total    string `xml:"total,attr,omitempty"`
}

type xmlLine struct {
	ID          string `xml:"id,attr,omitempty"`
	Points      string `xml:"points,attr,omitempty"`
	StrokeWidth string `xml:"strokeWidth,attr,omitempty"`
}

type xmlArrow struct {
	ID            string `xml:"id,attr,omitempty"`
	Points        string `xml:"points,attr,omitempty"`
	StrokeWidth   string `xml:"strokeWidth,attr,omitempty"`
	Type          string `xml:"type,attr,omitempty"`
	PointerLength string `xml:"pointerLength,attr,omitempty"`
	PointerWidth  string `xml:"pointerWidth,attr,omitempty"`
}

// Attribute value helpers. Numbers use native string conversion with no
// enforced precision; booleans are literal true/false and are only written
// when true.

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return ""
}

func parseNum(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	return s == "true"
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func joinPoints(points []float64) string {
	if len(points) == 0 {
		return ""
	}
	parts := make([]string, len(points))
	for i, v := range points {
		parts[i] = formatNum(v)
	}
	return strings.Join(parts, ",")
}

func splitPoints(s string) []float64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
