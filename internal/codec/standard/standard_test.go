package standard

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hargabyte/erd/internal/model"
)

func fullDiagram() *model.Diagram {
	d := model.New()
	d.Entities = []model.Entity{
		{
			ID: "e1", Name: "Person <&> \"quoted\"",
			Position: model.Point{X: 100.5, Y: 100},
			Size:     model.Size{Width: 150, Height: 80},
			Rotation: 15,
			IsWeak:   true,
			Attributes: []model.EntityAttribute{
				{ID: "ea1", Name: "ssn", IsKey: true},
				{ID: "ea2", Name: "nick 'name'", IsMultivalued: true, IsDerived: true},
				{ID: "ea3", Name: "addr", IsComposite: true, SubAttributeIDs: []string{"ea4", "ea5"}},
			},
		},
		{ID: "e2", Name: "Course", Position: model.Point{X: 400, Y: 100}, Size: model.Size{Width: 150, Height: 80}},
	}
	d.Relationships = []model.Relationship{
		{
			ID: "r1", Name: "Enrolls",
			Position:       model.Point{X: 250, Y: 250},
			Size:           model.Size{Width: 120, Height: 80},
			EntityIDs:      []string{"e1", "e2"},
			Cardinalities:  map[string]model.Cardinality{"e1": model.CardinalityN, "e2": model.CardinalityM},
			Participations: map[string]model.Participation{"e1": model.ParticipationTotal, "e2": model.ParticipationPartial},
			Attributes:     []model.EntityAttribute{{ID: "ra1", Name: "since"}},
		},
	}
	d.Attributes = []model.Attribute{
		{ID: "a1", Name: "title", Position: model.Point{X: 420, Y: 20}, IsKey: true, EntityID: "e2"},
		{ID: "a2", Name: "grade", Position: model.Point{X: 300, Y: 360}, RelationshipID: "r1"},
		{ID: "a3", Name: "street", Position: model.Point{X: 10, Y: 10}, ParentAttributeID: "a1", SubAttributeIDs: []string{"a4"}},
	}
	d.Connections = []model.Connection{
		{
			ID: "c1", FromID: "e1", ToID: "r1",
			FromPoint: model.EdgeBottom, ToPoint: model.EdgeTop,
			Style: model.StyleOrthogonal, Cardinality: model.CardinalityN,
			Participation: model.ParticipationTotal,
			Waypoints:     []model.Point{{X: 180, Y: 220}},
			Points:        []float64{175, 180, 180, 220, 250, 290},
			LabelPosition: &model.Point{X: 200, Y: 230},
		},
	}
	d.Generalizations = []model.Generalization{
		{ID: "g1", Position: model.Point{X: 200, Y: 400}, Size: model.Size{Width: 60, Height: 40}, ParentID: "e1", ChildIDs: []string{"e2"}, IsTotal: true},
	}
	d.Lines = []model.LineShape{
		{ID: "l1", Points: []float64{0, 0, 40, 0, 40, 40}, StrokeWidth: 3},
	}
	d.Arrows = []model.ArrowShape{
		{ID: "ar1", Points: []float64{10, 10, 60, 60}, StrokeWidth: 2, Kind: model.ArrowLeft, PointerLength: 12, PointerWidth: 8},
	}
	return d
}

func TestRoundTripIdentity(t *testing.T) {
	d := fullDiagram()
	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(d, got) {
		t.Errorf("round trip not identical\n got: %#v\nwant: %#v", got, d)
	}
}

func TestEncodeEscapesStrings(t *testing.T) {
	d := model.New()
	d.Entities = []model.Entity{{ID: "e1", Name: `a<b & "c" 'd'`, Size: model.Size{Width: 150, Height: 80}}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(text, `name="a<b`) {
		t.Errorf("unescaped name in output:\n%s", text)
	}

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Entities[0].Name != `a<b & "c" 'd'` {
		t.Errorf("name mangled: %q", got.Entities[0].Name)
	}
}

func TestEncodeOmitsOptionalFields(t *testing.T) {
	d := model.New()
	d.Entities = []model.Entity{{ID: "e1", Name: "Plain", Size: model.Size{Width: 150, Height: 80}}}
	d.Connections = []model.Connection{{ID: "c1", FromID: "e1", ToID: "e1", FromPoint: model.EdgeRight, ToPoint: model.EdgeLeft, Style: model.StyleStraight, Cardinality: model.CardinalityOne, Participation: model.ParticipationPartial}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, absent := range []string{"rotation=", "weak=", "labelX=", "labelY="} {
		if strings.Contains(text, absent) {
			t.Errorf("expected %s to be omitted:\n%s", absent, text)
		}
	}
}

func TestDecodeAppliesDefaults(t *testing.T) {
	text := `<ERDiagram version="1.0">
	  <entity name="Person"/>
	  <relationship name="Likes"/>
	  <connection fromId="a" toId="b"/>
	</ERDiagram>`

	d, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	e := d.Entities[0]
	if e.Size.Width != DefaultEntityWidth || e.Size.Height != DefaultEntityHeight {
		t.Errorf("entity size = %+v", e.Size)
	}
	if e.ID == "" {
		t.Error("missing id must be generated, not left empty")
	}

	r := d.Relationships[0]
	if r.Size.Width != DefaultRelationshipWidth || r.Size.Height != DefaultRelationshipHeight {
		t.Errorf("relationship size = %+v", r.Size)
	}

	c := d.Connections[0]
	if c.FromPoint != model.EdgeRight || c.ToPoint != model.EdgeLeft {
		t.Errorf("connection points = %s/%s", c.FromPoint, c.ToPoint)
	}
	if c.Style != model.StyleStraight || c.Cardinality != model.CardinalityOne || c.Participation != model.ParticipationPartial {
		t.Errorf("connection defaults = %s/%s/%s", c.Style, c.Cardinality, c.Participation)
	}
}

func TestDecodeWithOptionsOverridesFallbackSizes(t *testing.T) {
	text := `<ERDiagram version="1.0">
	  <entity name="Person"/>
	  <relationship name="Likes"/>
	  <entity name="Sized" width="60" height="50"/>
	</ERDiagram>`

	opts := Options{EntityWidth: 200, EntityHeight: 90, RelationshipWidth: 100, RelationshipHeight: 60}
	d, err := DecodeWithOptions(text, opts)
	if err != nil {
		t.Fatalf("DecodeWithOptions: %v", err)
	}

	if s := d.Entities[0].Size; s.Width != 200 || s.Height != 90 {
		t.Errorf("entity fallback size = %+v", s)
	}
	if s := d.Relationships[0].Size; s.Width != 100 || s.Height != 60 {
		t.Errorf("relationship fallback size = %+v", s)
	}
	// Explicit sizes always win over the configured fallback.
	if s := d.Entities[1].Size; s.Width != 60 || s.Height != 50 {
		t.Errorf("explicit size overridden = %+v", s)
	}
}

func TestDecodeToleratesDanglingReferences(t *testing.T) {
	text := `<ERDiagram version="1.0">
	  <entity id="e1" name="Person"/>
	  <connection id="c1" fromId="missing" toId="e1"/>
	  <generalization id="g1" parentId="ghost" childIds="e1,phantom"/>
	</ERDiagram>`

	d, err := Decode(text)
	if err != nil {
		t.Fatalf("dangling references must not fail the parse: %v", err)
	}

	if len(d.Connections) != 1 || d.Connections[0].FromID != "missing" {
		t.Errorf("connection with dangling fromId should survive: %+v", d.Connections)
	}
	if _, ok := d.FindNode("missing"); ok {
		t.Error("missing should not resolve")
	}
	if len(d.Generalizations) != 1 {
		t.Errorf("generalization should survive: %+v", d.Generalizations)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	if _, err := Decode("<ERDiagram><entity"); err == nil {
		t.Error("expected error for truncated document")
	}
	if _, err := Decode(`<Foo/>`); err == nil {
		t.Error("strict Decode must reject a non-ERDiagram root")
	}
}

func TestDecodeAnyAcceptsUnknownRoot(t *testing.T) {
	d, err := DecodeAny(`<Foo><bar/></Foo>`)
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	if !d.IsEmpty() {
		t.Errorf("unknown root should yield an empty diagram: %+v", d)
	}
}

func TestDecodeDropsForeignBranchKeys(t *testing.T) {
	// Normalize runs as part of decode: member data is only kept for ids
	// listed as members.
	text := `<ERDiagram version="1.0">
	  <relationship id="r1" name="R">
	    <member entityId="e1" cardinality="N" participation="total"/>
	  </relationship>
	</ERDiagram>`

	d, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	r := d.Relationships[0]
	if len(r.EntityIDs) != 1 || r.Cardinalities["e1"] != model.CardinalityN {
		t.Errorf("member lost: %+v", r)
	}
}

func TestShapePosition(t *testing.T) {
	p := ShapePosition([]float64{30, 40, 10, 80, 20, 5})
	if p.X != 10 || p.Y != 5 {
		t.Errorf("ShapePosition = %+v", p)
	}
	if p := ShapePosition(nil); p.X != 0 || p.Y != 0 {
		t.Errorf("empty ShapePosition = %+v", p)
	}
}

func TestNumberFormatting(t *testing.T) {
	if formatNum(100.5) != "100.5" {
		t.Errorf("formatNum(100.5) = %s", formatNum(100.5))
	}
	if formatNum(100) != "100" {
		t.Errorf("formatNum(100) = %s", formatNum(100))
	}
	if parseNum("not-a-number", 42) != 42 {
		t.Error("parseNum must fall back on garbage")
	}
}
