package legacy

import (
	"math"
	"strings"
	"testing"

	"github.com/hargabyte/erd/internal/model"
)

func binaryDiagram() *model.Diagram {
	d := model.New()
	d.Entities = []model.Entity{
		{
			ID: "person", Name: "Person",
			Position: model.Point{X: 100, Y: 100},
			Size:     model.Size{Width: 150, Height: 80},
			Attributes: []model.EntityAttribute{
				{ID: "ssn", Name: "ssn", IsKey: true},
				{ID: "age", Name: "age", IsDerived: true},
			},
		},
		{
			ID: "payment", Name: "Payment",
			Position: model.Point{X: 500, Y: 100},
			Size:     model.Size{Width: 150, Height: 80},
			IsWeak:   true,
			Attributes: []model.EntityAttribute{
				{ID: "seq", Name: "seq", IsDiscriminant: true},
			},
		},
	}
	d.Relationships = []model.Relationship{
		{
			ID: "makes", Name: "Makes",
			Position:       model.Point{X: 300, Y: 300},
			Size:           model.Size{Width: 120, Height: 80},
			EntityIDs:      []string{"person", "payment"},
			Cardinalities:  map[string]model.Cardinality{"person": model.CardinalityOne, "payment": model.CardinalityN},
			Participations: map[string]model.Participation{"person": model.ParticipationPartial, "payment": model.ParticipationTotal},
		},
	}
	return d
}

func relWith(cards map[string]model.Cardinality, parts map[string]model.Participation, ids ...string) *model.Relationship {
	return &model.Relationship{
		ID: "r", Name: "R", EntityIDs: ids,
		Cardinalities: cards, Participations: parts,
	}
}

func TestInferRelType(t *testing.T) {
	one := model.CardinalityOne
	n := model.CardinalityN
	total := model.ParticipationTotal

	tests := []struct {
		name string
		rel  *model.Relationship
		want RelType
	}{
		{
			"1:1 partial",
			relWith(map[string]model.Cardinality{"a": one, "b": one}, nil, "a", "b"),
			RelOneToOne,
		},
		{
			"1:1 with a total branch",
			relWith(map[string]model.Cardinality{"a": one, "b": one},
				map[string]model.Participation{"b": total}, "a", "b"),
			IdentifyingRelOneToOne,
		},
		{
			"1:N partial",
			relWith(map[string]model.Cardinality{"a": one, "b": n}, nil, "a", "b"),
			RelOneToN,
		},
		{
			"1:N total",
			relWith(map[string]model.Cardinality{"a": one, "b": n},
				map[string]model.Participation{"a": total}, "a", "b"),
			IdentifyingRelOneToN,
		},
		{
			"N:M",
			relWith(map[string]model.Cardinality{"a": n, "b": model.CardinalityM}, nil, "a", "b"),
			RelNToN,
		},
		{
			"ternary is always NToN even with totals",
			relWith(map[string]model.Cardinality{"a": one, "b": one, "c": one},
				map[string]model.Participation{"a": total}, "a", "b", "c"),
			RelNToN,
		},
	}
	for _, tt := range tests {
		if got := InferRelType(tt.rel); got != tt.want {
			t.Errorf("%s: InferRelType = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEncodeTagSelection(t *testing.T) {
	d := binaryDiagram()
	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !strings.Contains(text, "<IdentifyingRelationshipSetOneToN") {
		t.Errorf("expected identifying 1:N tag:\n%s", text)
	}
	if !strings.Contains(text, "<StrongEntitySet") || !strings.Contains(text, "<WeakEntitySet") {
		t.Errorf("entity set tags missing:\n%s", text)
	}
	if !strings.Contains(text, `totalParticipation="true"`) {
		t.Errorf("total participation flag missing:\n%s", text)
	}
}

func TestCenterCoordinateConversion(t *testing.T) {
	// Entity at top-left (100,100) size 150x80 stores center (175,140).
	d := model.New()
	d.Entities = []model.Entity{{
		ID: "e", Name: "E",
		Position: model.Point{X: 100, Y: 100},
		Size:     model.Size{Width: 150, Height: 80},
	}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(text, `centerX="175"`) || !strings.Contains(text, `centerY="140"`) {
		t.Errorf("center position wrong:\n%s", text)
	}

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	e := got.Entities[0]
	if e.Position.X != 100 || e.Position.Y != 100 {
		t.Errorf("reconstructed top-left = %+v, want (100,100)", e.Position)
	}
}

func TestRoundTripBounded(t *testing.T) {
	d := binaryDiagram()
	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Entities) != 2 || len(got.Relationships) != 1 {
		t.Fatalf("shape counts: %d entities, %d relationships", len(got.Entities), len(got.Relationships))
	}

	byName := map[string]model.Entity{}
	for _, e := range got.Entities {
		byName[e.Name] = e
	}

	person, ok := byName["Person"]
	if !ok {
		t.Fatal("Person lost")
	}
	if person.IsWeak {
		t.Error("Person became weak")
	}
	if math.Abs(person.Position.X-100) > 1 || math.Abs(person.Position.Y-100) > 1 {
		t.Errorf("Person position drifted: %+v", person.Position)
	}
	if len(person.Attributes) != 2 || !person.Attributes[0].IsKey || !person.Attributes[1].IsDerived {
		t.Errorf("Person attributes: %+v", person.Attributes)
	}

	payment := byName["Payment"]
	if !payment.IsWeak {
		t.Error("Payment lost weakness")
	}
	if len(payment.Attributes) != 1 || !payment.Attributes[0].IsDiscriminant {
		t.Errorf("Payment discriminant lost: %+v", payment.Attributes)
	}

	r := got.Relationships[0]
	if r.Name != "Makes" {
		t.Errorf("relationship name = %q", r.Name)
	}
	if math.Abs(r.Position.X-300) > 1 || math.Abs(r.Position.Y-300) > 1 {
		t.Errorf("relationship position drifted: %+v", r.Position)
	}
	// Branch data keyed by the re-decoded ids.
	cards := map[model.Cardinality]bool{}
	for _, id := range r.EntityIDs {
		cards[r.Cardinalities[id]] = true
	}
	if !cards[model.CardinalityOne] || !cards[model.CardinalityN] {
		t.Errorf("cardinalities lost: %+v", r.Cardinalities)
	}
	totals := 0
	for _, p := range r.Participations {
		if p == model.ParticipationTotal {
			totals++
		}
	}
	if totals != 1 {
		t.Errorf("expected exactly one total branch, got %d", totals)
	}
}

func TestStandaloneAttributeRoundTrip(t *testing.T) {
	d := model.New()
	d.Entities = []model.Entity{{
		ID: "e", Name: "Book",
		Position: model.Point{X: 200, Y: 200},
		Size:     model.Size{Width: 150, Height: 80},
	}}
	d.Attributes = []model.Attribute{{
		ID: "a", Name: "isbn", IsKey: true,
		Position: model.Point{X: 150, Y: 120},
		EntityID: "e",
	}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Attributes) != 1 {
		t.Fatalf("standalone attribute lost: %+v", got.Attributes)
	}
	a := got.Attributes[0]
	if a.Name != "isbn" || !a.IsKey {
		t.Errorf("attribute data lost: %+v", a)
	}
	if a.EntityID != got.Entities[0].ID {
		t.Errorf("ownership lost: %+v", a)
	}
	// Same sizing heuristic on both sides keeps the position within rounding.
	if math.Abs(a.Position.X-150) > 1 || math.Abs(a.Position.Y-120) > 1 {
		t.Errorf("attribute position drifted: %+v", a.Position)
	}
	// Nested (unpositioned) attributes stay nested: none were defined here.
	if len(got.Entities[0].Attributes) != 0 {
		t.Errorf("unexpected nested attributes: %+v", got.Entities[0].Attributes)
	}
}

func TestNToNDropsTotalParticipation(t *testing.T) {
	d := model.New()
	for _, id := range []string{"a", "b", "c"} {
		d.Entities = append(d.Entities, model.Entity{
			ID: id, Name: strings.ToUpper(id), Size: model.Size{Width: 150, Height: 80},
		})
	}
	d.Relationships = []model.Relationship{{
		ID: "r", Name: "Supplies",
		Size:      model.Size{Width: 120, Height: 80},
		EntityIDs: []string{"a", "b", "c"},
		Cardinalities: map[string]model.Cardinality{
			"a": model.CardinalityN, "b": model.CardinalityN, "c": model.CardinalityOne,
		},
		Participations: map[string]model.Participation{"a": model.ParticipationTotal},
	}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(text, "<RelationshipSetNToN") {
		t.Errorf("ternary must degrade to NToN:\n%s", text)
	}
	if strings.Contains(text, `totalParticipation="true"`) {
		t.Errorf("NToN must drop total participation:\n%s", text)
	}

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, p := range got.Relationships[0].Participations {
		if p != model.ParticipationPartial {
			t.Errorf("participation resurrected after NToN degrade: %+v", got.Relationships[0].Participations)
		}
	}
}

func TestGeneralizationRoundTrip(t *testing.T) {
	d := model.New()
	d.Entities = []model.Entity{
		{ID: "p", Name: "Vehicle", Position: model.Point{X: 0, Y: 0}, Size: model.Size{Width: 150, Height: 80}},
		{ID: "c1", Name: "Car", Position: model.Point{X: 0, Y: 200}, Size: model.Size{Width: 150, Height: 80}},
		{ID: "c2", Name: "Truck", Position: model.Point{X: 200, Y: 200}, Size: model.Size{Width: 150, Height: 80}},
	}
	d.Generalizations = []model.Generalization{{
		ID: "g", Position: model.Point{X: 70, Y: 100}, Size: model.Size{Width: 60, Height: 40},
		ParentID: "p", ChildIDs: []string{"c1", "c2"}, IsTotal: true,
	}}

	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(text, "<TotalGeneralization") {
		t.Errorf("total generalization tag missing:\n%s", text)
	}

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Generalizations) != 1 {
		t.Fatalf("generalization lost")
	}
	g := got.Generalizations[0]
	if !g.IsTotal {
		t.Error("isTotal lost")
	}
	parent, ok := got.FindEntity(g.ParentID)
	if !ok || parent.Name != "Vehicle" {
		t.Errorf("parent reference broken: %+v", g)
	}
	if len(g.ChildIDs) != 2 {
		t.Errorf("children lost: %+v", g.ChildIDs)
	}
	names := map[string]bool{}
	for _, id := range g.ChildIDs {
		if c, ok := got.FindEntity(id); ok {
			names[c.Name] = true
		}
	}
	if !names["Car"] || !names["Truck"] {
		t.Errorf("child references broken: %v", names)
	}
}

func TestDecodeSynthesizesConnections(t *testing.T) {
	d := binaryDiagram()
	text, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Connections) != 2 {
		t.Fatalf("expected one synthesized connection per branch, got %d", len(got.Connections))
	}
	for _, c := range got.Connections {
		if _, ok := got.FindNode(c.FromID); !ok {
			t.Errorf("synthesized connection has dangling fromId %q", c.FromID)
		}
		if _, ok := got.FindNode(c.ToID); !ok {
			t.Errorf("synthesized connection has dangling toId %q", c.ToID)
		}
	}
}

func TestDecodeToleratesDanglingBranch(t *testing.T) {
	text := `<?xml version="1.0"?>
	<ERDatabaseModel>
	  <ERDatabaseSchema lastId="5">
	    <StrongEntitySet id="1" name="Person"/>
	    <RelationshipSetOneToN id="2" name="Owns">
	      <Branches>
	        <RelationshipSetBranch id="3" entitySetId="1" cardinality="1" totalParticipation="false"/>
	        <RelationshipSetBranch id="4" entitySetId="99" cardinality="N" totalParticipation="false"/>
	      </Branches>
	    </RelationshipSetOneToN>
	  </ERDatabaseSchema>
	  <ERDatabaseDiagram/>
	</ERDatabaseModel>`

	got, err := Decode(text)
	if err != nil {
		t.Fatalf("dangling branch must not fail the parse: %v", err)
	}
	r := got.Relationships[0]
	if len(r.EntityIDs) != 2 {
		t.Errorf("branches = %v", r.EntityIDs)
	}
	// Only the resolvable branch gets a drawn connection.
	if len(got.Connections) != 1 {
		t.Errorf("expected 1 synthesized connection, got %d", len(got.Connections))
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	if _, err := Decode("<ERDatabaseModel><ERDatabaseSchema"); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestIDAllocator(t *testing.T) {
	a := newIDAllocator()
	if a.id("x") != 1 || a.id("y") != 2 || a.id("x") != 1 {
		t.Error("allocator must assign in first-seen order and be stable")
	}
	if a.id(branchKey("r", 0)) != 3 {
		t.Error("branch keys allocate like any other key")
	}
	if a.last() != 3 {
		t.Errorf("last = %d", a.last())
	}
	keys := a.canonical()
	if len(keys) != 3 || keys[0] != "x" || keys[2] != "r_branch_0" {
		t.Errorf("canonical order = %v", keys)
	}
}

func TestAttrSize(t *testing.T) {
	if s := AttrSize("id"); s.Width != 80 || s.Height != 30 {
		t.Errorf("short name size = %+v", s)
	}
	if s := AttrSize("a_rather_long_attribute"); s.Width != float64(len("a_rather_long_attribute")*8+20) {
		t.Errorf("long name size = %+v", s)
	}
}
