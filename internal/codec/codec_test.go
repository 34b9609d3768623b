package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/hargabyte/erd/internal/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Format
	}{
		{"standard root", `<ERDiagram version="1.0"/>`, FormatStandard},
		{"legacy root", `<ERDatabaseModel><ERDatabaseSchema/></ERDatabaseModel>`, FormatLegacy},
		{"unknown root defaults to standard", `<Foo/>`, FormatStandard},
		{"leading declaration and comments are skipped", "<?xml version=\"1.0\"?>\n<!-- saved -->\n<ERDatabaseModel/>", FormatLegacy},
	}
	for _, tt := range tests {
		got, err := Detect(tt.text)
		if err != nil {
			t.Errorf("%s: Detect: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: Detect = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDetectNoRoot(t *testing.T) {
	for _, text := range []string{"", "   ", "<!-- only a comment -->"} {
		if _, err := Detect(text); err == nil {
			t.Errorf("Detect(%q): expected error for document with no root", text)
		}
	}
}

func TestParseRoutesByRoot(t *testing.T) {
	standardDoc := `<ERDiagram version="1.0"><entity id="e1" name="Person"/></ERDiagram>`
	d, err := Parse(standardDoc)
	if err != nil {
		t.Fatalf("Parse standard: %v", err)
	}
	if len(d.Entities) != 1 || d.Entities[0].Name != "Person" {
		t.Errorf("standard parse: %+v", d.Entities)
	}

	legacyDoc := `<ERDatabaseModel>
	  <ERDatabaseSchema lastId="1">
	    <StrongEntitySet id="1" name="Person"/>
	  </ERDatabaseSchema>
	  <ERDatabaseDiagram/>
	</ERDatabaseModel>`
	d, err = Parse(legacyDoc)
	if err != nil {
		t.Fatalf("Parse legacy: %v", err)
	}
	if len(d.Entities) != 1 || d.Entities[0].Name != "Person" {
		t.Errorf("legacy parse: %+v", d.Entities)
	}
}

func TestParseUnknownRootYieldsEmptyDiagram(t *testing.T) {
	d, err := Parse(`<Foo><bar thing="1"/></Foo>`)
	if err != nil {
		t.Fatalf("unknown root must not fail: %v", err)
	}
	if !d.IsEmpty() {
		t.Errorf("expected empty diagram, got %+v", d)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, text := range []string{
		"<ERDiagram><entity",
		"<ERDatabaseModel><ERDatabaseSchema",
		"not xml at all <<<",
	} {
		_, err := Parse(text)
		if err == nil {
			t.Errorf("Parse(%q): expected error", text)
			continue
		}
		var malformed *MalformedError
		if !errors.As(err, &malformed) {
			t.Errorf("Parse(%q): error %v is not a MalformedError", text, err)
		}
	}
}

func TestEncodeFormats(t *testing.T) {
	d := model.New()
	d.Entities = []model.Entity{{ID: "e1", Name: "Person", Size: model.Size{Width: 150, Height: 80}}}

	out, err := Encode(d, FormatStandard)
	if err != nil {
		t.Fatalf("Encode standard: %v", err)
	}
	if !strings.Contains(out, "<ERDiagram") {
		t.Errorf("standard output missing root:\n%s", out)
	}

	out, err = Encode(d, FormatLegacy)
	if err != nil {
		t.Fatalf("Encode legacy: %v", err)
	}
	if !strings.Contains(out, "<ERDatabaseModel") {
		t.Errorf("legacy output missing root:\n%s", out)
	}

	if _, err := Encode(d, Format("yaml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCrossDialectRoundTrip(t *testing.T) {
	// standard -> legacy -> standard keeps logical structure: this is the
	// conversion path the convert command exercises.
	doc := `<ERDiagram version="1.0">
	  <entity id="e1" name="Person" x="100" y="100" width="150" height="80"/>
	  <entity id="e2" name="Account" x="500" y="100" width="150" height="80"/>
	  <relationship id="r1" name="Owns" x="300" y="300" width="120" height="80">
	    <member entityId="e1" cardinality="1"/>
	    <member entityId="e2" cardinality="N" participation="total"/>
	  </relationship>
	</ERDiagram>`

	d, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	legacyText, err := Encode(d, FormatLegacy)
	if err != nil {
		t.Fatalf("Encode legacy: %v", err)
	}
	back, err := Parse(legacyText)
	if err != nil {
		t.Fatalf("Parse legacy: %v", err)
	}

	if len(back.Entities) != 2 || len(back.Relationships) != 1 {
		t.Fatalf("structure lost: %d entities, %d relationships", len(back.Entities), len(back.Relationships))
	}
	r := back.Relationships[0]
	if r.Name != "Owns" || len(r.EntityIDs) != 2 {
		t.Errorf("relationship lost: %+v", r)
	}
	totals := 0
	for _, p := range r.Participations {
		if p == model.ParticipationTotal {
			totals++
		}
	}
	if totals != 1 {
		t.Errorf("participation lost across dialects: %+v", r.Participations)
	}
}
