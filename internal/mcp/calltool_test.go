package mcp

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/store"
)

func newTestMCPServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	s, err := newServer(config.DefaultConfig(), st, Config{})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetToolSchemas(t *testing.T) {
	// Verify the schema registry has all 4 tools
	expectedTools := []string{"erd_parse", "erd_export", "erd_detect", "erd_library"}

	for _, name := range expectedTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(expectedTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(expectedTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	// Verify required parameters are marked correctly
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"erd_parse", "xml"},
		{"erd_export", "xml"},
		{"erd_detect", "xml"},
		{"erd_library", "action"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestListTools(t *testing.T) {
	s := newTestMCPServer(t)

	tools := s.ListTools()
	sort.Strings(tools)
	want := []string{"erd_detect", "erd_export", "erd_library", "erd_parse"}
	if len(tools) != len(want) {
		t.Fatalf("tools = %v", tools)
	}
	for i, name := range want {
		if tools[i] != name {
			t.Errorf("tools[%d] = %s, want %s", i, tools[i], name)
		}
	}
}

func TestCallToolParse(t *testing.T) {
	s := newTestMCPServer(t)

	out, err := s.CallTool("erd_parse", map[string]interface{}{
		"xml": `<ERDiagram version="1.0"><entity id="e1" name="Person"/></ERDiagram>`,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	var result struct {
		Format  string `json:"format"`
		XML     string `json:"xml"`
		Summary struct {
			Entities int `json:"entities"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Format != "standard" || result.Summary.Entities != 1 {
		t.Errorf("result: %+v", result)
	}
}

func TestCallToolParseAppliesConfiguredLegacySizes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Legacy.EntityWidth = 80
	cfg.Legacy.EntityHeight = 40

	s, err := newServer(cfg, nil, Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	out, err := s.CallTool("erd_parse", map[string]interface{}{
		"xml": `<ERDatabaseModel>
		  <ERDatabaseSchema lastId="1">
		    <StrongEntitySet id="1" name="Person"/>
		  </ERDatabaseSchema>
		  <ERDatabaseDiagram>
		    <Position refId="1" centerX="140" centerY="120"/>
		  </ERDatabaseDiagram>
		</ERDatabaseModel>`,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	var result struct {
		XML string `json:"xml"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	// Center (140,120) with configured 80x40 puts the top-left at (100,100).
	for _, want := range []string{`x="100"`, `y="100"`, `width="80"`, `height="40"`} {
		if !strings.Contains(result.XML, want) {
			t.Errorf("output missing %s:\n%s", want, result.XML)
		}
	}
}

func TestCallToolExportLegacy(t *testing.T) {
	s := newTestMCPServer(t)

	out, err := s.CallTool("erd_export", map[string]interface{}{
		"xml":    `<ERDiagram version="1.0"><entity id="e1" name="Person"/></ERDiagram>`,
		"format": "legacy",
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !strings.Contains(out, "ERDatabaseModel") {
		t.Errorf("export output:\n%s", out)
	}
}

func TestCallToolDetect(t *testing.T) {
	s := newTestMCPServer(t)

	out, err := s.CallTool("erd_detect", map[string]interface{}{
		"xml": "<ERDatabaseModel/>",
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !strings.Contains(out, `"legacy"`) {
		t.Errorf("detect output: %s", out)
	}
}

func TestCallToolLibraryRoundTrip(t *testing.T) {
	s := newTestMCPServer(t)

	out, err := s.CallTool("erd_library", map[string]interface{}{
		"action": "save",
		"name":   "University",
		"xml":    `<ERDiagram version="1.0"><entity id="e1" name="Person"/></ERDiagram>`,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	var saved struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Fatal("save did not assign an id")
	}

	out, err = s.CallTool("erd_library", map[string]interface{}{"action": "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "University") {
		t.Errorf("list output: %s", out)
	}

	out, err = s.CallTool("erd_library", map[string]interface{}{
		"action": "get", "id": saved.ID,
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Person") {
		t.Errorf("get output: %s", out)
	}

	if _, err := s.CallTool("erd_library", map[string]interface{}{
		"action": "delete", "id": saved.ID,
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.CallTool("erd_library", map[string]interface{}{
		"action": "get", "id": saved.ID,
	}); err == nil {
		t.Error("get after delete should fail")
	}
}

func TestCallToolErrors(t *testing.T) {
	s := newTestMCPServer(t)

	if _, err := s.CallTool("erd_parse", map[string]interface{}{}); err == nil {
		t.Error("missing xml should fail")
	}
	if _, err := s.CallTool("erd_parse", map[string]interface{}{"xml": "<ERDiagram><entity"}); err == nil {
		t.Error("malformed document should fail")
	}
	if _, err := s.CallTool("erd_export", map[string]interface{}{"xml": "<ERDiagram/>", "format": "yaml"}); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := s.CallTool("erd_library", map[string]interface{}{"action": "sync"}); err == nil {
		t.Error("unknown action should fail")
	}
	if _, err := s.CallTool("nope", map[string]interface{}{}); err == nil {
		t.Error("unknown tool should fail")
	}
}

func TestLibraryUnavailableWithoutStore(t *testing.T) {
	s, err := newServer(config.DefaultConfig(), nil, Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.CallTool("erd_library", map[string]interface{}{"action": "list"}); err == nil {
		t.Error("library calls without a store should fail")
	}
}
