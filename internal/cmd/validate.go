package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/erd/internal/codec"
	"github.com/hargabyte/erd/internal/model"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a diagram document parses",
	Long: `Parse a diagram document and report problems.

A document that does not parse is an error and exits nonzero. Dangling
references (a connection or generalization pointing at a node that does not
exist) are tolerated by the parser and reported here as warnings; use
--strict to treat them as errors too.

Examples:
  erd validate model.xml
  erd validate old-model.xml --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var validateStrict bool

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat dangling references as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	text, err := readDocument(input)
	if err != nil {
		return err
	}

	format, err := codec.Detect(text)
	if err != nil {
		return err
	}
	d, err := codec.Parse(text)
	if err != nil {
		return err
	}

	warnings := danglingReferences(d)
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	if validateStrict && len(warnings) > 0 {
		return fmt.Errorf("%d dangling reference(s)", len(warnings))
	}

	fmt.Printf("OK: %s dialect, %d entities, %d relationships\n",
		format, len(d.Entities), len(d.Relationships))
	return nil
}

// danglingReferences lists weak references that do not resolve to a node in
// the diagram.
func danglingReferences(d *model.Diagram) []string {
	var out []string
	for _, c := range d.Connections {
		if _, ok := d.FindNode(c.FromID); !ok {
			out = append(out, fmt.Sprintf("connection %s references missing node %s", c.ID, c.FromID))
		}
		if _, ok := d.FindNode(c.ToID); !ok {
			out = append(out, fmt.Sprintf("connection %s references missing node %s", c.ID, c.ToID))
		}
	}
	for _, g := range d.Generalizations {
		if g.ParentID != "" {
			if _, ok := d.FindEntity(g.ParentID); !ok {
				out = append(out, fmt.Sprintf("generalization %s references missing parent %s", g.ID, g.ParentID))
			}
		}
		for _, child := range g.ChildIDs {
			if _, ok := d.FindEntity(child); !ok {
				out = append(out, fmt.Sprintf("generalization %s references missing child %s", g.ID, child))
			}
		}
	}
	for _, r := range d.Relationships {
		for _, id := range r.EntityIDs {
			if _, ok := d.FindEntity(id); !ok {
				out = append(out, fmt.Sprintf("relationship %s references missing entity %s", r.ID, id))
			}
		}
	}
	for _, a := range d.Attributes {
		if a.EntityID != "" {
			if _, ok := d.FindEntity(a.EntityID); !ok {
				out = append(out, fmt.Sprintf("attribute %s references missing entity %s", a.ID, a.EntityID))
			}
		}
		if a.RelationshipID != "" {
			if _, ok := d.FindRelationship(a.RelationshipID); !ok {
				out = append(out, fmt.Sprintf("attribute %s references missing relationship %s", a.ID, a.RelationshipID))
			}
		}
	}
	return out
}
