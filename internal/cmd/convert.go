package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/erd/internal/codec"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a diagram between XML dialects",
	Long: `Convert a diagram document between the standard and legacy XML dialects.

The input format is detected automatically from the root element. Reads from
stdin when no file is given (or the file is "-"), writes to stdout unless
--output is set.

Converting to the legacy dialect is lossy where the dialect cannot express the
source: explicit shape sizes collapse to configured defaults, and many-to-many
relationships drop total participation.

Examples:
  erd convert model.xml --to legacy            # Standard -> legacy, to stdout
  erd convert old.xml --to standard -o new.xml # Legacy -> standard, to a file
  cat model.xml | erd convert --to legacy      # Pipe through`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

var (
	convertTo     string
	convertOutput string
)

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertTo, "to", "standard", "Target dialect (standard|legacy)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: stdout)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}
	text, err := readDocument(input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	d, err := codec.ParseWithOptions(text, cfg.CodecOptions())
	if err != nil {
		return err
	}
	out, err := codec.Encode(d, codec.Format(convertTo))
	if err != nil {
		return err
	}

	return writeDocument(convertOutput, out)
}
