package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/erd/internal/codec"
	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/model"
	"github.com/hargabyte/erd/internal/store"
)

// libraryCmd represents the library command group
var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local diagram library",
	Long: `Manage the local diagram library stored in .erd/library.db.

Documents are validated and normalized to the standard dialect before they
are stored. Each diagram keeps a bounded history of snapshots.

Examples:
  erd library save model.xml --name Shop   # Store a diagram
  erd library list                         # List stored diagrams
  erd library show 4f2a... > model.xml     # Print a stored document
  erd library snapshot 4f2a...             # Snapshot the current content
  erd library delete 4f2a...               # Remove a diagram and its snapshots`,
}

var librarySaveName string
var librarySaveID string

func init() {
	rootCmd.AddCommand(libraryCmd)

	saveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Store a diagram in the library",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLibrarySave,
	}
	saveCmd.Flags().StringVar(&librarySaveName, "name", "", "Display name for the diagram (required)")
	saveCmd.Flags().StringVar(&librarySaveID, "id", "", "Diagram id to overwrite (default: generate a new one)")
	saveCmd.MarkFlagRequired("name")

	libraryCmd.AddCommand(saveCmd)
	libraryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored diagrams",
		Args:  cobra.NoArgs,
		RunE:  runLibraryList,
	})
	libraryCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored diagram document",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryShow,
	})
	libraryCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a diagram and its snapshots",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryDelete,
	})
	libraryCmd.AddCommand(&cobra.Command{
		Use:   "snapshot <id>",
		Short: "Snapshot a diagram's current content",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibrarySnapshot,
	})
}

// openLibrary locates the library database for the current directory. The
// library requires an initialized .erd directory unless the config names an
// explicit path.
func openLibrary(cfg *config.Config) (*store.Store, error) {
	path := cfg.Library.Path
	if path == "" {
		dir, err := config.FindConfigDir(".")
		if err != nil {
			return nil, fmt.Errorf("library not available: run 'erd init' first")
		}
		path = filepath.Join(dir, "library.db")
	}
	return store.Open(path)
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
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
	canonical, err := codec.Encode(d, codec.FormatStandard)
	if err != nil {
		return err
	}

	st, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	id := model.EnsureID(librarySaveID)
	if err := st.SaveDiagram(id, librarySaveName, canonical); err != nil {
		return fmt.Errorf("saving diagram: %w", err)
	}
	fmt.Printf("Saved %s (%s)\n", librarySaveName, id)
	return nil
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.ListDiagrams()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Library is empty")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  (updated %s)\n", e.ID, e.Name, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entry, err := st.LoadDiagram(args[0])
	if err != nil {
		return fmt.Errorf("diagram %s: %w", args[0], err)
	}
	fmt.Print(entry.Content)
	return nil
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteDiagram(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runLibrarySnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entry, err := st.LoadDiagram(args[0])
	if err != nil {
		return fmt.Errorf("diagram %s: %w", args[0], err)
	}
	snapID, err := st.Snapshot(entry.ID, entry.Content, cfg.Library.SnapshotKeep)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot %d of %s\n", snapID, entry.Name)
	return nil
}
