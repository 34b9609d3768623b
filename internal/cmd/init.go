package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .erd directory and library database",
	Long: `Initialize the .erd directory, default config file, and library database
in the current directory.

The library database stores diagrams and their snapshots for the library and
serve commands. The config file records default shape sizes and server
settings.

Examples:
  erd init          # Initialize in current directory
  erd init --force  # Reinitialize (overwrites existing config and database)`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if .erd already exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	erdDir := filepath.Join(cwd, config.ConfigDirName)
	dbPath := filepath.Join(erdDir, "library.db")
	cfgPath := filepath.Join(erdDir, "config.yaml")

	// Check for an existing installation
	if _, err := os.Stat(cfgPath); err == nil {
		if !initForce {
			relPath, _ := filepath.Rel(cwd, erdDir)
			fmt.Printf("Already initialized at %s\n", relPath)
			return nil
		}
		if err := os.Remove(cfgPath); err != nil {
			return fmt.Errorf("removing existing config: %w", err)
		}
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing existing database: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config path: %w", err)
	}

	if _, err := config.EnsureConfigDir(cwd); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.ConfigDirName, err)
	}
	if _, err := config.SaveDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	// Open the store once to create the schema
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("initializing library database: %w", err)
	}
	defer st.Close()

	relPath, _ := filepath.Rel(cwd, erdDir)
	fmt.Printf("Initialized erd library at %s\n", relPath)

	return nil
}
