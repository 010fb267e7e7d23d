package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-seam/seam/cmd/seam/internal/config"
	"github.com/go-seam/seam/cmd/seam/internal/scaffold"
)

func init() {
	RegisterCommand(&Command{
		Name:  "init",
		Short: "Scaffold a host-adapter project",
		Long: `Init creates a new Seam host-adapter project: a go.mod, a seam.yaml,
and a main.go wired to a fake host so the project runs immediately.

The module path must be a valid Go module path; the project directory
is derived from its last element unless a directory is given.`,
		Usage: "seam init <module-path> [directory]",
		Run:   runInit,
	})
}

func runInit(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("init requires a module path, e.g. seam init github.com/you/app")
	}
	modulePath := args[0]
	if err := config.CheckModulePath(modulePath); err != nil {
		return err
	}

	dir := filepath.Base(strings.TrimSuffix(modulePath, "/"))
	if len(args) > 1 {
		dir = args[1]
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	if err := scaffold.Project(dir, modulePath); err != nil {
		return err
	}

	fmt.Printf("Created %s\n\n", dir)
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  go mod tidy")
	fmt.Println("  go run .")
	return nil
}
