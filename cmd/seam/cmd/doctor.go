package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/mod/modfile"

	"github.com/go-seam/seam/cmd/seam/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "doctor",
		Short: "Check the project environment",
		Long: `Doctor inspects the current project: go.mod parses and names a valid
module, seam.yaml (if present) is well formed, and the resolved app
identity passes validation. Each check prints ok or the failure.`,
		Usage: "seam doctor",
		Run:   runDoctor,
	})
}

func runDoctor(args []string) error {
	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	fmt.Printf("Project root: %s\n", root)
	fmt.Printf("Go runtime:   %s %s/%s\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	failures := 0
	check := func(name string, err error) {
		if err != nil {
			failures++
			fmt.Printf("  FAIL %-12s %v\n", name, err)
			return
		}
		fmt.Printf("  ok   %s\n", name)
	}

	check("go.mod", checkGoMod(root))
	check("seam.yaml", checkYaml(root))

	resolved, err := config.Resolve(root)
	check("app identity", err)
	if err == nil {
		fmt.Printf("\nApp: %s (%s)\nModule: %s\n", resolved.AppName, resolved.AppID, resolved.ModulePath)
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func checkGoMod(root string) error {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return err
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return err
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return fmt.Errorf("go.mod has no module directive")
	}
	return config.CheckModulePath(f.Module.Mod.Path)
}

func checkYaml(root string) error {
	_, err := config.LoadOptional(root)
	return err
}
