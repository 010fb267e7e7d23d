// Package scaffold writes the files of a new host-adapter project.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-seam/seam/cmd/seam/internal/config"
)

// Project creates dir and writes a runnable host-adapter skeleton into it.
func Project(dir, modulePath string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	appName := filepath.Base(modulePath)
	files := map[string]string{
		"go.mod":        goModFile(modulePath),
		config.FileName: seamYamlFile(appName),
		"main.go":       mainFile(),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

func goModFile(modulePath string) string {
	return fmt.Sprintf(`module %s

go 1.24.0

require github.com/go-seam/seam v0.1.0
`, modulePath)
}

func seamYamlFile(appName string) string {
	return fmt.Sprintf(`app:
  name: %s
dev:
  debounce_ms: 300
`, appName)
}

// mainFile is a minimal host: one value, one binding, one rendered node.
func mainFile() string {
	return `package main

import (
	"fmt"

	"github.com/go-seam/seam/pkg/core"
	"github.com/go-seam/seam/pkg/host"
	"github.com/go-seam/seam/pkg/reactive"
	"github.com/go-seam/seam/pkg/view"
	"github.com/go-seam/seam/pkg/watch"
)

func main() {
	c := core.New()
	defer c.Close()
	loop := host.NewLoop(host.LoopOptions{})

	counter := c.NewValue(0)
	binding, err := reactive.NewBinding[int](counter.Port())
	if err != nil {
		panic(err)
	}
	defer binding.Close()

	binding.Observe(func(v int) { fmt.Println("counter:", v) })

	guard, err := counter.Watch(watch.OnLoop(loop, func(v any, _ watch.Metadata) {
		// UI updates belong here, on the loop.
	}, nil))
	if err != nil {
		panic(err)
	}
	defer guard.Close()

	reg := view.NewRegistry[string](func(reason view.PlaceholderReason, _ view.Node, _ view.Environment) string {
		return "[" + reason.String() + "]"
	})
	reg.Register(core.TypeText, func(node view.Node, env view.Environment) (string, error) {
		p := node.Payload().(core.TextPayload)
		v, err := p.Content.Read()
		p.Content.Close()
		node.Close()
		env.Close()
		return fmt.Sprint(v), err
	})

	binding.Set(1)
	binding.Set(2)
	loop.RunUntilIdle()

	w, _ := reg.Dispatch(c.Text(counter), c.NewEnvironment())
	fmt.Println("rendered:", w)
}
`
}
