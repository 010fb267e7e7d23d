package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/go-seam/seam/cmd/seam/internal/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "dev",
		Short: "Watch sources and re-run checks on change",
		Long: `Dev watches the project tree for Go source changes and re-runs the
check step (go build ./...) after each batch of edits. Events are
debounced so editor save storms trigger one run. Ctrl-C stops cleanly.`,
		Usage: "seam dev",
		Run:   runDev,
	})
}

func runDev(args []string) error {
	root, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(root)
	if err != nil {
		return err
	}
	debounce := resolved.Dev.Debounce()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	fmt.Printf("Watching %s (debounce %v). Ctrl-C to stop.\n", root, debounce)
	runCheck(root)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			// New directories join the watch; the check run is debounced.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchTree(watcher, ev.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			runCheck(root)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-sigs:
			fmt.Println("\nStopped.")
			return nil
		}
	}
}

// watchTree registers dir and every subdirectory, skipping hidden trees.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || name == "vendor") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func relevantEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		return true
	}
	return strings.HasSuffix(base, ".go") || base == "go.mod" || base == config.FileName
}

func runCheck(root string) {
	start := time.Now()
	cmd := exec.Command("go", "build", "./...")
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	if err != nil {
		fmt.Printf("[%s] check failed:\n%s\n", time.Now().Format("15:04:05"), out)
		return
	}
	fmt.Printf("[%s] check passed in %v\n", time.Now().Format("15:04:05"), time.Since(start).Round(time.Millisecond))
}
