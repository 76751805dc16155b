package resolve

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// walkFiles returns every non-directory entry below root.
// Symlinks to directories are followed unless they lead back into a
// directory that is already being walked. Subdirectories that cannot be
// read are logged and skipped.
func walkFiles(root string, logger *slog.Logger) ([]string, error) {
	w := &walker{logger: logger}
	if err := w.walk(root); err != nil {
		return nil, err
	}
	return w.files, nil
}

type walker struct {
	logger *slog.Logger
	// real paths of the directories currently being walked
	active []string
	files  []string
}

// walk lists dir, reporting paths under dir even when dir is a symlink
func (w *walker) walk(dir string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	w.active = append(w.active, resolved)
	defer func() { w.active = w.active[:len(w.active)-1] }()

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		shown := dir
		if rel, relErr := filepath.Rel(resolved, path); relErr == nil {
			shown = filepath.Join(dir, rel)
		}
		if err != nil {
			if path == resolved {
				return err
			}
			w.logger.Debug("Skipping unreadable path", "path", shown, "reason", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if target, ok := w.dirTarget(path); ok {
				if w.isLoop(filepath.Dir(path), target) {
					w.logger.Debug("Skipping symlink loop", "path", shown, "target", target)
					return nil
				}
				if err := w.walk(shown); err != nil {
					w.logger.Debug("Skipping unreadable path", "path", shown, "reason", err)
				}
				return nil
			}
		}
		w.files = append(w.files, shown)
		return nil
	})
}

// dirTarget returns the real path of link when it points to a directory
func (w *walker) dirTarget(link string) (string, bool) {
	info, err := os.Stat(link)
	if err != nil || !info.IsDir() {
		return "", false
	}
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", false
	}
	return target, true
}

// isLoop reports whether target contains parent or any directory being walked
func (w *walker) isLoop(parent, target string) bool {
	if within(parent, target) {
		return true
	}
	for _, dir := range w.active {
		if within(dir, target) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
