// Package output decides where screenshots land on disk and writes them
// atomically.
package output

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideSaveDir rejects a destination that escapes the save directory,
// before anything touches the disk.
var ErrOutsideSaveDir = errors.New("destination outside save directory")

// ResolveSaveDir picks the directory screenshots are written to: the
// configured override when it is a writable directory, then the user's
// desktop directory, then the home directory.
func ResolveSaveDir(configured string) string {
	if configured != "" && writableDir(configured) {
		return configured
	}
	if desktop := desktopDir(); desktop != "" && writableDir(desktop) {
		return desktop
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func desktopDir() string {
	if dir := os.Getenv("XDG_DESKTOP_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Desktop")
}

func writableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	probe, err := os.CreateTemp(dir, ".screenux-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// BuildOutputPath returns saveDir/Screenshot_<timestamp><ext>, where the
// extension comes from the capture's source URI and defaults to .png.
func BuildOutputPath(saveDir, sourceURI string) string {
	now := time.Now()
	timestamp := now.Format("20060102_150405") + fmt.Sprintf("_%06d", now.Nanosecond()/1000)
	return filepath.Join(saveDir, "Screenshot_"+timestamp+extensionFromURI(sourceURI))
}

func extensionFromURI(sourceURI string) string {
	parsed, err := url.Parse(sourceURI)
	if err != nil {
		return ".png"
	}
	path := parsed.Path
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		return ext
	}
	return ".png"
}

// Write stores data at dest. The destination must resolve inside saveDir,
// the file is created exclusively so an existing file is never clobbered,
// and a partial write is unlinked rather than left behind.
func Write(saveDir, dest string, data []byte) error {
	if err := validateDest(saveDir, dest); err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if err := writeAndSync(f, data); err != nil {
		f.Close()
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func validateDest(saveDir, dest string) error {
	absDir, err := filepath.Abs(saveDir)
	if err != nil {
		return fmt.Errorf("resolve save dir: %w", err)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve destination: %w", err)
	}
	// Symlinked save dirs still count as inside, so compare resolved paths.
	if resolved, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = resolved
	}
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(absDest)); err == nil {
		absDest = filepath.Join(resolved, filepath.Base(absDest))
	}
	rel, err := filepath.Rel(absDir, absDest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrOutsideSaveDir, dest)
	}
	return nil
}
