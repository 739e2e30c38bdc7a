package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ssea/domain/core"
	"ssea/internal"
	"ssea/internal/errors"
)

// DirPrefix starts every generated output directory name
const DirPrefix = "SSEA_"

// DefaultOutputDir names a fresh output directory after the current time
func DefaultOutputDir() string {
	return DirPrefix + core.Now().RunStamp()
}

// EnsureDir creates dir when missing
func EnsureDir(dir string, logger *internal.Logger) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return errors.IOError(dir, fmt.Errorf("not a directory"))
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return errors.IOError(dir, err)
	}

	if logger != nil {
		logger.Info("Creating output directory '%s'", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IOError(dir, err)
	}
	return nil
}

// SetFileName is <name>.<set>.<ext> with path separators in set replaced
func SetFileName(name, set, ext string) string {
	return fmt.Sprintf("%s.%s.%s", name, safeName(set), ext)
}

// SummaryFileName is <name>.json
func SummaryFileName(name string) string {
	return name + ".json"
}

// checkSetFileNames fails when two sets map to the same report files,
// including names that differ only in case
func checkSetFileNames(name string, sets []string) error {
	seen := make(map[string]string, len(sets))
	for _, set := range sets {
		file := SetFileName(name, set, "json")
		key := strings.ToLower(file)
		if prev, ok := seen[key]; ok {
			return errors.InvalidInput(fmt.Sprintf("sample sets %q and %q both map to report file %s", prev, set, file))
		}
		seen[key] = set
	}
	return nil
}

var unsafeChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "_")

func safeName(s string) string {
	return unsafeChars.Replace(s)
}

// writeFileAtomic writes through a temp file in the same directory so readers
// never see a partial file
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ssea-*.tmp")
	if err != nil {
		return errors.IOError(path, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return errors.IOError(path, err)
	}
	if n, err := tmp.Write(data); err != nil {
		return errors.IOError(path, err)
	} else if n < len(data) {
		return errors.IOError(path, fmt.Errorf("short write"))
	}
	if err := tmp.Close(); err != nil {
		return errors.IOError(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
