package workspace

import (
	"errors"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var (
	ErrPathEscapesRoot = errors.New("path escapes workspace root")
	ErrInvalidSource   = errors.New("source is not valid Go")
)

// WriteFile writes content to rel inside root, creating parent directories. It returns the absolute path.
func WriteFile(root, rel, content string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}

	target := filepath.Join(absRoot, rel)
	if target == absRoot || !strings.HasPrefix(target, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, rel)
	}

	if err = os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}

	if err = os.WriteFile(target, []byte(content), filePerm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}

	return target, nil
}

// FormatGo returns src formatted by gofmt rules.
func FormatGo(src string) (string, error) {
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	return string(formatted), nil
}
