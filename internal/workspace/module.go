package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoModule = errors.New("no module directive in go.mod")

// ModulePath reads the module path declared by root/go.mod.
func ModulePath(root string) (string, error) {
	file, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to open go.mod: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "module"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			return strings.Trim(strings.TrimSpace(rest), `"`), nil
		}
	}
	if err = scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}

	return "", fmt.Errorf("%w: %s", ErrNoModule, root)
}

// ImportPath returns the import path of the package holding the file rel inside module modulePath.
func ImportPath(modulePath, rel string) string {
	dir := filepath.ToSlash(filepath.Dir(filepath.Clean(rel)))
	if dir == "." {
		return modulePath
	}

	return modulePath + "/" + dir
}
