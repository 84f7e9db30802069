package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type plainSourceExtractor struct {
	sourceRoot string
	targetDir  string
}

func (pse *plainSourceExtractor) write(path string, text string) error {
	target := pse.targetName(path)

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directory '%s' : %w", dir, err)
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("error writing to file %s : %w", target, err)
	}
	return nil
}

func (pse *plainSourceExtractor) targetName(path string) string {
	rel, err := filepath.Rel(pse.sourceRoot, path)
	if err != nil {
		panic(fmt.Errorf("path error : %w", err))
	}
	return filepath.Join(pse.targetDir, rel)
}

// inTarget reports whether path lies inside the target directory, which
// happens when the copies are written below the source root.
func (pse *plainSourceExtractor) inTarget(path string) bool {
	rel, err := filepath.Rel(absPath(pse.targetDir), absPath(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
