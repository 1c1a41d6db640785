/*
Package audio maps survey coordinates onto audio sample files.

Samples are laid out on disk as:

	<root>/<category>/<model>/sample_<prompt>_female.wav

The locator has no state beyond the root directory.
*/
package audio

import (
	"fmt"
	"os"
	"path/filepath"
)

// NotFoundError reports a sample file that does not exist on disk.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("audio file not found: %s", e.Path)
}

// Locator resolves (category, model, prompt) triples to file paths.
type Locator struct {
	root string
}

// NewLocator creates a locator rooted at dir.
func NewLocator(dir string) *Locator {
	return &Locator{root: dir}
}

// Path returns the expected path for a sample without touching the disk.
func (l *Locator) Path(category, model string, prompt int) string {
	fileName := fmt.Sprintf("sample_%d_female.wav", prompt)
	return filepath.Join(l.root, category, model, fileName)
}

// Resolve returns the path for a sample, verifying the file exists.
// A missing file is reported as *NotFoundError so callers can abort the
// current clip dispatch without treating it as fatal.
func (l *Locator) Resolve(category, model string, prompt int) (string, error) {
	path := l.Path(category, model, prompt)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: path}
		}
		return "", fmt.Errorf("failed to stat audio file: %w", err)
	}
	return path, nil
}
