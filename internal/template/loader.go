// Package template loads export templates, preferring user overrides in
// ~/.config/xstitch/templates/{name}/ over the embedded defaults.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// ErrExists is returned by DumpTemplate when the custom file is already there
// and force is not set.
var ErrExists = errors.New("custom template already exists")

// Loader reads templates for one export format.
type Loader struct {
	name       string
	embedded   fs.FS
	customBase string
	logger     hclog.Logger
}

// DefaultCustomBase returns ~/.config/xstitch/templates.
func DefaultCustomBase() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ".config", "xstitch", "templates")
}

// New creates a loader for the named format backed by embedded.
func New(name string, embedded fs.FS) *Loader {
	return &Loader{
		name:       name,
		embedded:   embedded,
		customBase: DefaultCustomBase(),
		logger:     hclog.NewNullLogger(),
	}
}

// WithCustomBase sets the base directory for custom templates.
func (l *Loader) WithCustomBase(customBase string) *Loader {
	l.customBase = customBase
	return l
}

// WithLogger sets the logger.
func (l *Loader) WithLogger(logger hclog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Name returns the format name the loader serves.
func (l *Loader) Name() string {
	return l.name
}

// Load reads a template file, checking for custom overrides first.
// Returns the content and whether it came from a custom override.
func (l *Loader) Load(filename string) (content []byte, fromCustom bool, err error) {
	customPath := l.CustomPath(filename)
	if content, err := os.ReadFile(customPath); err == nil { // #nosec G304 - User template override path
		l.logger.Debug("using custom template", "path", customPath)
		return content, true, nil
	}

	content, err = fs.ReadFile(l.embedded, filename)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load template %q: %w", filename, err)
	}
	l.logger.Debug("using embedded template", "name", filename)
	return content, false, nil
}

// CustomPath returns the path where a custom template would be located.
func (l *Loader) CustomPath(filename string) string {
	return filepath.Join(l.customBase, l.name, filepath.FromSlash(filename))
}

// CustomDir returns the custom template directory for this format.
func (l *Loader) CustomDir() string {
	return filepath.Join(l.customBase, l.name)
}

// HasCustomTemplate checks if a custom template exists for the given filename.
func (l *Loader) HasCustomTemplate(filename string) bool {
	_, err := os.Stat(l.CustomPath(filename))
	return err == nil
}

// ListEmbeddedTemplates returns all embedded *.tmpl files.
func (l *Loader) ListEmbeddedTemplates() ([]string, error) {
	var templates []string
	err := fs.WalkDir(l.embedded, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".tmpl" {
			templates = append(templates, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	return templates, nil
}

// DumpTemplate writes an embedded template to the custom directory.
func (l *Loader) DumpTemplate(filename string, force bool) (string, error) {
	content, err := fs.ReadFile(l.embedded, filename)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded template %q: %w", filename, err)
	}

	outputPath := l.CustomPath(filename)
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return outputPath, fmt.Errorf("%w: %s", ErrExists, outputPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil { // #nosec G301 - Config directory needs standard permissions
		return "", fmt.Errorf("failed to create directory %q: %w", filepath.Dir(outputPath), err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil { // #nosec G306 - Templates are not secret
		return "", fmt.Errorf("failed to write template to %q: %w", outputPath, err)
	}
	return outputPath, nil
}

// DumpAllTemplates writes every embedded template. Existing files are skipped
// unless force is set; the skips are reported together in the returned error
// while the remaining templates are still written.
func (l *Loader) DumpAllTemplates(force bool) ([]string, error) {
	templates, err := l.ListEmbeddedTemplates()
	if err != nil {
		return nil, err
	}

	var dumped []string
	var skipped []error
	for _, tmpl := range templates {
		p, err := l.DumpTemplate(tmpl, force)
		if err != nil {
			if errors.Is(err, ErrExists) {
				skipped = append(skipped, err)
				continue
			}
			return dumped, err
		}
		dumped = append(dumped, p)
	}
	return dumped, errors.Join(skipped...)
}

// Info describes one template.
type Info struct {
	Filename       string
	EmbeddedExists bool
	CustomExists   bool
	CustomPath     string
}

// GetInfo returns information about a specific template.
func (l *Loader) GetInfo(filename string) Info {
	_, embeddedErr := fs.Stat(l.embedded, filename)
	return Info{
		Filename:       filename,
		EmbeddedExists: embeddedErr == nil,
		CustomExists:   l.HasCustomTemplate(filename),
		CustomPath:     l.CustomPath(filename),
	}
}
