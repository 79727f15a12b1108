package thread

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/compression"
)

//go:embed data/*.json
var dataFS embed.FS

// maxDatasetSize caps how much a (possibly compressed) dataset file may expand to.
const maxDatasetSize = 16 * 1024 * 1024

// Source supplies the colours of one dataset.
type Source interface {
	// Name identifies the dataset in logs and output.
	Name() string

	// Load returns the dataset's colours in order.
	Load() ([]Colour, error)
}

// datasetFile is the on-disk format shared by embedded and user datasets.
type datasetFile struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Colours     []datasetItem `json:"colours"`
}

type datasetItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// EmbeddedSource loads a dataset compiled into the binary.
type EmbeddedSource struct {
	name string
	path string
}

// NewEmbeddedSource returns a source for an embedded dataset file under data/.
func NewEmbeddedSource(name, filename string) *EmbeddedSource {
	return &EmbeddedSource{name: name, path: "data/" + filename}
}

// Name returns the dataset name.
func (s *EmbeddedSource) Name() string {
	return s.name
}

// Load decodes the embedded dataset.
func (s *EmbeddedSource) Load() ([]Colour, error) {
	data, err := dataFS.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s not available: %w", s.name, err)
	}
	return decodeDataset(bytes.NewReader(data))
}

// FileSource loads a dataset from a JSON file, optionally compressed.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading the dataset at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns the file name without compression or JSON extensions.
func (s *FileSource) Name() string {
	return strings.TrimSuffix(compression.TrimExt(filepath.Base(s.Path)), ".json")
}

// Load reads and decodes the dataset file. Files ending in .xz, .gz or .bz2
// are decompressed first.
func (s *FileSource) Load() ([]Colour, error) {
	f, err := os.Open(s.Path) // #nosec G304 - User-specified palette path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}
	defer f.Close()

	data, err := compression.ReadAll(f, s.Path, maxDatasetSize)
	if err != nil {
		return nil, err
	}
	return decodeDataset(bytes.NewReader(data))
}

// decodeDataset parses a dataset document. Both the wrapped form
// ({"colours": [...]}) and a bare array of colours are accepted.
// Repeated codes keep their first entry.
func decodeDataset(r io.Reader) ([]Colour, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var items []datasetItem
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse dataset: %w", err)
		}
	} else {
		var doc datasetFile
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse dataset: %w", err)
		}
		items = doc.Colours
	}

	colours := make([]Colour, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.Code == "" {
			return nil, fmt.Errorf("dataset entry %d has no code", i)
		}
		if seen[item.Code] {
			continue
		}
		rgb, err := colour.ParseHex(item.Hex)
		if err != nil {
			return nil, fmt.Errorf("dataset entry %s: %w", item.Code, err)
		}
		seen[item.Code] = true
		colours = append(colours, Colour{Code: item.Code, Name: item.Name, RGB: rgb})
	}

	return colours, nil
}
