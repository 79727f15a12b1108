package thread

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/xstitch/internal/errdefs"
)

// Built-in dataset names.
const (
	DatasetComplete = "complete"
	DatasetLegacy   = "legacy"
	DatasetFallback = "fallback"
)

// Preference selects where the dataset fallback chain starts.
type Preference string

const (
	// PreferAuto uses the complete dataset, then legacy, then the fallback.
	PreferAuto Preference = "auto"
	// PreferComplete is equivalent to PreferAuto but named explicitly.
	PreferComplete Preference = "complete"
	// PreferLegacy starts the chain at the legacy dataset.
	PreferLegacy Preference = "legacy"
)

// ValidPreferences returns the accepted preference names.
func ValidPreferences() []Preference {
	return []Preference{PreferAuto, PreferComplete, PreferLegacy}
}

// String implements pflag.Value.
func (p *Preference) String() string {
	if p == nil || *p == "" {
		return string(PreferAuto)
	}
	return string(*p)
}

// Set implements pflag.Value.
func (p *Preference) Set(s string) error {
	pref := Preference(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidPreferences() {
		if pref == valid {
			*p = pref
			return nil
		}
	}
	return fmt.Errorf("unknown palette %q (valid: auto, complete, legacy)", s)
}

// Type implements pflag.Value.
func (p *Preference) Type() string {
	return "palette"
}

// Catalogue resolves reference palettes from the built-in datasets.
type Catalogue struct {
	complete Source
	legacy   Source
	logger   hclog.Logger
}

// NewCatalogue returns a catalogue backed by the embedded datasets.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		complete: NewEmbeddedSource(DatasetComplete, "dmc-complete.json"),
		legacy:   NewEmbeddedSource(DatasetLegacy, "dmc-legacy.json"),
		logger:   hclog.NewNullLogger(),
	}
}

// WithSources replaces the built-in datasets. A nil source is treated as
// unavailable.
func (c *Catalogue) WithSources(complete, legacy Source) *Catalogue {
	c.complete = complete
	c.legacy = legacy
	return c
}

// WithLogger sets the logger used to report skipped datasets.
func (c *Catalogue) WithLogger(logger hclog.Logger) *Catalogue {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	c.logger = logger
	return c
}

// Sources returns the built-in datasets in preference order, skipping any
// that are not configured.
func (c *Catalogue) Sources() []Source {
	var sources []Source
	for _, s := range []Source{c.complete, c.legacy} {
		if s != nil {
			sources = append(sources, s)
		}
	}
	return sources
}

// Lookup resolves the palette for one pattern generation.
//
// The user source, when non-nil, is tried first. The chain then continues
// from the preferred built-in dataset. A dataset that fails to load or is
// empty is skipped. If nothing is left, the two-thread fallback palette is
// returned, so a successful Lookup never yields an empty palette.
func (c *Catalogue) Lookup(pref Preference, user Source) (*Palette, error) {
	var chain []Source
	if user != nil {
		chain = append(chain, user)
	}

	switch pref {
	case PreferAuto, PreferComplete, "":
		chain = append(chain, c.complete, c.legacy)
	case PreferLegacy:
		chain = append(chain, c.legacy)
	default:
		return nil, errdefs.Configuration("unknown palette preference %q", pref)
	}

	for _, src := range chain {
		if src == nil {
			continue
		}
		colours, err := src.Load()
		if err != nil {
			c.logger.Warn("palette dataset unavailable", "dataset", src.Name(), "error", err)
			continue
		}
		if len(colours) == 0 {
			c.logger.Warn("palette dataset is empty", "dataset", src.Name())
			continue
		}
		c.logger.Debug("palette dataset selected", "dataset", src.Name(), "colours", len(colours))
		return &Palette{Dataset: src.Name(), Colours: colours}, nil
	}

	c.logger.Warn("no palette dataset available, using fallback", "colours", len(Fallback()))
	return &Palette{Dataset: DatasetFallback, Colours: Fallback()}, nil
}
