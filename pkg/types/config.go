package types

import "errors"

// Config holds backend selection and parameters for a project store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// NullPresentation is the reserved text that stands for a null value inside
// multilingual text.
const NullPresentation = "<null>"

// ProjectSettings are the per-project switches that influence validation and
// delta fixes.
type ProjectSettings struct {
	// ReferencedGenerationValidOnValidFrom requires every link target to have
	// a generation effective on the linking container's valid-from date.
	ReferencedGenerationValidOnValidFrom bool `json:"referenced_generation_valid_on_valid_from" yaml:"referenced_generation_valid_on_valid_from"`

	// NullPresentation overrides the reserved null text. Empty means
	// NullPresentation.
	NullPresentation string `json:"null_presentation" yaml:"null_presentation"`

	// DefaultLocale is used when plain text must become multilingual text.
	DefaultLocale string `json:"default_locale" yaml:"default_locale"`
}

// DefaultProjectSettings returns the settings used when none are configured.
func DefaultProjectSettings() ProjectSettings {
	return ProjectSettings{
		NullPresentation: NullPresentation,
		DefaultLocale:    "en",
	}
}

// ValidationOptions derives the value holder validation options.
func (s ProjectSettings) ValidationOptions() ValidationOptions {
	opts := ValidationOptions{NullPresentation: s.NullPresentation}
	if opts.NullPresentation == "" {
		opts.NullPresentation = NullPresentation
	}
	return opts
}

// Locale returns DefaultLocale or "en" when unset.
func (s ProjectSettings) Locale() string {
	if s.DefaultLocale == "" {
		return "en"
	}
	return s.DefaultLocale
}
