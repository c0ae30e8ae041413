// Package config defines core configuration types for mdfmt.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

// OutputFormat specifies how format results are reported.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatDiff OutputFormat = "diff"
)

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Unsupported-construct policies.
const (
	OnUnsupportedError  = "error"
	OnUnsupportedIgnore = "ignore"
)

// Defaults.
const (
	DefaultWidth    = 80
	DefaultLogLevel = "info"
)

// DefaultExtensions are the file extensions treated as Markdown.
//
//nolint:gochecknoglobals // Read-only default list.
var DefaultExtensions = []string{".md", ".markdown"}

// Config is the root configuration structure for mdfmt.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor,omitempty" json:"flavor,omitempty"`

	// Width is the maximum paragraph line width in display columns.
	Width int `yaml:"width,omitempty" json:"width,omitempty"`

	// OnUnsupported selects what happens when a document contains a
	// construct the formatter has no rules for: "error" or "ignore".
	OnUnsupported string `yaml:"on_unsupported,omitempty" json:"on_unsupported,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// Extensions lists the file extensions picked up when walking directories.
	Extensions []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`

	// Jobs is the number of parallel workers; 0 means GOMAXPROCS.
	Jobs int `yaml:"jobs,omitempty" json:"jobs,omitempty"`

	// LogLevel is the log level for the language server and CLI.
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`

	// CLI-level options (not persisted to config files).

	// Write rewrites files in place.
	Write bool `yaml:"-" json:"-"`

	// Check reports files that would change without writing them.
	Check bool `yaml:"-" json:"-"`

	// Format specifies the report format.
	Format OutputFormat `yaml:"-" json:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:        FlavorCommonMark,
		Width:         DefaultWidth,
		OnUnsupported: OnUnsupportedError,
		Ignore:        nil,
		Extensions:    append([]string(nil), DefaultExtensions...),
		Jobs:          0, // 0 means use GOMAXPROCS
		LogLevel:      DefaultLogLevel,
		Format:        FormatText,
	}
}
