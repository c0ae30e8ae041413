package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every setting, including the ones left at their
	// defaults. If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// settingDoc documents one configuration key for templates.
type settingDoc struct {
	key     string
	help    []string
	example string
}

//nolint:gochecknoglobals // Read-only template content.
var settingDocs = []settingDoc{
	{
		key:     "flavor",
		help:    []string{"Markdown flavor: commonmark or gfm"},
		example: "flavor: commonmark",
	},
	{
		key:     "width",
		help:    []string{"Maximum paragraph width in display columns"},
		example: "width: 80",
	},
	{
		key: "on_unsupported",
		help: []string{
			"What to do with documents containing constructs mdfmt cannot",
			"format (tables, links, block quotes, ...): error or ignore",
		},
		example: "on_unsupported: error",
	},
	{
		key:     "jobs",
		help:    []string{"Number of parallel workers (0 = auto)"},
		example: "jobs: 0",
	},
	{
		key:     "log_level",
		help:    []string{"Log level: debug, info, warn, or error"},
		example: "log_level: info",
	},
	{
		key:     "extensions",
		help:    []string{"File extensions formatted when walking directories"},
		example: "extensions:\n  - .md\n  - .markdown",
	},
	{
		key:     "ignore",
		help:    []string{"File patterns to ignore (glob patterns)"},
		example: "ignore:\n  - \"vendor/**\"\n  - \"node_modules/**\"",
	},
}

// templateHeader opens every generated YAML template.
const templateHeader = `# mdfmt configuration
# See: https://github.com/yaklabco/mdfmt
`

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "", "yaml":
		return generateYAMLTemplate(opts.Full), nil
	case "json":
		return generateJSONTemplate()
	default:
		return nil, fmt.Errorf("unsupported template format %q", opts.Format)
	}
}

// generateYAMLTemplate writes a commented template. The minimal template
// sets the flavor and width and leaves the rest commented out; the full
// template sets every key to its default.
func generateYAMLTemplate(full bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(templateHeader)

	for i, doc := range settingDocs {
		buf.WriteByte('\n')
		for _, line := range doc.help {
			buf.WriteString("# " + line + "\n")
		}

		active := full || i < 2
		for _, line := range strings.Split(doc.example, "\n") {
			if !active {
				buf.WriteString("# ")
			}
			buf.WriteString(line + "\n")
		}
	}

	return buf.Bytes()
}

// generateJSONTemplate writes the defaults as JSON. JSON has no comments,
// so only the values are emitted.
func generateJSONTemplate() ([]byte, error) {
	data, err := json.MarshalIndent(NewConfig(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return append(data, '\n'), nil
}
