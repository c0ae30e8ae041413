package cli

import (
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdfmt/internal/ui/pretty"
)

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ command (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ .CommandPath }} [command] --help" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate

// helpRenderer renders cobra help and usage with lipgloss styles.
// Color is resolved per invocation since --color is parsed after the
// command tree is built.
type helpRenderer struct {
	color *string
}

// applyHelp installs styled help on cmd. Subcommands inherit it.
func applyHelp(cmd *cobra.Command, color *string) {
	h := &helpRenderer{color: color}

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return h.execute(c, "usage", usageTemplate)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := h.execute(c, "help", helpTemplate); err != nil {
			c.PrintErrln(err)
		}
	})
}

func (h *helpRenderer) execute(cmd *cobra.Command, name, text string) error {
	mode := pretty.ColorAuto
	if h.color != nil && pretty.ValidColorMode(*h.color) {
		mode = *h.color
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(mode, cmd.OutOrStdout()))

	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"heading": styles.Warning.Render,
		"command": styles.FilePath.Render,
		"dim":     styles.Dim.Render,
		"flags":   func(usages string) string { return styleFlagUsages(styles, usages) },
		"rpad":    rpad,
		"trim":    trimTrailingWhitespace,
	}).Parse(text)
	if err != nil {
		return err
	}
	return tmpl.Execute(cmd.OutOrStdout(), cmd)
}

// styleFlagUsages colors the flag names in pflag's usage block. Columns are
// left as pflag aligned them.
func styleFlagUsages(styles *pretty.Styles, usages string) string {
	lines := strings.Split(strings.TrimRight(usages, "\n"), "\n")
	for i, line := range lines {
		lines[i] = styleFlagLine(styles, line)
	}
	return strings.Join(lines, "\n")
}

// styleFlagLine styles "  -w, --write   description": flag tokens before the
// first run of two spaces get the flag color, the type word is dimmed.
func styleFlagLine(styles *pretty.Styles, line string) string {
	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]

	split := strings.Index(body, "  ")
	if split < 0 {
		return line
	}
	names, rest := body[:split], body[split:]

	tokens := strings.Split(names, " ")
	for i, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "-"):
			bare := strings.TrimSuffix(tok, ",")
			tokens[i] = styles.Changed.Render(bare) + tok[len(bare):]
		case tok != "":
			tokens[i] = styles.Dim.Render(tok)
		}
	}
	return indent + strings.Join(tokens, " ") + rest
}

func rpad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
