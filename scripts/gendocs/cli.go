package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/dialectgen/internal/cli"
	"github.com/leapstack-labs/dialectgen/internal/cli/config"
)

// commandGroups orders the index page. Commands not listed fall into "Other".
var commandGroups = []struct {
	title    string
	commands []string
}{
	{"Generation", []string{"catalog", "compile", "extract"}},
	{"Inspection", []string{"functions", "verify"}},
}

// documented returns the visible subcommands of root.
func documented(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// generateCLIDocs writes index.md plus one page per command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	cmds := documented(root)

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), cliIndex(root, cmds), 0600); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range cmds {
		name := cmd.Name() + ".md"
		if err := os.WriteFile(filepath.Join(outDir, name), commandPage(cmd), 0600); err != nil {
			return fmt.Errorf("failed to write page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func commandLink(cmd *cobra.Command) []string {
	return []string{
		fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
		cleanDescription(cmd.Short),
	}
}

func cliIndex(root *cobra.Command, cmds []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for dialectgen")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("dialectgen generates function catalogs and SQL compliance suites for a dialect adapter, and verifies suites against a live database.")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/dialectgen/cmd/dialectgen@latest\n\ndialectgen <command> [options]")

	byName := make(map[string]*cobra.Command, len(cmds))
	for _, cmd := range cmds {
		byName[cmd.Name()] = cmd
	}
	for _, g := range commandGroups {
		var rows [][]string
		for _, name := range g.commands {
			if cmd, ok := byName[name]; ok {
				rows = append(rows, commandLink(cmd))
				delete(byName, name)
			}
		}
		w.Header(2, g.title)
		w.Table([]string{"Command", "Description"}, rows)
	}
	var rest [][]string
	for _, cmd := range cmds {
		if _, ok := byName[cmd.Name()]; ok {
			rest = append(rest, commandLink(cmd))
		}
	}
	if len(rest) > 0 {
		w.Header(2, "Other")
		w.Table([]string{"Command", "Description"}, rest)
	}

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every configuration key can be set with a %s variable. A double underscore separates nested keys.", InlineCode(config.EnvPrefix+"*")))
	w.Table([]string{"Variable", "Key"}, [][]string{
		{InlineCode(config.EnvPrefix + "OUT_DIR"), InlineCode("out_dir")},
		{InlineCode(config.EnvPrefix + "COMPARISON"), InlineCode("comparison")},
		{InlineCode(config.EnvPrefix + "TOLERANCE"), InlineCode("tolerance")},
		{InlineCode(config.EnvPrefix + "FUNCTIONS"), InlineCode("functions") + " (comma-separated)"},
		{InlineCode(config.EnvPrefix + "TARGET__HOST"), InlineCode("target.host")},
	})
	w.Paragraph("Flags override environment variables, which override the config file.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, or failed assertions for verify (details on stderr)"},
	})

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", strings.TrimSuffix(cmd.UseLine(), " [flags]"))

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Header(2, "Aliases")
		w.BulletList(aliases)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", cleanExample(cmd.Example))
	}

	return w.Bytes()
}

// writeFlagsTable lists flags with the configuration key each one sets.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}

		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name += ", " + InlineCode("-"+f.Shorthand)
		}

		key := "-"
		if k, ok := config.FlagKey(f.Name); ok {
			key = InlineCode(k)
		}

		def := f.DefValue
		switch {
		case def == "" || def == "[]" || def == "0" && f.Value.Type() != "bool":
			def = "-"
		case f.Value.Type() == "string":
			def = InlineCode(def)
		}

		rows = append(rows, []string{name, key, def, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Config key", "Default", "Description"}, rows)
}

// cleanExample removes the common leading indentation of an example.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(example)
	}

	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
