package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dialectgen/internal/cli/output"
	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand() *cobra.Command {
	var columns bool

	cmd := &cobra.Command{
		Use:   "functions [pattern]",
		Short: "List cataloged functions",
		Long: `List the functions the catalog would contain, filtered by a SQL LIKE
pattern on the function name ("%" matches any run of characters, "_" a single
character, case-insensitive). With --columns, list one row per function
column: the return value at ordinal 0, then each argument.`,
		Example: `  # All functions
  dialectgen functions

  # Functions starting with DATE
  dialectgen functions 'DATE%'

  # Column metadata of SUBSTRING as JSON
  dialectgen functions SUBSTRING --columns -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			pattern := "%"
			if len(args) == 1 {
				pattern = args[0]
			}

			cat, _, err := buildCatalog(cc.Cfg.Functions, cc.Logger)
			if err != nil {
				return err
			}

			if columns {
				return renderFunctionColumns(cc.Renderer, cat.FunctionColumns(pattern))
			}
			return renderFunctions(cc.Renderer, cat, cat.Functions(pattern))
		},
	}

	cmd.Flags().StringSlice("functions", nil, "Function-specification files, in merge order")
	cmd.Flags().BoolVar(&columns, "columns", false, "List function columns instead of functions")

	return cmd
}

func typeList(types []typemap.Canonical) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func renderFunctions(r *output.Renderer, cat *catalog.Catalog, entries []catalog.Entry) error {
	if r.EffectiveMode() == output.ModeJSON {
		if entries == nil {
			entries = []catalog.Entry{}
		}
		return r.JSON(entries)
	}

	if len(entries) == 0 {
		r.Muted("No functions match")
		return nil
	}

	cats := cat.Categories()
	membership := make(map[string][]string)
	for _, set := range []struct {
		name  string
		names []string
	}{
		{"numeric", cats.Numeric},
		{"string", cats.String},
		{"date", cats.Date},
		{"system", cats.System},
	} {
		for _, n := range set.names {
			membership[n] = append(membership[n], set.name)
		}
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			e.ReturnType.String(),
			typeList(e.ArgTypes),
			strings.Join(membership[e.Name], ", "),
			e.Comment,
		})
	}

	r.Header(2, "Functions ("+strconv.Itoa(len(entries))+")")
	r.Table([]string{"Name", "Returns", "Arguments", "Categories", "Description"}, rows)
	return nil
}

func renderFunctionColumns(r *output.Renderer, cols []catalog.FunctionColumn) error {
	if r.EffectiveMode() == output.ModeJSON {
		if cols == nil {
			cols = []catalog.FunctionColumn{}
		}
		return r.JSON(cols)
	}

	if len(cols) == 0 {
		r.Muted("No functions match")
		return nil
	}

	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, []string{c.Function, strconv.Itoa(c.Ordinal), c.Name, string(c.Role), c.Type.String()})
	}
	r.Header(2, "Function columns")
	r.Table([]string{"Function", "Ordinal", "Column", "Role", "Type"}, rows)
	return nil
}
