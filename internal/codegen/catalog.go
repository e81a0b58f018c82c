package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/dialectgen/pkg/catalog"
	"github.com/leapstack-labs/dialectgen/pkg/typemap"
)

var canonicalIdents = map[typemap.Canonical]string{
	typemap.Null:    "typemap.Null",
	typemap.Numeric: "typemap.Numeric",
	typemap.String:  "typemap.String",
	typemap.Long:    "typemap.Long",
	typemap.Int:     "typemap.Int",
	typemap.Date:    "typemap.Date",
	typemap.Double:  "typemap.Double",
	typemap.Decimal: "typemap.Decimal",
}

func canonicalIdent(c typemap.Canonical) string {
	if id, ok := canonicalIdents[c]; ok {
		return id
	}
	return fmt.Sprintf("typemap.Canonical(%q)", string(c))
}

// CatalogSource renders cat as a Go file declaring Functions, Names, the
// category strings and a Catalog constructor. The default package is
// "functions".
func CatalogSource(cat *catalog.Catalog, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, opts, opts.pkg("functions"))

	entries := cat.Entries()
	buf.WriteString("import (\n")
	buf.WriteString("\t\"github.com/leapstack-labs/dialectgen/pkg/catalog\"\n")
	if len(entries) > 0 {
		buf.WriteString("\t\"github.com/leapstack-labs/dialectgen/pkg/typemap\"\n")
	}
	buf.WriteString(")\n\n")

	buf.WriteString("// Functions lists the cataloged functions in source order.\n")
	buf.WriteString("var Functions = []catalog.Entry{\n")
	for _, e := range entries {
		fmt.Fprintf(&buf, "\t{\n\t\tName: %q,\n\t\tReturnType: %s,\n", e.Name, canonicalIdent(e.ReturnType))
		if e.Comment != "" {
			fmt.Fprintf(&buf, "\t\tComment: %q,\n", e.Comment)
		}
		buf.WriteString("\t\tArgTypes: []typemap.Canonical{")
		for i, a := range e.ArgTypes {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(canonicalIdent(a))
		}
		buf.WriteString("},\n\t},\n")
	}
	buf.WriteString("}\n\n")

	buf.WriteString("// Names lists the function names in source order.\n")
	buf.WriteString("var Names = []string{\n")
	writeStringSlice(&buf, cat.Names())
	buf.WriteString("}\n\n")

	buf.WriteString("// Comma-joined function names per argument category.\n")
	buf.WriteString("const (\n")
	fmt.Fprintf(&buf, "\tNumericFunctions = %q\n", cat.NumericFunctions())
	fmt.Fprintf(&buf, "\tStringFunctions = %q\n", cat.StringFunctions())
	fmt.Fprintf(&buf, "\tDateFunctions = %q\n", cat.DateFunctions())
	fmt.Fprintf(&buf, "\tSystemFunctions = %q\n", cat.SystemFunctions())
	buf.WriteString(")\n\n")

	buf.WriteString("// Catalog returns Functions as a catalog.\n")
	buf.WriteString("func Catalog() *catalog.Catalog {\n\treturn catalog.FromEntries(Functions)\n}\n")

	return gofmt("catalog", buf.Bytes())
}

type catalogDoc struct {
	Functions  []catalog.Entry    `json:"functions"`
	Names      []string           `json:"names"`
	Categories catalog.Categories `json:"categories"`
	Numeric    string             `json:"numericFunctions"`
	String     string             `json:"stringFunctions"`
	Date       string             `json:"dateFunctions"`
	System     string             `json:"systemFunctions"`
}

// CatalogJSON renders cat as an indented JSON document.
func CatalogJSON(cat *catalog.Catalog) ([]byte, error) {
	doc := catalogDoc{
		Functions:  cat.Entries(),
		Names:      cat.Names(),
		Categories: cat.Categories(),
		Numeric:    cat.NumericFunctions(),
		String:     cat.StringFunctions(),
		Date:       cat.DateFunctions(),
		System:     cat.SystemFunctions(),
	}
	if doc.Functions == nil {
		doc.Functions = []catalog.Entry{}
	}
	if doc.Names == nil {
		doc.Names = []string{}
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return append(out, '\n'), nil
}
