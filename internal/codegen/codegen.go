// Package codegen renders generation artifacts: the function catalog as Go
// source or JSON, and compiled test suites as a go test file.
//
// Output is deterministic for a given input. Go sources are passed through
// go/format before they are returned.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
)

// Header is the first line of every generated Go file.
const Header = "// Code generated by dialectgen. DO NOT EDIT."

// Options control rendering of generated Go files.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Stamp, when non-empty, is written as a "Generated:" comment below the
	// header. Leave empty for reproducible output.
	Stamp string
	// Sources names the inputs in a "Source:" comment.
	Sources []string
}

func (o Options) pkg(fallback string) string {
	if o.Package == "" {
		return fallback
	}
	return o.Package
}

func writeHeader(buf *bytes.Buffer, opts Options, pkg string) {
	buf.WriteString(Header + "\n")
	if len(opts.Sources) > 0 {
		fmt.Fprintf(buf, "// Source: %s\n", strings.Join(opts.Sources, ", "))
	}
	if opts.Stamp != "" {
		fmt.Fprintf(buf, "// Generated: %s\n", opts.Stamp)
	}
	fmt.Fprintf(buf, "\npackage %s\n\n", pkg)
}

func gofmt(name string, src []byte) ([]byte, error) {
	out, err := format.Source(src)
	if err != nil {
		return nil, fmt.Errorf("failed to format generated %s: %w", name, err)
	}
	return out, nil
}

// writeStringSlice writes items as the body of a []string literal.
func writeStringSlice(buf *bytes.Buffer, items []string) {
	const itemsPerLine = 5
	for i, item := range items {
		if i%itemsPerLine == 0 {
			buf.WriteString("\t")
		}
		fmt.Fprintf(buf, "%q,", item)
		if i%itemsPerLine == itemsPerLine-1 || i == len(items)-1 {
			buf.WriteString("\n")
		} else {
			buf.WriteString(" ")
		}
	}
}
