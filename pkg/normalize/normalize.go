// Package normalize rewrites compliance-test SQL and expected column labels
// into the casing the target dialect expects.
//
// Test fixtures are written for a case-insensitive dialect. The target is
// case-sensitive for table and column identifiers, so statements are folded
// to lower case and the known table names and multi-word column phrases are
// restored to their canonical capitalization.
package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rules is the closed set of identifiers restored by a Normalizer.
type Rules struct {
	// Tables are canonical table names ("Calcs"), matched as whole words.
	Tables []string `koanf:"tables"`
	// Phrases are canonical column identifiers ("Order ID"), matched as whole
	// words against the lower-cased text.
	Phrases []string `koanf:"phrases"`
	// BoolColumns is the bool<N>_ suffix family. Columns bool0_ .. boolN_ lose
	// their trailing underscore for N in [BoolMin, BoolMax].
	BoolMin int `koanf:"bool_min"`
	BoolMax int `koanf:"bool_max"`
}

// DefaultRules returns the identifier set used by the TDVT Calcs and Staples
// fixtures.
func DefaultRules() Rules {
	return Rules{
		Tables: []string{"Calcs", "Staples"},
		Phrases: []string{
			"Item Count", "Ship Priority", "Order Priority", "Order Status",
			"Order Quantity", "Sales Total", "Discount", "Tax Rate", "Ship Mode",
			"Fill Time", "Gross Profit", "Price", "Ship Handle Cost",
			"Employee Name", "Employee Dept", "Manager Name", "Employee Yrs Exp",
			"Employee Salary", "Customer Name", "Customer State",
			"Call Center Region", "Customer Balance", "Customer Segment",
			"Prod Type1", "Prod Type2", "Prod Type3", "Prod Type4",
			"Product Name", "Product Container", "Ship Promo", "Supplier Name",
			"Supplier Balance", "Supplier Region", "Supplier State", "Order ID",
			"Order Year", "Order Month", "Order Day", "Order Date",
			"Order Quarter", "Product Base Margin", "Product ID", "Receive Time",
			"Received Date", "Ship Date", "Ship Charge", "Total Cycle Time",
			"Product In Stock", "PID", "Market Segment",
		},
		BoolMin: 0,
		BoolMax: 3,
	}
}

// Normalizer applies Rules to SQL statements and identifiers. It is safe for
// concurrent use.
type Normalizer struct {
	rules     Rules
	lineBreak *regexp.Regexp
	words     *regexp.Regexp
	canonical map[string]string
	boolCol   *regexp.Regexp
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// New compiles rules into a Normalizer.
func New(rules Rules) (*Normalizer, error) {
	if rules.BoolMax < rules.BoolMin {
		return nil, fmt.Errorf("bool column range is empty: %d..%d", rules.BoolMin, rules.BoolMax)
	}

	n := &Normalizer{
		rules:     rules,
		lineBreak: lineBreaks,
		canonical: make(map[string]string),
	}

	// Tables and phrases share one alternation. Longest first, so that a
	// phrase that contains another phrase wins over it.
	var keys []string
	for _, ident := range append(append([]string{}, rules.Tables...), rules.Phrases...) {
		ident = strings.TrimSpace(ident)
		if ident == "" {
			continue
		}
		key := strings.ToLower(ident)
		if _, dup := n.canonical[key]; dup {
			continue
		}
		n.canonical[key] = ident
		keys = append(keys, key)
	}
	sort.SliceStable(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	if len(keys) > 0 {
		alts := make([]string, len(keys))
		for i, k := range keys {
			alts[i] = regexp.QuoteMeta(k)
		}
		// (?i) keeps the match stable on already-canonical text.
		words, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile identifier pattern: %w", err)
		}
		n.words = words
	}

	digits := make([]string, 0, rules.BoolMax-rules.BoolMin+1)
	for i := rules.BoolMin; i <= rules.BoolMax; i++ {
		digits = append(digits, fmt.Sprint(i))
	}
	n.boolCol = regexp.MustCompile(`(?i)\b(bool(?:` + strings.Join(digits, "|") + `))_\b`)

	return n, nil
}

// Default returns a Normalizer for DefaultRules.
func Default() *Normalizer {
	n, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return n
}

// Rules returns the rules n was built from.
func (n *Normalizer) Rules() Rules {
	return n.rules
}

// SQL normalizes a full statement: line breaks collapse to one space, the
// text is lower-cased, and table names, column phrases and bool columns are
// restored.
func (n *Normalizer) SQL(sql string) string {
	s := n.lineBreak.ReplaceAllString(sql, " ")
	return n.casing(strings.ToLower(s))
}

// Identifier applies only the casing step to an expected column label.
func (n *Normalizer) Identifier(name string) string {
	return n.casing(strings.ToLower(name))
}

func (n *Normalizer) casing(s string) string {
	if n.words != nil {
		s = n.words.ReplaceAllStringFunc(s, func(m string) string {
			if c, ok := n.canonical[strings.ToLower(m)]; ok {
				return c
			}
			return m
		})
	}
	return n.boolCol.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToLower(strings.TrimSuffix(m, "_"))
	})
}
