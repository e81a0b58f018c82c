package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_SQL(t *testing.T) {
	n := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "table name",
			in:   "select * from calcs",
			want: "select * from Calcs",
		},
		{
			name: "upper case input",
			in:   "SELECT NUM0 FROM CALCS",
			want: "select num0 from Calcs",
		},
		{
			name: "line breaks collapse",
			in:   "SELECT num0\nFROM calcs\r\nWHERE 1=1",
			want: "select num0 from Calcs where 1=1",
		},
		{
			name: "multi word column",
			in:   "SELECT [Order ID], [ship mode] FROM Staples",
			want: "select [Order ID], [Ship Mode] from Staples",
		},
		{
			name: "longest phrase wins",
			in:   "select `order date`, `received date`, `ship date` from staples",
			want: "select `Order Date`, `Received Date`, `Ship Date` from Staples",
		},
		{
			name: "bool suffix stripped",
			in:   "SELECT bool0_, bool3_ FROM calcs",
			want: "select bool0, bool3 from Calcs",
		},
		{
			name: "bool outside range kept",
			in:   "select bool4_ from calcs",
			want: "select bool4_ from Calcs",
		},
		{
			name: "table name inside identifier kept",
			in:   "select calcs_id from calcsx",
			want: "select calcs_id from calcsx",
		},
		{
			name: "market segment",
			in:   "select `market segment` from staples",
			want: "select `Market Segment` from Staples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.SQL(tt.in))
		})
	}
}

func TestNormalizer_Identifier(t *testing.T) {
	n := Default()

	assert.Equal(t, "Order ID", n.Identifier("order id"))
	assert.Equal(t, "Order ID", n.Identifier("ORDER ID"))
	assert.Equal(t, "num0", n.Identifier("NUM0"))
	assert.Equal(t, "bool1", n.Identifier("bool1_"))
	assert.Equal(t, "sum(Sales Total)", n.Identifier("SUM(sales total)"))
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := Default()
	inputs := []string{
		"select * from calcs",
		"SELECT [Order ID], bool0_ FROM Staples\nWHERE [Product In Stock] = 1",
		"select `product base margin`, pid from staples",
		"",
	}

	for _, in := range inputs {
		once := n.SQL(in)
		assert.Equal(t, once, n.SQL(once), "SQL(%q)", in)

		id := n.Identifier(in)
		assert.Equal(t, id, n.Identifier(id), "Identifier(%q)", in)
	}
}

func TestNormalizer_CaseInsensitive(t *testing.T) {
	n := Default()
	for _, phrase := range DefaultRules().Phrases {
		lower := strings.ToLower(phrase)
		assert.Equal(t, n.Identifier(lower), n.Identifier(strings.ToUpper(lower)), phrase)
		assert.Equal(t, phrase, n.Identifier(lower))
	}
}

func TestNew_CustomRules(t *testing.T) {
	n, err := New(Rules{
		Tables:  []string{"Orders"},
		Phrases: []string{"Order", "Order Line"},
		BoolMin: 1,
		BoolMax: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "select `Order Line`, `Order` from Orders", n.SQL("select `order line`, `order` from orders"))
	assert.Equal(t, "bool1 bool0_", n.Identifier("bool1_ bool0_"))
	assert.Equal(t, "Orders", n.Rules().Tables[0])
}

func TestNew_EmptyBoolRange(t *testing.T) {
	_, err := New(Rules{BoolMin: 3, BoolMax: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bool column range")
}
