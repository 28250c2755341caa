package extractor

import "testing"

func TestFindPrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "first decimal match wins", text: "Price: $99.99 Regular price: $129.99", want: "$99.99"},
		{name: "decimal preferred over longer integer", text: "Was $1,299 now $9.50", want: "$9.50"},
		{name: "longest without decimals", text: "$5 or $1,250 or $300", want: "$1,250"},
		{name: "earliest on equal length", text: "$400 then $500", want: "$400"},
		{name: "rupee", text: "MRP ₹2,499.00 incl. taxes", want: "₹2,499.00"},
		{name: "dollar beats rupee", text: "₹100.00 or $2", want: "$2"},
		{name: "iso code", text: "Total: 45.00 EUR", want: "45.00 EUR"},
		{name: "iso code case insensitive", text: "only 12 usd", want: "12 usd"},
		{name: "labeled", text: "PRICE:   1,000", want: "PRICE: 1,000"},
		{name: "spelled currency", text: "costs 30 dollars", want: "30 dollars"},
		{name: "whitespace collapsed", text: "19.99\n\t  GBP", want: "19.99 GBP"},
		{name: "first decimal over later larger", text: "Now $9.99 was $1,299.99", want: "$9.99"},
		{name: "trailing period is not a fraction", text: "Only $5. Now $12.99", want: "$12.99"},
		{name: "label without digits", text: "Price, see below", want: ""},
		{name: "commas without digits", text: "Prices, fees, and taxes, USD", want: ""},
		{name: "no price", text: "Free shipping on all orders", want: ""},
		{name: "empty", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPrice(tt.text); got != tt.want {
				t.Errorf("FindPrice(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPickPrice(t *testing.T) {
	if got := pickPrice([]string{"$1", "$22", "$3.5", "$4.25"}); got != "$3.5" {
		t.Errorf("pickPrice() = %q, want %q", got, "$3.5")
	}
	if got := pickPrice([]string{"$5.", "$12"}); got != "$12" {
		t.Errorf("pickPrice() = %q, want %q", got, "$12")
	}
	if got := pickPrice(nil); got != "" {
		t.Errorf("pickPrice(nil) = %q, want empty", got)
	}
}

func TestPricePatternsTable(t *testing.T) {
	names := []string{"dollar", "rupee", "iso-code", "labeled", "spelled"}
	if len(PricePatterns) != len(names) {
		t.Fatalf("PricePatterns has %d entries, want %d", len(PricePatterns), len(names))
	}
	for i, name := range names {
		if PricePatterns[i].Name != name {
			t.Errorf("PricePatterns[%d] = %q, want %q", i, PricePatterns[i].Name, name)
		}
	}
}
