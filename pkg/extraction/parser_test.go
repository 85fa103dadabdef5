package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseText_TypicalReceipt(t *testing.T) {
	text := `Checkers Sandton
123 Rivonia Road, Sandton
2024-06-15
Milk 2L 24.99
2x Bread 37.98
Eggs 18s 89.99
SUBTOTAL 152.96
VAT 19.95
TOTAL: R 152.96`

	parsed := ParseText(text)

	assert.Equal(t, "Checkers Sandton", parsed.ShopName)
	assert.Equal(t, "123 Rivonia Road, Sandton", parsed.ShopAddress)
	assert.Equal(t, 152.96, parsed.Amount)
	assert.Equal(t, "2024-06-15", parsed.Date)

	assert.Len(t, parsed.Items, 3)
	assert.Equal(t, "Milk 2L", parsed.Items[0].Name)
	assert.Equal(t, 24.99, parsed.Items[0].Price)
	assert.Equal(t, 1, parsed.Items[0].Quantity)
	assert.Equal(t, "Bread", parsed.Items[1].Name)
	assert.Equal(t, 2, parsed.Items[1].Quantity)
}

func TestParseText_CommaDecimal(t *testing.T) {
	text := "Spar\nTotal 45,50"
	parsed := ParseText(text)
	assert.Equal(t, 45.50, parsed.Amount)
}

func TestParseText_GrandTotalBeatsSubtotal(t *testing.T) {
	text := `Woolworths
Cheese 79.99
SUBTOTAL 79.99
TOTAL 91.99`
	parsed := ParseText(text)
	assert.Equal(t, 91.99, parsed.Amount)
}

func TestParseText_BareAmountFallback(t *testing.T) {
	// No "total" keyword anywhere; the last priced line near the bottom
	// is taken as the amount.
	text := `Corner Cafe
Coffee 32.00
R 32.00`
	parsed := ParseText(text)
	assert.Equal(t, 32.00, parsed.Amount)
}

func TestParseText_SlashDateIsDayFirst(t *testing.T) {
	text := "Pick n Pay\n15/06/2024\nTOTAL 10.00"
	parsed := ParseText(text)
	assert.Equal(t, "2024-06-15", parsed.Date)
}

func TestParseText_SummaryRowsAreNotItems(t *testing.T) {
	text := `Spar
Apples 12.50
CASH 50.00
CHANGE 37.50
TOTAL 12.50`
	parsed := ParseText(text)

	assert.Len(t, parsed.Items, 1)
	assert.Equal(t, "Apples", parsed.Items[0].Name)
}

func TestParseText_Empty(t *testing.T) {
	parsed := ParseText("   \n \n")
	assert.Equal(t, "", parsed.ShopName)
	assert.Equal(t, 0.0, parsed.Amount)
	assert.Empty(t, parsed.Items)
}

func TestAdapt_FieldAliases(t *testing.T) {
	amount := 99.50
	resp := &extractResponse{
		StoreName:   "Game Menlyn",
		TotalAmount: &amount,
		ReceiptDate: "2024-06-15",
		LineItems: []extractItem{
			{Description: "Kettle", Amount: &amount},
		},
	}

	result := adapt(resp)

	assert.Equal(t, "Game Menlyn", result.ShopName)
	assert.Equal(t, 99.50, result.Amount)
	assert.Equal(t, "2024-06-15", result.Date)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "Kettle", result.Items[0].Name)
	assert.Equal(t, 1, result.Items[0].Quantity)
}

func TestAdapt_RecoversFromMarkdownOnly(t *testing.T) {
	resp := &extractResponse{
		Markdown: "Clicks\nVitamins 120.00\nTOTAL 120.00",
	}

	result := adapt(resp)

	assert.Equal(t, "Clicks", result.ShopName)
	assert.Equal(t, 120.00, result.Amount)
}
