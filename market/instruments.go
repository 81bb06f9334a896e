// market/instruments.go
package market

import (
	"strings"
	"time"
)

// Instrument is a tradable symbol and its current quote.
type Instrument struct {
	Symbol             string    `json:"symbol"`
	Name               string    `json:"name"`
	Sector             string    `json:"sector,omitempty"`
	CurrentPrice       Money     `json:"current_price"`
	PriceChange        Money     `json:"price_change"`
	PriceChangePercent Percent   `json:"price_change_percent"`
	IsActive           bool      `json:"is_active"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Quote returns the instrument's current price figures.
func (i Instrument) Quote() Quote {
	return Quote{
		Symbol:        i.Symbol,
		Price:         i.CurrentPrice,
		Change:        i.PriceChange,
		ChangePercent: i.PriceChangePercent,
		Time:          i.UpdatedAt,
	}
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Catalog is the starter set of instruments a fresh ledger is seeded with.
var Catalog = []Instrument{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", CurrentPrice: MustMoney("182.52"), PriceChange: MustMoney("2.45"), PriceChangePercent: P(1.36), IsActive: true},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", CurrentPrice: MustMoney("134.85"), PriceChange: MustMoney("-1.23"), PriceChangePercent: P(-0.90), IsActive: true},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", CurrentPrice: MustMoney("378.91"), PriceChange: MustMoney("5.67"), PriceChangePercent: P(1.52), IsActive: true},
	{Symbol: "TSLA", Name: "Tesla, Inc.", Sector: "Automotive", CurrentPrice: MustMoney("251.34"), PriceChange: MustMoney("-8.92"), PriceChangePercent: P(-3.43), IsActive: true},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "E-commerce", CurrentPrice: MustMoney("145.73"), PriceChange: MustMoney("3.21"), PriceChangePercent: P(2.25), IsActive: true},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", CurrentPrice: MustMoney("467.89"), PriceChange: MustMoney("12.45"), PriceChangePercent: P(2.73), IsActive: true},
	{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Technology", CurrentPrice: MustMoney("334.56"), PriceChange: MustMoney("-2.34"), PriceChangePercent: P(-0.69), IsActive: true},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial", CurrentPrice: MustMoney("156.78"), PriceChange: MustMoney("1.89"), PriceChangePercent: P(1.22), IsActive: true},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", CurrentPrice: MustMoney("162.45"), PriceChange: MustMoney("0.87"), PriceChangePercent: P(0.54), IsActive: true},
	{Symbol: "V", Name: "Visa Inc.", Sector: "Financial", CurrentPrice: MustMoney("234.67"), PriceChange: MustMoney("2.11"), PriceChangePercent: P(0.91), IsActive: true},
}
