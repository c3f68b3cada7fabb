package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. The ledger only knows buys and sells.
const (
	TransactionTypeBuy  = "BUY"
	TransactionTypeSell = "SELL"
)

// Transaction represents one immutable ledger entry. Entries are append-only;
// the only mutation is full deletion, which is an explicit user action.
type Transaction struct {
	ID           string          `json:"id"`
	PortfolioID  string          `json:"portfolioId"`
	Type         string          `json:"type"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TradeDate    time.Time       `json:"tradeDate"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
}
