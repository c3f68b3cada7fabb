package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the derived aggregate for one (portfolio, symbol) pair: the net
// quantity currently held and the weighted-average cost of acquiring it. A
// holding row exists only while the quantity is positive; it is never stored
// at zero.
type Holding struct {
	PortfolioID    string          `json:"portfolioId"`
	Symbol         string          `json:"symbol"`
	Quantity       int64           `json:"quantity"`
	AvgCostPerUnit decimal.Decimal `json:"avgCostPerUnit"`
	LastBuyDate    time.Time       `json:"lastBuyDate"`
}
