package request

import "github.com/shopspring/decimal"

type CreateTransactionRequest struct {
	Type         string          `json:"type"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Date         string          `json:"date"`
}
