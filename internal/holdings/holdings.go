// Package holdings implements the pure position arithmetic behind the
// transaction ledger: folding a buy or sell into a holding, and reversing a
// deleted transaction's effect. Nothing here touches storage; callers pass
// the current position in and persist whatever comes out.
package holdings

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockfolio/backend/internal/apperrors"
)

// Position is the in-memory snapshot of a holding: current quantity and the
// blended weighted-average cost of the shares still held. A nil *Position
// means no holding exists for the symbol.
type Position struct {
	Quantity       int64
	AvgCostPerUnit decimal.Decimal
	LastBuyDate    time.Time
}

// BuyLot is one remaining BUY transaction, used when a position has to be
// rebuilt from scratch after a buy is deleted.
type BuyLot struct {
	Quantity     int64
	PricePerUnit decimal.Decimal
	TradeDate    time.Time
}

// ApplyBuy folds a buy into the current position and returns the next one.
// With no existing position the buy opens one at its own price; otherwise the
// average cost is re-blended:
//
//	avg' = (avg*qty + price*bought) / (qty + bought)
//
// Quantity and price must be strictly positive; the caller validates both
// before the engine is invoked.
func ApplyBuy(cur *Position, qty int64, price decimal.Decimal, tradeDate time.Time) Position {
	if cur == nil {
		return Position{
			Quantity:       qty,
			AvgCostPerUnit: price,
			LastBuyDate:    tradeDate,
		}
	}

	totalQty := cur.Quantity + qty
	totalCost := cur.AvgCostPerUnit.Mul(decimal.NewFromInt(cur.Quantity)).
		Add(price.Mul(decimal.NewFromInt(qty)))

	return Position{
		Quantity:       totalQty,
		AvgCostPerUnit: totalCost.Div(decimal.NewFromInt(totalQty)),
		LastBuyDate:    tradeDate,
	}
}

// ApplySell reduces the current position by qty. Selling the full position
// closes it (nil result); selling part of it leaves the average cost
// untouched, since a sale does not change the cost basis of what remains.
// Returns ErrInsufficientHolding when there is no position or qty exceeds it.
func ApplySell(cur *Position, qty int64) (*Position, error) {
	if cur == nil || qty > cur.Quantity {
		return nil, apperrors.ErrInsufficientHolding
	}

	if qty == cur.Quantity {
		return nil, nil
	}

	return &Position{
		Quantity:       cur.Quantity - qty,
		AvgCostPerUnit: cur.AvgCostPerUnit,
		LastBuyDate:    cur.LastBuyDate,
	}, nil
}

// ReverseSell undoes a deleted sell by restoring its quantity. The average
// cost is unchanged, mirroring ApplySell. A sell cannot be reversed without a
// base position: its cost basis would be unknown, so rather than fabricate
// one this fails with ErrHoldingNotFound.
func ReverseSell(cur *Position, qty int64) (Position, error) {
	if cur == nil {
		return Position{}, apperrors.ErrHoldingNotFound
	}

	return Position{
		Quantity:       cur.Quantity + qty,
		AvgCostPerUnit: cur.AvgCostPerUnit,
		LastBuyDate:    cur.LastBuyDate,
	}, nil
}

// RebuildFromBuys recomputes a position from the remaining buy lots after a
// buy is deleted. Unlike a sell, a buy's removal has no simple inverse: the
// weighted average mixes cost layers irreversibly, so the position is rebuilt
// from the surviving buy set. Returns nil when no buys remain.
//
// Known limitation: the rebuild considers buys only. Sells recorded after the
// deleted buy are not replayed, so the rebuilt quantity can exceed the true
// remaining position. The audit job reports such divergence; the write path
// deliberately does not correct it.
func RebuildFromBuys(lots []BuyLot) *Position {
	if len(lots) == 0 {
		return nil
	}

	var totalQty int64
	totalCost := decimal.Zero
	var lastBuyDate time.Time

	for _, lot := range lots {
		totalQty += lot.Quantity
		totalCost = totalCost.Add(lot.PricePerUnit.Mul(decimal.NewFromInt(lot.Quantity)))
		if lot.TradeDate.After(lastBuyDate) {
			lastBuyDate = lot.TradeDate
		}
	}

	return &Position{
		Quantity:       totalQty,
		AvgCostPerUnit: totalCost.Div(decimal.NewFromInt(totalQty)),
		LastBuyDate:    lastBuyDate,
	}
}
