package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/shared"
)

// Apply records one signed stock change on a product value and returns
// the updated product. The resulting quantity must not go negative, and
// the new history entry is prepended with the list trimmed to
// HistoryCap, dropping the oldest entries first.
func Apply(p Product, delta int, reason ChangeReason, actor shared.Actor, referenceID string, now time.Time) (Product, error) {
	newStock := p.Stock + delta
	if newStock < 0 {
		return Product{}, ErrInsufficientStock
	}
	entry := HistoryEntry{
		ID:           uuid.NewString(),
		Timestamp:    now,
		ChangeAmount: delta,
		NewStock:     newStock,
		Reason:       reason,
		ReferenceID:  referenceID,
		UserID:       actor.ID,
		UserName:     actor.Name,
	}
	history := make([]HistoryEntry, 0, len(p.History)+1)
	history = append(history, entry)
	history = append(history, p.History...)
	if len(history) > HistoryCap {
		history = history[:HistoryCap]
	}
	p.Stock = newStock
	p.History = history
	return p, nil
}
