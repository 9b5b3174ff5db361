package stock

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/repository/store"
	"github.com/mamadbah2/oilledger/internal/service/aggregation"
)

// Opening policy names accepted by NewOpeningPolicy.
const (
	PolicyZero         = "zero"
	PolicyCarryForward = "carry_forward"
	PolicyRandom       = "random"
)

// OpeningPolicy seeds the opening quantity of a day's entry created by a write
// to another field.
type OpeningPolicy interface {
	Opening(ctx context.Context, productID int64, date string) (int, error)
}

// NewOpeningPolicy resolves a policy by name.
func NewOpeningPolicy(name string, st store.Store) (OpeningPolicy, error) {
	switch name {
	case "", PolicyZero:
		return ZeroOpening{}, nil
	case PolicyCarryForward:
		return CarryForward{Store: st}, nil
	case PolicyRandom:
		return RandomOpening{}, nil
	default:
		return nil, fmt.Errorf("unknown opening policy %q", name)
	}
}

// ZeroOpening starts every new day at zero and expects explicit opening entry.
type ZeroOpening struct{}

func (ZeroOpening) Opening(context.Context, int64, string) (int, error) { return 0, nil }

// CarryForward opens a day with the closing stock of the product's most recent
// earlier day. Negative closings carry as zero.
type CarryForward struct {
	Store store.Store
}

func (c CarryForward) Opening(ctx context.Context, productID int64, date string) (int, error) {
	var entries []models.DailyStockEntry
	if err := c.Store.Find(ctx, store.StockLog, store.Filter{"productId": productID}, &entries); err != nil {
		return 0, fmt.Errorf("load stock history of product %d: %w", productID, err)
	}

	var prior *models.DailyStockEntry
	for i := range entries {
		// ISO dates order lexically.
		if entries[i].Date >= date {
			continue
		}
		if prior == nil || entries[i].Date > prior.Date {
			prior = &entries[i]
		}
	}
	if prior == nil {
		return 0, nil
	}

	return max(aggregation.ClosingStock(*prior), 0), nil
}

// RandomOpening reproduces the demo seeding of 5 to 34 units. Not for
// production ledgers.
type RandomOpening struct{}

func (RandomOpening) Opening(context.Context, int64, string) (int, error) {
	return rand.IntN(30) + 5, nil
}
