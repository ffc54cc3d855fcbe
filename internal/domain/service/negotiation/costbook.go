package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"trade_pilot/internal/domain/entity"
	"trade_pilot/internal/domain/service/namematch"
)

const holdingCacheTTL = 10 * time.Minute

// CostBasis resolves what one unit of an item cost us.
type CostBasis interface {
	CostBasis(ctx context.Context, itemName string) (float64, bool, error)
}

// CostBook answers with the ledger WAPP and falls back to the catalog
// reference price of the best matching item.
type CostBook struct {
	ledger  Ledger
	catalog []entity.Item
	matcher namematch.Matcher
	cache   *cache.Cache
}

func NewCostBook(ledger Ledger, catalog []entity.Item) *CostBook {
	return &CostBook{
		ledger:  ledger,
		catalog: catalog,
		matcher: namematch.NewMatcher(namematch.DefaultThreshold),
		cache:   cache.New(holdingCacheTTL, 2*holdingCacheTTL),
	}
}

func (b *CostBook) WithMatcher(m namematch.Matcher) *CostBook {
	b.matcher = m
	return b
}

func (b *CostBook) CostBasis(ctx context.Context, itemName string) (float64, bool, error) {
	h, err := b.holding(ctx, itemName)
	if err != nil {
		return 0, false, err
	}
	if h.TotalQuantity > 0 {
		return h.WAPP(), true, nil
	}

	if item, ok := b.lookup(itemName); ok {
		return float64(item.TargetPrice), true, nil
	}
	return 0, false, nil
}

func (b *CostBook) holding(ctx context.Context, itemName string) (entity.Holding, error) {
	key := namematch.Normalize(itemName)
	if cached, ok := b.cache.Get(key); ok {
		return cached.(entity.Holding), nil
	}

	h, err := b.ledger.Holding(ctx, itemName)
	if err != nil {
		return entity.Holding{}, fmt.Errorf("ledger holding %q: %w", itemName, err)
	}

	b.cache.SetDefault(key, h)
	return h, nil
}

// lookup picks the catalog item whose name matches best, the first one on
// ties.
func (b *CostBook) lookup(itemName string) (entity.Item, bool) {
	var (
		best      entity.Item
		bestScore float64
		found     bool
	)
	for _, item := range b.catalog {
		score, ok := b.matcher.Match(itemName, item.Name)
		if ok && score > bestScore {
			best, bestScore, found = item, score, true
		}
	}
	return best, found
}
