package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Wafflinyo/USALeague/internal/catalog"
	"github.com/Wafflinyo/USALeague/internal/feed"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// ShopService handles catalog purchases against the ledger.
type ShopService struct {
	pool      *pgxpool.Pool
	accounts  *repository.AccountRepository
	inventory *repository.InventoryRepository
	sales     feed.SaleTable
}

// NewShopService creates a new ShopService instance.
func NewShopService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	inventory *repository.InventoryRepository,
	sales feed.SaleTable,
) *ShopService {
	return &ShopService{
		pool:      pool,
		accounts:  accounts,
		inventory: inventory,
		sales:     sales,
	}
}

// PurchaseResult is the outcome of a successful purchase.
type PurchaseResult struct {
	ItemID     string `json:"itemId"`
	FinalPrice int64  `json:"finalPrice"`
	NewQty     int    `json:"qty"`
	Balance    int64  `json:"coinsAfter"`
}

// PricedItem is a catalog entry with its current sale-adjusted price, for
// the shop listing.
type PricedItem struct {
	catalog.Item
	Discount   float64 `json:"discount"`
	FinalPrice int64   `json:"finalPrice"`
}

// ListItems returns the catalog with current sale prices applied.
func (s *ShopService) ListItems(ctx context.Context) []PricedItem {
	items := catalog.AllItems()
	out := make([]PricedItem, 0, len(items))
	for _, it := range items {
		d := s.discountFor(ctx, it.ID)
		out = append(out, PricedItem{
			Item:       it,
			Discount:   d,
			FinalPrice: catalog.FinalPrice(it.BasePrice, d),
		})
	}
	return out
}

// Purchase debits the sale-adjusted price and grants the item. Price
// check, debit and inventory grant happen inside one transaction under
// the account row lock, so racing purchases can't oversell a stack or
// spend below zero.
func (s *ShopService) Purchase(ctx context.Context, accountID, itemID string) (*PurchaseResult, error) {
	if itemID == "" {
		return nil, apperror.InvalidInput("itemId is required")
	}

	item, ok := catalog.GetItem(itemID)
	if !ok {
		return nil, apperror.NotFound("shop item not found")
	}

	finalPrice := catalog.FinalPrice(item.BasePrice, s.discountFor(ctx, itemID))

	var result *PurchaseResult
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return apperror.FailedPrecondition("account profile missing")
			}
			return err
		}

		if acct.Balance < finalPrice {
			return apperror.InsufficientFunds("")
		}

		prevQty, owned, err := s.inventory.GetQtyForUpdate(ctx, tx, accountID, itemID)
		if err != nil {
			return err
		}

		if !item.Stackable && owned {
			return apperror.AlreadyOwned("")
		}
		maxStack := item.EffectiveMaxStack()
		if item.Stackable && prevQty >= maxStack {
			return apperror.StackLimitReached(fmt.Sprintf("max stack reached (%d)", maxStack))
		}

		balance, err := s.accounts.AdjustBalance(ctx, tx, accountID, -finalPrice)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientFunds) {
				return apperror.InsufficientFunds("")
			}
			return err
		}

		newQty := prevQty + 1
		if err := s.inventory.Upsert(ctx, tx, accountID, itemID, newQty); err != nil {
			return err
		}

		result = &PurchaseResult{
			ItemID:     itemID,
			FinalPrice: finalPrice,
			NewQty:     newQty,
			Balance:    balance,
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("purchase failed: %w", err)
	}

	return result, nil
}

// discountFor resolves the current sale discount. A failing feed means no
// discount rather than a failed purchase.
func (s *ShopService) discountFor(ctx context.Context, itemID string) float64 {
	d, err := s.sales.Discount(ctx, itemID)
	if err != nil {
		log.Warn().Err(err).Str("item", itemID).Msg("sale table lookup failed, selling at base price")
		return 0
	}
	return catalog.ClampDiscount(d)
}
