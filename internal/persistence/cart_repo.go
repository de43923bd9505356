package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-marketplace-services/cart"
)

// CartRepository implements cart.Repository.
type CartRepository struct {
	db *bun.DB
}

var _ cart.Repository = (*CartRepository)(nil)

// NewCartRepository builds a cart repository over db.
func NewCartRepository(db *bun.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindCartByUserID(ctx context.Context, userID string) (*cart.Cart, error) {
	c := new(cart.Cart)
	err := r.db.NewSelect().Model(c).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CartRepository) FindCartByID(ctx context.Context, id string) (*cart.Cart, error) {
	c := new(cart.Cart)
	err := r.db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CartRepository) CreateCart(ctx context.Context, c *cart.Cart) (*cart.Cart, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CartRepository) FindCartItems(ctx context.Context, cartID string) ([]*cart.Item, error) {
	var items []*cart.Item
	if err := r.db.NewSelect().Model(&items).Where("cart_id = ?", cartID).Scan(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepository) FindCartItemByListing(ctx context.Context, cartID, listingID string) (*cart.Item, error) {
	item := new(cart.Item)
	err := r.db.NewSelect().Model(item).
		Where("cart_id = ?", cartID).
		Where("listing_id = ?", listingID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) FindCartItemByID(ctx context.Context, id string) (*cart.Item, error) {
	item := new(cart.Item)
	err := r.db.NewSelect().Model(item).Where("ci.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) AddCartItem(ctx context.Context, item *cart.Item) (*cart.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) UpdateCartItem(ctx context.Context, item *cart.Item) (*cart.Item, error) {
	if _, err := r.db.NewUpdate().Model(item).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) RemoveCartItem(ctx context.Context, item *cart.Item) error {
	_, err := r.db.NewDelete().Model(item).WherePK().Exec(ctx)
	return err
}

func (r *CartRepository) ClearCart(ctx context.Context, cartID string) error {
	_, err := r.db.NewDelete().Model((*cart.Item)(nil)).Where("cart_id = ?", cartID).Exec(ctx)
	return err
}
