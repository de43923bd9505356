package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-marketplace-services/cache"
	"github.com/goliatone/go-marketplace-services/internal/keymutex"
)

// Failure messages surfaced to callers. Infrastructure errors are logged
// with their cause and mapped to the generic message for the operation.
const (
	errRetrieveCart     = "Failed to retrieve cart"
	errAddItem          = "Failed to add item to cart"
	errUpdateItem       = "Failed to update cart item"
	errRemoveItem       = "Failed to remove item from cart"
	errClearCart        = "Failed to clear cart"
	errQuantityRequired = "Quantity must be provided"
	errItemNotFound     = "Cart item not found"
	errCartNotFound     = "Cart not found"
)

// Service orchestrates cart reads and writes between the cache and the
// repository. Every operation returns a result object; no repository error
// escapes to the caller.
type Service struct {
	repo   Repository
	cache  cache.Service
	locks  *keymutex.Mutex
	logger *slog.Logger
}

// NewService builds a cart service. A nil logger falls back to slog.Default.
func NewService(repo Repository, cacheService cache.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cacheService,
		locks:  keymutex.New(),
		logger: logger,
	}
}

// GetCart returns the user's cart and items, creating the cart on first
// access. The composite view is cached under cache.CartKey(userID).
func (s *Service) GetCart(ctx context.Context, userID string) Result {
	view, err := cache.GetOrFetch(ctx, s.cache, cache.CartKey(userID), func(ctx context.Context) (*View, error) {
		return s.loadView(ctx, userID)
	})
	if err != nil {
		s.logger.Error("cart: retrieve failed", "user_id", userID, "error", err)
		return Result{Error: errRetrieveCart}
	}
	return Result{Success: true, Cart: view}
}

// AddItem places a listing in the user's cart, creating the cart when
// needed. A listing already in the cart is rejected before any write.
func (s *Service) AddItem(ctx context.Context, input AddItemInput) ItemResult {
	if err := input.Validate(); err != nil {
		return ItemResult{Error: err.Error()}
	}

	// The duplicate check and the insert are serialized per cart key within
	// this process. The unique index on (cart_id, listing_id) covers
	// concurrent writers in other processes.
	unlock := s.locks.Lock(cache.CartKey(input.UserID))
	defer unlock()

	owner, err := s.resolveCart(ctx, input.UserID)
	if err != nil {
		s.logger.Error("cart: resolve failed", "user_id", input.UserID, "error", err)
		return ItemResult{Error: errAddItem}
	}

	existing, err := s.repo.FindCartItemByListing(ctx, owner.ID, input.ListingID)
	if err != nil {
		s.logger.Error("cart: duplicate check failed", "cart_id", owner.ID, "error", err)
		return ItemResult{Error: errAddItem}
	}
	if existing != nil {
		return ItemResult{Error: fmt.Sprintf("Listing %s is already in your cart", input.ListingID)}
	}

	item, err := s.repo.AddCartItem(ctx, &Item{
		CartID:    owner.ID,
		ListingID: input.ListingID,
		Quantity:  input.Quantity,
	})
	if err != nil {
		s.logger.Error("cart: add item failed", "cart_id", owner.ID, "listing_id", input.ListingID, "error", err)
		return ItemResult{Error: errAddItem}
	}

	s.invalidate(ctx, input.UserID)
	return ItemResult{Success: true, Item: item}
}

// UpdateItem changes the quantity of an existing cart item. The owning cart
// is resolved uncached to compute the invalidation key from current state.
func (s *Service) UpdateItem(ctx context.Context, itemID string, input UpdateItemInput) ItemResult {
	if err := input.Validate(); err != nil {
		return ItemResult{Error: errQuantityRequired}
	}

	item, err := s.repo.FindCartItemByID(ctx, itemID)
	if err != nil {
		s.logger.Error("cart: item lookup failed", "item_id", itemID, "error", err)
		return ItemResult{Error: errUpdateItem}
	}
	if item == nil {
		return ItemResult{Error: errItemNotFound}
	}

	owner, err := s.repo.FindCartByID(ctx, item.CartID)
	if err != nil || owner == nil {
		s.logger.Error("cart: owner lookup failed", "item_id", itemID, "cart_id", item.CartID, "error", err)
		return ItemResult{Error: errUpdateItem}
	}

	item.Quantity = input.Quantity
	updated, err := s.repo.UpdateCartItem(ctx, item)
	if err != nil {
		s.logger.Error("cart: update item failed", "item_id", itemID, "error", err)
		return ItemResult{Error: errUpdateItem}
	}

	s.invalidate(ctx, owner.UserID)
	return ItemResult{Success: true, Item: updated}
}

// RemoveItem deletes a cart item and invalidates the owning user's view.
func (s *Service) RemoveItem(ctx context.Context, itemID string) StatusResult {
	item, err := s.repo.FindCartItemByID(ctx, itemID)
	if err != nil {
		s.logger.Error("cart: item lookup failed", "item_id", itemID, "error", err)
		return StatusResult{Error: errRemoveItem}
	}
	if item == nil {
		return StatusResult{Error: errItemNotFound}
	}

	owner, err := s.repo.FindCartByID(ctx, item.CartID)
	if err != nil || owner == nil {
		s.logger.Error("cart: owner lookup failed", "item_id", itemID, "cart_id", item.CartID, "error", err)
		return StatusResult{Error: errRemoveItem}
	}

	if err := s.repo.RemoveCartItem(ctx, item); err != nil {
		s.logger.Error("cart: remove item failed", "item_id", itemID, "error", err)
		return StatusResult{Error: errRemoveItem}
	}

	s.invalidate(ctx, owner.UserID)
	return StatusResult{Success: true}
}

// ClearCart removes every item from the user's cart.
func (s *Service) ClearCart(ctx context.Context, userID string) StatusResult {
	owner, err := s.repo.FindCartByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("cart: lookup failed", "user_id", userID, "error", err)
		return StatusResult{Error: errClearCart}
	}
	if owner == nil {
		return StatusResult{Error: errCartNotFound}
	}

	if err := s.repo.ClearCart(ctx, owner.ID); err != nil {
		s.logger.Error("cart: clear failed", "cart_id", owner.ID, "error", err)
		return StatusResult{Error: errClearCart}
	}

	s.invalidate(ctx, userID)
	return StatusResult{Success: true}
}

// loadView is the cache producer for GetCart.
func (s *Service) loadView(ctx context.Context, userID string) (*View, error) {
	owner, err := s.resolveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindCartItems(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}

	return &View{Cart: owner, Items: items}, nil
}

// resolveCart finds the user's cart, creating it on first access. Always an
// uncached read: write paths need the key computed from current state.
func (s *Service) resolveCart(ctx context.Context, userID string) (*Cart, error) {
	owner, err := s.repo.FindCartByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return owner, nil
	}
	return s.repo.CreateCart(ctx, &Cart{UserID: userID})
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, cache.CartKey(userID)); err != nil {
		s.logger.Warn("cart: cache invalidation failed", "user_id", userID, "error", err)
	}
}
