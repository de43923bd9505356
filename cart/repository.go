package cart

import "context"

// Repository is the cart persistence contract. It owns no caching or
// invariant logic. Finders return (nil, nil) when no row matches; errors are
// reserved for infrastructure failures.
type Repository interface {
	FindCartByUserID(ctx context.Context, userID string) (*Cart, error)
	FindCartByID(ctx context.Context, id string) (*Cart, error)
	CreateCart(ctx context.Context, c *Cart) (*Cart, error)

	FindCartItems(ctx context.Context, cartID string) ([]*Item, error)
	FindCartItemByListing(ctx context.Context, cartID, listingID string) (*Item, error)
	FindCartItemByID(ctx context.Context, id string) (*Item, error)
	AddCartItem(ctx context.Context, item *Item) (*Item, error)
	UpdateCartItem(ctx context.Context, item *Item) (*Item, error)
	RemoveCartItem(ctx context.Context, item *Item) error
	ClearCart(ctx context.Context, cartID string) error
}
