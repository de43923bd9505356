// Package cart implements the shopping cart domain service: cache-aside
// reads of the per-user cart view, lazy cart creation, and the one-item-per
// listing invariant.
package cart

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Cart is a user's shopping cart. A user has at most one.
type Cart struct {
	bun.BaseModel `bun:"table:carts,alias:c"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull,unique" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Item is a listing placed in a cart. The (cart, listing) pair is unique.
type Item struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci"`

	ID        string `bun:"id,pk" json:"id"`
	CartID    string `bun:"cart_id,notnull,unique:cart_items_cart_listing" json:"cart_id"`
	ListingID string `bun:"listing_id,notnull,unique:cart_items_cart_listing" json:"listing_id"`
	Quantity  int    `bun:"quantity,notnull" json:"quantity"`
}

// View is the composite cached under cache.CartKey(userID): the cart plus
// its items, loaded as a unit so a cached read is internally consistent.
type View struct {
	Cart  *Cart   `json:"cart"`
	Items []*Item `json:"items"`
}

// AddItemInput carries the request to place a listing in a user's cart.
type AddItemInput struct {
	UserID    string `json:"user_id"`
	ListingID string `json:"listing_id"`
	Quantity  int    `json:"quantity"`
}

// Validate implements the validation.Validatable interface.
func (i AddItemInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.ListingID, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

// UpdateItemInput carries a quantity change for an existing cart item.
type UpdateItemInput struct {
	Quantity int `json:"quantity"`
}

// Validate implements the validation.Validatable interface. A zero quantity
// counts as absent.
func (i UpdateItemInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
	)
}

// Result is the outcome of cart view operations.
type Result struct {
	Success bool   `json:"success"`
	Cart    *View  `json:"cart,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ItemResult is the outcome of single-item operations.
type ItemResult struct {
	Success bool   `json:"success"`
	Item    *Item  `json:"item,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResult is the outcome of operations with no entity payload.
type StatusResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
