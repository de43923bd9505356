// Package review implements the review domain service: cached collection
// reads keyed by target and listing, and reviewer-existence gating on
// creation.
package review

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// Review is a rating left by a user against a seller or listing target,
// optionally linked to the order or test drive that earned it.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID          string    `bun:"id,pk" json:"id"`
	ReviewerID  string    `bun:"reviewer_id,notnull" json:"reviewer_id"`
	TargetID    string    `bun:"target_id,notnull" json:"target_id"`
	ListingID   string    `bun:"listing_id,nullzero" json:"listing_id,omitempty"`
	OrderID     string    `bun:"order_id,nullzero" json:"order_id,omitempty"`
	TestDriveID string    `bun:"test_drive_id,nullzero" json:"test_drive_id,omitempty"`
	Rating      int       `bun:"rating,notnull" json:"rating"`
	Title       string    `bun:"title,notnull" json:"title"`
	Comment     string    `bun:"comment" json:"comment"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// CreateInput carries a new review.
type CreateInput struct {
	ReviewerID  string `json:"reviewer_id"`
	TargetID    string `json:"target_id"`
	ListingID   string `json:"listing_id"`
	OrderID     string `json:"order_id"`
	TestDriveID string `json:"test_drive_id"`
	Rating      int    `json:"rating"`
	Title       string `json:"title"`
	Comment     string `json:"comment"`
}

// Validate implements the validation.Validatable interface.
func (i CreateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ReviewerID, validation.Required),
		validation.Field(&i.TargetID, validation.Required),
		validation.Field(&i.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&i.Title, validation.Required),
	)
}

// UpdateInput carries a partial review update; zero fields are left as-is.
type UpdateInput struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// Validate implements the validation.Validatable interface.
func (i UpdateInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Rating, validation.Min(1), validation.Max(5)),
	)
}

// Result is the outcome of single-review operations.
type Result struct {
	Success bool    `json:"success"`
	Review  *Review `json:"review,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ListResult is the outcome of collection reads.
type ListResult struct {
	Success bool      `json:"success"`
	Reviews []*Review `json:"reviews,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// StatusResult is the outcome of operations with no entity payload.
type StatusResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
