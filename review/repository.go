package review

import "context"

// Repository is the review persistence contract. GetReviewByID returns
// (nil, nil) when no row matches; list finders return empty slices.
type Repository interface {
	GetAllReviews(ctx context.Context) ([]*Review, error)
	GetReviewsByListingID(ctx context.Context, listingID string) ([]*Review, error)
	GetReviewsByTargetID(ctx context.Context, targetID string) ([]*Review, error)
	GetReviewsByReviewerID(ctx context.Context, reviewerID string) ([]*Review, error)
	GetReviewByID(ctx context.Context, id string) (*Review, error)
	CreateReview(ctx context.Context, r *Review) (*Review, error)
	UpdateReview(ctx context.Context, r *Review) (*Review, error)
	DeleteReview(ctx context.Context, r *Review) error
}
