package review

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-marketplace-services/cache"
	"github.com/goliatone/go-marketplace-services/user"
)

const (
	errListReviews      = "Failed to retrieve reviews"
	errCreateReview     = "Failed to create review"
	errUpdateReview     = "Failed to update review"
	errDeleteReview     = "Failed to delete review"
	errReviewerNotFound = "Reviewer not found"
	errReviewNotFound   = "Review not found"
)

// Service orchestrates review reads and writes between the cache and the
// repository. Authorization beyond existence checks belongs to the
// controller layer.
type Service struct {
	repo   Repository
	users  user.Store
	cache  cache.Service
	logger *slog.Logger
}

// NewService builds a review service. A nil logger falls back to
// slog.Default.
func NewService(repo Repository, users user.Store, cacheService cache.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		users:  users,
		cache:  cacheService,
		logger: logger,
	}
}

// GetAllReviews returns every review, cached under cache.ReviewsAllKey.
func (s *Service) GetAllReviews(ctx context.Context) ListResult {
	return s.cachedList(ctx, cache.ReviewsAllKey(), func(ctx context.Context) ([]*Review, error) {
		return s.repo.GetAllReviews(ctx)
	})
}

// GetReviewsByTarget returns the reviews aimed at one target, cached under
// cache.ReviewTargetKey.
func (s *Service) GetReviewsByTarget(ctx context.Context, targetID string) ListResult {
	return s.cachedList(ctx, cache.ReviewTargetKey(targetID), func(ctx context.Context) ([]*Review, error) {
		return s.repo.GetReviewsByTargetID(ctx, targetID)
	})
}

// GetReviewsByListing returns the reviews linked to one listing, cached
// under cache.ReviewListingKey.
func (s *Service) GetReviewsByListing(ctx context.Context, listingID string) ListResult {
	return s.cachedList(ctx, cache.ReviewListingKey(listingID), func(ctx context.Context) ([]*Review, error) {
		return s.repo.GetReviewsByListingID(ctx, listingID)
	})
}

// GetReviewsByReviewer returns the reviews a user wrote. Reviewer-scoped
// lists are not part of the cache key scheme, so this read is uncached.
func (s *Service) GetReviewsByReviewer(ctx context.Context, reviewerID string) ListResult {
	reviews, err := s.repo.GetReviewsByReviewerID(ctx, reviewerID)
	if err != nil {
		s.logger.Error("review: reviewer list failed", "reviewer_id", reviewerID, "error", err)
		return ListResult{Error: errListReviews}
	}
	return ListResult{Success: true, Reviews: reviews}
}

// CreateReview stores a review after verifying the reviewer exists. No
// repository write happens when the reviewer is missing.
func (s *Service) CreateReview(ctx context.Context, input CreateInput) Result {
	if err := input.Validate(); err != nil {
		return Result{Error: err.Error()}
	}

	reviewer, err := s.users.FindByID(ctx, input.ReviewerID)
	if err != nil {
		s.logger.Error("review: reviewer lookup failed", "reviewer_id", input.ReviewerID, "error", err)
		return Result{Error: errCreateReview}
	}
	if reviewer == nil {
		return Result{Error: errReviewerNotFound}
	}

	created, err := s.repo.CreateReview(ctx, &Review{
		ReviewerID:  input.ReviewerID,
		TargetID:    input.TargetID,
		ListingID:   input.ListingID,
		OrderID:     input.OrderID,
		TestDriveID: input.TestDriveID,
		Rating:      input.Rating,
		Title:       input.Title,
		Comment:     input.Comment,
	})
	if err != nil {
		s.logger.Error("review: create failed", "reviewer_id", input.ReviewerID, "error", err)
		return Result{Error: errCreateReview}
	}

	s.invalidate(ctx, created)
	return Result{Success: true, Review: created}
}

// UpdateReview applies a partial update to an existing review.
func (s *Service) UpdateReview(ctx context.Context, id string, input UpdateInput) Result {
	if err := input.Validate(); err != nil {
		return Result{Error: err.Error()}
	}

	existing, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		s.logger.Error("review: lookup failed", "review_id", id, "error", err)
		return Result{Error: errUpdateReview}
	}
	if existing == nil {
		return Result{Error: errReviewNotFound}
	}

	if input.Rating != 0 {
		existing.Rating = input.Rating
	}
	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Comment != "" {
		existing.Comment = input.Comment
	}

	updated, err := s.repo.UpdateReview(ctx, existing)
	if err != nil {
		s.logger.Error("review: update failed", "review_id", id, "error", err)
		return Result{Error: errUpdateReview}
	}

	s.invalidate(ctx, updated)
	return Result{Success: true, Review: updated}
}

// DeleteReview removes an existing review.
func (s *Service) DeleteReview(ctx context.Context, id string) StatusResult {
	existing, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		s.logger.Error("review: lookup failed", "review_id", id, "error", err)
		return StatusResult{Error: errDeleteReview}
	}
	if existing == nil {
		return StatusResult{Error: errReviewNotFound}
	}

	if err := s.repo.DeleteReview(ctx, existing); err != nil {
		s.logger.Error("review: delete failed", "review_id", id, "error", err)
		return StatusResult{Error: errDeleteReview}
	}

	s.invalidate(ctx, existing)
	return StatusResult{Success: true}
}

func (s *Service) cachedList(ctx context.Context, key string, fetch cache.FetchFn[[]*Review]) ListResult {
	reviews, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]*Review, error) {
		list, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []*Review{}
		}
		return list, nil
	})
	if err != nil {
		s.logger.Error("review: list failed", "key", key, "error", err)
		return ListResult{Error: errListReviews}
	}
	return ListResult{Success: true, Reviews: reviews}
}

// invalidate deletes the collection keys the review appears under: always
// the all-reviews key and the target key, plus the listing key when linked.
func (s *Service) invalidate(ctx context.Context, r *Review) {
	keys := []string{cache.ReviewsAllKey(), cache.ReviewTargetKey(r.TargetID)}
	if r.ListingID != "" {
		keys = append(keys, cache.ReviewListingKey(r.ListingID))
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("review: cache invalidation failed", "key", key, "error", err)
		}
	}
}
