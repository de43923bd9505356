package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-marketplace-services/review"
)

// ReviewRepository implements review.Repository.
type ReviewRepository struct {
	db *bun.DB
}

var _ review.Repository = (*ReviewRepository)(nil)

// NewReviewRepository builds a review repository over db.
func NewReviewRepository(db *bun.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) GetAllReviews(ctx context.Context) ([]*review.Review, error) {
	var reviews []*review.Review
	if err := r.db.NewSelect().Model(&reviews).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) GetReviewsByListingID(ctx context.Context, listingID string) ([]*review.Review, error) {
	return r.list(ctx, "listing_id", listingID)
}

func (r *ReviewRepository) GetReviewsByTargetID(ctx context.Context, targetID string) ([]*review.Review, error) {
	return r.list(ctx, "target_id", targetID)
}

func (r *ReviewRepository) GetReviewsByReviewerID(ctx context.Context, reviewerID string) ([]*review.Review, error) {
	return r.list(ctx, "reviewer_id", reviewerID)
}

func (r *ReviewRepository) GetReviewByID(ctx context.Context, id string) (*review.Review, error) {
	rv := new(review.Review)
	err := r.db.NewSelect().Model(rv).Where("r.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rv *review.Review) (*review.Review, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = now
	}
	rv.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(rv).Exec(ctx); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *ReviewRepository) UpdateReview(ctx context.Context, rv *review.Review) (*review.Review, error) {
	rv.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NewUpdate().Model(rv).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, rv *review.Review) error {
	_, err := r.db.NewDelete().Model(rv).WherePK().Exec(ctx)
	return err
}

func (r *ReviewRepository) list(ctx context.Context, column, value string) ([]*review.Review, error) {
	var reviews []*review.Review
	err := r.db.NewSelect().Model(&reviews).
		Where("? = ?", bun.Ident(column), value).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
