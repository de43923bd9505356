package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-marketplace-services/user"
)

// UserRepository implements user.Store.
type UserRepository struct {
	db *bun.DB
}

var _ user.Store = (*UserRepository)(nil)

// NewUserRepository builds a user store over db.
func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. Account provisioning is outside the service layer,
// so this is not part of user.Store; seeding and demos use it directly.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(u).Exec(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	u := new(user.User)
	err := r.db.NewSelect().Model(u).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u := new(user.User)
	err := r.db.NewSelect().Model(u).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	if err := r.db.NewSelect().Model(&users).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	_, err := r.db.NewUpdate().Model(u).WherePK().Exec(ctx)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.NewDelete().Model((*user.User)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}
