package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-marketplace-services/financial"
)

// FinancialRepository implements financial.Repository.
type FinancialRepository struct {
	db *bun.DB
}

var _ financial.Repository = (*FinancialRepository)(nil)

// NewFinancialRepository builds a financial repository over db.
func NewFinancialRepository(db *bun.DB) *FinancialRepository {
	return &FinancialRepository{db: db}
}

func (r *FinancialRepository) FindInstitutionByID(ctx context.Context, id string) (*financial.Institution, error) {
	inst := new(financial.Institution)
	err := r.db.NewSelect().Model(inst).Where("fi.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *FinancialRepository) FindInstitutionByUserID(ctx context.Context, userID string) (*financial.Institution, error) {
	inst := new(financial.Institution)
	err := r.db.NewSelect().Model(inst).Where("user_id = ?", userID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *FinancialRepository) FindAllInstitutions(ctx context.Context) ([]*financial.Institution, error) {
	var insts []*financial.Institution
	if err := r.db.NewSelect().Model(&insts).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return insts, nil
}

func (r *FinancialRepository) CreateInstitution(ctx context.Context, inst *financial.Institution) (*financial.Institution, error) {
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(inst).Exec(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *FinancialRepository) FindProductByID(ctx context.Context, id string) (*financial.Product, error) {
	p := new(financial.Product)
	err := r.db.NewSelect().Model(p).Where("fp.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *FinancialRepository) FindProductsByInstitutionID(ctx context.Context, institutionID string) ([]*financial.Product, error) {
	var products []*financial.Product
	err := r.db.NewSelect().Model(&products).
		Where("institution_id = ?", institutionID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *FinancialRepository) FindAllProducts(ctx context.Context) ([]*financial.Product, error) {
	var products []*financial.Product
	if err := r.db.NewSelect().Model(&products).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *FinancialRepository) CreateProduct(ctx context.Context, p *financial.Product) (*financial.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *FinancialRepository) FindApplicationByID(ctx context.Context, id string) (*financial.Application, error) {
	app := new(financial.Application)
	err := r.db.NewSelect().Model(app).Where("fa.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *FinancialRepository) FindApplicationsByUserID(ctx context.Context, userID string) ([]*financial.Application, error) {
	var apps []*financial.Application
	err := r.db.NewSelect().Model(&apps).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *FinancialRepository) FindAllApplications(ctx context.Context) ([]*financial.Application, error) {
	var apps []*financial.Application
	if err := r.db.NewSelect().Model(&apps).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *FinancialRepository) CreateApplication(ctx context.Context, app *financial.Application) (*financial.Application, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(app).Exec(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *FinancialRepository) UpdateApplication(ctx context.Context, app *financial.Application) (*financial.Application, error) {
	app.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NewUpdate().Model(app).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *FinancialRepository) CheckApplicationStatesByUserID(ctx context.Context, userID string) (bool, error) {
	count, err := r.db.NewSelect().Model((*financial.Application)(nil)).
		Where("user_id = ?", userID).
		Where("status IN (?)", bun.In([]financial.Status{financial.StatusPending, financial.StatusUnderReview})).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
