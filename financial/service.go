package financial

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-marketplace-services/cache"
	"github.com/goliatone/go-marketplace-services/internal/keymutex"
	"github.com/goliatone/go-marketplace-services/user"
)

const (
	errCreateInstitution   = "Failed to create institution"
	errListInstitutions    = "Failed to retrieve institutions"
	errCreateProduct       = "Failed to create product"
	errListProducts        = "Failed to retrieve products"
	errCreateApplication   = "Failed to create application"
	errUpdateApplication   = "Failed to update application"
	errListApplications    = "Failed to retrieve applications"
	errUserNotFound        = "User not found"
	errInstitutionExists   = "User already has an institution"
	errInstitutionNotFound = "Institution not found"
	errProductNotFound     = "Product not found"
	errProductInactive     = "Product is not active"
	errApplicationOpen     = "You already have an open application"
	errApplicationNotFound = "Application not found"
)

// Service orchestrates the institution, product, and application lifecycles
// between the cache and the repository.
type Service struct {
	repo   Repository
	users  user.Store
	cache  cache.Service
	locks  *keymutex.Mutex
	logger *slog.Logger
}

// NewService builds a financial service. A nil logger falls back to
// slog.Default.
func NewService(repo Repository, users user.Store, cacheService cache.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		users:  users,
		cache:  cacheService,
		locks:  keymutex.New(),
		logger: logger,
	}
}

// CreateInstitution registers a lender for a user and promotes the user's
// role set. A user owns at most one institution.
func (s *Service) CreateInstitution(ctx context.Context, input CreateInstitutionInput) InstitutionResult {
	if err := input.Validate(); err != nil {
		return InstitutionResult{Error: err.Error()}
	}

	// Uniqueness check and insert serialized per user in this process; the
	// unique index on institutions.user_id covers other processes.
	unlock := s.locks.Lock("institution_user_" + input.UserID)
	defer unlock()

	owner, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		s.logger.Error("financial: user lookup failed", "user_id", input.UserID, "error", err)
		return InstitutionResult{Error: errCreateInstitution}
	}
	if owner == nil {
		return InstitutionResult{Error: errUserNotFound}
	}

	existing, err := s.repo.FindInstitutionByUserID(ctx, input.UserID)
	if err != nil {
		s.logger.Error("financial: institution lookup failed", "user_id", input.UserID, "error", err)
		return InstitutionResult{Error: errCreateInstitution}
	}
	if existing != nil {
		return InstitutionResult{Error: errInstitutionExists}
	}

	created, err := s.repo.CreateInstitution(ctx, &Institution{
		UserID:       input.UserID,
		Name:         input.Name,
		Type:         input.Type,
		ContactEmail: input.ContactEmail,
	})
	if err != nil {
		s.logger.Error("financial: create institution failed", "user_id", input.UserID, "error", err)
		return InstitutionResult{Error: errCreateInstitution}
	}

	if !owner.Roles.Has(user.RoleFinancialInstitution) {
		owner.Roles = owner.Roles.Add(user.RoleFinancialInstitution)
		if err := s.users.Update(ctx, owner); err != nil {
			// The institution write already succeeded; surface the role
			// failure in the logs and keep going.
			s.logger.Error("financial: role promotion failed", "user_id", input.UserID, "error", err)
		}
	}

	s.invalidate(ctx, cache.InstitutionsAllKey(), cache.InstitutionKey(created.ID))
	return InstitutionResult{Success: true, Institution: created}
}

// GetInstitutionByID returns one institution, cached under
// cache.InstitutionKey.
func (s *Service) GetInstitutionByID(ctx context.Context, id string) InstitutionResult {
	inst, err := cache.GetOrFetch(ctx, s.cache, cache.InstitutionKey(id), func(ctx context.Context) (*Institution, error) {
		return s.repo.FindInstitutionByID(ctx, id)
	})
	if err != nil {
		s.logger.Error("financial: institution read failed", "institution_id", id, "error", err)
		return InstitutionResult{Error: errListInstitutions}
	}
	if inst == nil {
		return InstitutionResult{Error: errInstitutionNotFound}
	}
	return InstitutionResult{Success: true, Institution: inst}
}

// GetAllInstitutions returns every institution, cached under
// cache.InstitutionsAllKey.
func (s *Service) GetAllInstitutions(ctx context.Context) InstitutionListResult {
	list, err := cache.GetOrFetch(ctx, s.cache, cache.InstitutionsAllKey(), func(ctx context.Context) ([]*Institution, error) {
		insts, err := s.repo.FindAllInstitutions(ctx)
		if err != nil {
			return nil, err
		}
		if insts == nil {
			insts = []*Institution{}
		}
		return insts, nil
	})
	if err != nil {
		s.logger.Error("financial: institution list failed", "error", err)
		return InstitutionListResult{Error: errListInstitutions}
	}
	return InstitutionListResult{Success: true, Institutions: list}
}

// CreateProduct registers a financing product under an existing institution.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) ProductResult {
	if err := input.Validate(); err != nil {
		return ProductResult{Error: err.Error()}
	}

	inst, err := s.repo.FindInstitutionByID(ctx, input.InstitutionID)
	if err != nil {
		s.logger.Error("financial: institution lookup failed", "institution_id", input.InstitutionID, "error", err)
		return ProductResult{Error: errCreateProduct}
	}
	if inst == nil {
		return ProductResult{Error: errInstitutionNotFound}
	}

	created, err := s.repo.CreateProduct(ctx, &Product{
		InstitutionID: input.InstitutionID,
		Name:          input.Name,
		Type:          input.Type,
		MinRate:       input.MinRate,
		MaxRate:       input.MaxRate,
		Active:        input.Active,
	})
	if err != nil {
		s.logger.Error("financial: create product failed", "institution_id", input.InstitutionID, "error", err)
		return ProductResult{Error: errCreateProduct}
	}

	s.invalidate(ctx, cache.ProductsAllKey(), cache.InstitutionProductsKey(input.InstitutionID))
	return ProductResult{Success: true, Product: created}
}

// GetProductsByInstitution returns an institution's products, cached under
// cache.InstitutionProductsKey.
func (s *Service) GetProductsByInstitution(ctx context.Context, institutionID string) ProductListResult {
	list, err := cache.GetOrFetch(ctx, s.cache, cache.InstitutionProductsKey(institutionID), func(ctx context.Context) ([]*Product, error) {
		products, err := s.repo.FindProductsByInstitutionID(ctx, institutionID)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []*Product{}
		}
		return products, nil
	})
	if err != nil {
		s.logger.Error("financial: product list failed", "institution_id", institutionID, "error", err)
		return ProductListResult{Error: errListProducts}
	}
	return ProductListResult{Success: true, Products: list}
}

// GetAllProducts returns every product, cached under cache.ProductsAllKey.
func (s *Service) GetAllProducts(ctx context.Context) ProductListResult {
	list, err := cache.GetOrFetch(ctx, s.cache, cache.ProductsAllKey(), func(ctx context.Context) ([]*Product, error) {
		products, err := s.repo.FindAllProducts(ctx)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []*Product{}
		}
		return products, nil
	})
	if err != nil {
		s.logger.Error("financial: product list failed", "error", err)
		return ProductListResult{Error: errListProducts}
	}
	return ProductListResult{Success: true, Products: list}
}

// CreateApplication files a financing application. The applicant must exist,
// the product must exist and be active, and the user must not have another
// application still open. Gating is global per user, not per product.
func (s *Service) CreateApplication(ctx context.Context, input CreateApplicationInput) ApplicationResult {
	if err := input.Validate(); err != nil {
		return ApplicationResult{Error: err.Error()}
	}

	// Gate check and insert serialized per user in this process; a second
	// process racing the same user is not covered and is an accepted gap.
	unlock := s.locks.Lock(cache.UserApplicationsKey(input.UserID))
	defer unlock()

	applicant, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		s.logger.Error("financial: user lookup failed", "user_id", input.UserID, "error", err)
		return ApplicationResult{Error: errCreateApplication}
	}
	if applicant == nil {
		return ApplicationResult{Error: errUserNotFound}
	}

	product, err := s.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		s.logger.Error("financial: product lookup failed", "product_id", input.ProductID, "error", err)
		return ApplicationResult{Error: errCreateApplication}
	}
	if product == nil {
		return ApplicationResult{Error: errProductNotFound}
	}
	if !product.Active {
		return ApplicationResult{Error: errProductInactive}
	}

	open, err := s.repo.CheckApplicationStatesByUserID(ctx, input.UserID)
	if err != nil {
		s.logger.Error("financial: application gate check failed", "user_id", input.UserID, "error", err)
		return ApplicationResult{Error: errCreateApplication}
	}
	if open {
		return ApplicationResult{Error: errApplicationOpen}
	}

	created, err := s.repo.CreateApplication(ctx, &Application{
		UserID:     input.UserID,
		ProductID:  input.ProductID,
		Income:     input.Income,
		Amount:     input.Amount,
		TermMonths: input.TermMonths,
		Status:     StatusPending,
	})
	if err != nil {
		s.logger.Error("financial: create application failed", "user_id", input.UserID, "error", err)
		return ApplicationResult{Error: errCreateApplication}
	}

	s.invalidate(ctx, cache.ApplicationsAllKey(), cache.UserApplicationsKey(input.UserID))
	return ApplicationResult{Success: true, Application: created}
}

// UpdateApplicationStatus transitions an application through the state
// machine. Edges out of approved or rejected are refused.
func (s *Service) UpdateApplicationStatus(ctx context.Context, id string, input UpdateStatusInput) ApplicationResult {
	next := Status(input.Status)
	if !next.Valid() {
		return ApplicationResult{Error: fmt.Sprintf("Invalid status %q", input.Status)}
	}

	app, err := s.repo.FindApplicationByID(ctx, id)
	if err != nil {
		s.logger.Error("financial: application lookup failed", "application_id", id, "error", err)
		return ApplicationResult{Error: errUpdateApplication}
	}
	if app == nil {
		return ApplicationResult{Error: errApplicationNotFound}
	}

	if !app.Status.CanTransitionTo(next) {
		return ApplicationResult{Error: fmt.Sprintf("Invalid status transition from %s to %s", app.Status, next)}
	}

	app.Status = next
	updated, err := s.repo.UpdateApplication(ctx, app)
	if err != nil {
		s.logger.Error("financial: update application failed", "application_id", id, "error", err)
		return ApplicationResult{Error: errUpdateApplication}
	}

	s.invalidate(ctx, cache.ApplicationsAllKey(), cache.UserApplicationsKey(updated.UserID))
	return ApplicationResult{Success: true, Application: updated}
}

// GetApplicationsByUser returns a user's applications, cached under
// cache.UserApplicationsKey.
func (s *Service) GetApplicationsByUser(ctx context.Context, userID string) ApplicationListResult {
	list, err := cache.GetOrFetch(ctx, s.cache, cache.UserApplicationsKey(userID), func(ctx context.Context) ([]*Application, error) {
		apps, err := s.repo.FindApplicationsByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if apps == nil {
			apps = []*Application{}
		}
		return apps, nil
	})
	if err != nil {
		s.logger.Error("financial: application list failed", "user_id", userID, "error", err)
		return ApplicationListResult{Error: errListApplications}
	}
	return ApplicationListResult{Success: true, Applications: list}
}

// GetAllApplications returns every application, cached under
// cache.ApplicationsAllKey.
func (s *Service) GetAllApplications(ctx context.Context) ApplicationListResult {
	list, err := cache.GetOrFetch(ctx, s.cache, cache.ApplicationsAllKey(), func(ctx context.Context) ([]*Application, error) {
		apps, err := s.repo.FindAllApplications(ctx)
		if err != nil {
			return nil, err
		}
		if apps == nil {
			apps = []*Application{}
		}
		return apps, nil
	})
	if err != nil {
		s.logger.Error("financial: application list failed", "error", err)
		return ApplicationListResult{Error: errListApplications}
	}
	return ApplicationListResult{Success: true, Applications: list}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("financial: cache invalidation failed", "key", key, "error", err)
		}
	}
}
