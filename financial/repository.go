package financial

import "context"

// Repository is the financing persistence contract. Single-row finders
// return (nil, nil) when no row matches.
type Repository interface {
	FindInstitutionByID(ctx context.Context, id string) (*Institution, error)
	FindInstitutionByUserID(ctx context.Context, userID string) (*Institution, error)
	FindAllInstitutions(ctx context.Context) ([]*Institution, error)
	CreateInstitution(ctx context.Context, inst *Institution) (*Institution, error)

	FindProductByID(ctx context.Context, id string) (*Product, error)
	FindProductsByInstitutionID(ctx context.Context, institutionID string) ([]*Product, error)
	FindAllProducts(ctx context.Context) ([]*Product, error)
	CreateProduct(ctx context.Context, p *Product) (*Product, error)

	FindApplicationByID(ctx context.Context, id string) (*Application, error)
	FindApplicationsByUserID(ctx context.Context, userID string) ([]*Application, error)
	FindAllApplications(ctx context.Context) ([]*Application, error)
	CreateApplication(ctx context.Context, app *Application) (*Application, error)
	UpdateApplication(ctx context.Context, app *Application) (*Application, error)

	// CheckApplicationStatesByUserID reports whether the user has any
	// application still pending or under review, regardless of product.
	CheckApplicationStatesByUserID(ctx context.Context, userID string) (bool, error)
}
