// Package financial implements the financing domain service: institutions,
// their loan products, and financing applications with a status state
// machine and open-application gating.
package financial

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// Status is the lifecycle state of a financing application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// transitions enumerates the legal edges. Approved and rejected are
// terminal; nothing leaves them.
var transitions = map[Status][]Status{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Open reports whether an application in this status still blocks a new one.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusUnderReview
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether the edge s -> next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Institution is a lender owned by exactly one user.
type Institution struct {
	bun.BaseModel `bun:"table:financial_institutions,alias:fi"`

	ID           string    `bun:"id,pk" json:"id"`
	UserID       string    `bun:"user_id,notnull,unique" json:"user_id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Type         string    `bun:"type,notnull" json:"type"`
	ContactEmail string    `bun:"contact_email,notnull" json:"contact_email"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Product is a financing product offered by an institution.
type Product struct {
	bun.BaseModel `bun:"table:financial_products,alias:fp"`

	ID            string    `bun:"id,pk" json:"id"`
	InstitutionID string    `bun:"institution_id,notnull" json:"institution_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Type          string    `bun:"type,notnull" json:"type"`
	MinRate       float64   `bun:"min_rate,notnull" json:"min_rate"`
	MaxRate       float64   `bun:"max_rate,notnull" json:"max_rate"`
	Active        bool      `bun:"active,notnull" json:"active"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Application is a user's financing application against a product.
type Application struct {
	bun.BaseModel `bun:"table:financing_applications,alias:fa"`

	ID         string    `bun:"id,pk" json:"id"`
	UserID     string    `bun:"user_id,notnull" json:"user_id"`
	ProductID  string    `bun:"product_id,notnull" json:"product_id"`
	Income     float64   `bun:"income,notnull" json:"income"`
	Amount     float64   `bun:"amount,notnull" json:"amount"`
	TermMonths int       `bun:"term_months,notnull" json:"term_months"`
	Status     Status    `bun:"status,notnull" json:"status"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// CreateInstitutionInput carries a new institution registration.
type CreateInstitutionInput struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	ContactEmail string `json:"contact_email"`
}

// Validate implements the validation.Validatable interface.
func (i CreateInstitutionInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Type, validation.Required),
		validation.Field(&i.ContactEmail, validation.Required, is.Email),
	)
}

// CreateProductInput carries a new financing product.
type CreateProductInput struct {
	InstitutionID string  `json:"institution_id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	MinRate       float64 `json:"min_rate"`
	MaxRate       float64 `json:"max_rate"`
	Active        bool    `json:"active"`
}

// Validate implements the validation.Validatable interface.
func (i CreateProductInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.InstitutionID, validation.Required),
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Type, validation.Required),
		validation.Field(&i.MinRate, validation.Min(0.0)),
		validation.Field(&i.MaxRate, validation.Min(0.0)),
	)
}

// CreateApplicationInput carries a new financing application. New
// applications always start out pending.
type CreateApplicationInput struct {
	UserID     string  `json:"user_id"`
	ProductID  string  `json:"product_id"`
	Income     float64 `json:"income"`
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"term_months"`
}

// Validate implements the validation.Validatable interface.
func (i CreateApplicationInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.UserID, validation.Required),
		validation.Field(&i.ProductID, validation.Required),
		validation.Field(&i.Income, validation.Required, validation.Min(0.0)),
		validation.Field(&i.Amount, validation.Required, validation.Min(0.0)),
		validation.Field(&i.TermMonths, validation.Required, validation.Min(1)),
	)
}

// UpdateStatusInput carries a status transition request.
type UpdateStatusInput struct {
	Status string `json:"status"`
}

// InstitutionResult is the outcome of single-institution operations.
type InstitutionResult struct {
	Success     bool         `json:"success"`
	Institution *Institution `json:"institution,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// InstitutionListResult is the outcome of institution collection reads.
type InstitutionListResult struct {
	Success      bool           `json:"success"`
	Institutions []*Institution `json:"institutions,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// ProductResult is the outcome of single-product operations.
type ProductResult struct {
	Success bool     `json:"success"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ProductListResult is the outcome of product collection reads.
type ProductListResult struct {
	Success  bool       `json:"success"`
	Products []*Product `json:"products,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// ApplicationResult is the outcome of single-application operations.
type ApplicationResult struct {
	Success     bool         `json:"success"`
	Application *Application `json:"application,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// ApplicationListResult is the outcome of application collection reads.
type ApplicationListResult struct {
	Success      bool           `json:"success"`
	Applications []*Application `json:"applications,omitempty"`
	Error        string         `json:"error,omitempty"`
}
