// Package principals provides database operations for portal principals.
//
// # Usage
//
//	repo := principals.NewRepository(db)
//	p, err := repo.FindPrincipalByEmail(ctx, "user@example.com")
package principals

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/jobportal/internal/entities"
)

// Repository handles all principal database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new principals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindPrincipalByEmail returns the principal with the given email, or nil when absent.
// Any other failure is returned as an error.
func (r *Repository) FindPrincipalByEmail(ctx context.Context, email string) (*entities.Principal, error) {
	var p entities.Principal
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find principal by email: %w", err)
	}
	return &p, nil
}

// CreatePrincipal stores p and reports whether it was created.
// It returns false without error when the username or email is already taken.
func (r *Repository) CreatePrincipal(ctx context.Context, p *entities.Principal) (bool, error) {
	db := r.db.WithContext(ctx)

	var existing int64
	err := db.Model(&entities.Principal{}).
		Where("username = ? OR email = ?", p.Username, p.Email).
		Count(&existing).Error
	if err != nil {
		return false, fmt.Errorf("check existing principal: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	// A concurrent enrollment can still win the race; the unique indexes catch it.
	if err := db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("create principal: %w", err)
	}
	return true, nil
}

// GetPrincipalByID retrieves a principal by ID.
func (r *Repository) GetPrincipalByID(ctx context.Context, id uint) (*entities.Principal, error) {
	var p entities.Principal
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetResumePath records the stored resume location for a principal.
func (r *Repository) SetResumePath(ctx context.Context, id uint, path string) error {
	result := r.db.WithContext(ctx).Model(&entities.Principal{}).Where("id = ?", id).Update("resume_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPrincipals returns a page of principals ordered by ID.
func (r *Repository) ListPrincipals(ctx context.Context, offset, limit int) ([]entities.Principal, error) {
	if offset < 0 {
		offset = 0
	}
	var ps []entities.Principal
	query := r.db.WithContext(ctx).Order("id ASC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&ps).Error
	return ps, err
}

// CountPrincipals returns the total number of principals.
func (r *Repository) CountPrincipals(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entities.Principal{}).Count(&total).Error
	return total, err
}
