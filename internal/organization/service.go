package organization

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/common"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDivisionNotFound = errors.New("work division not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrVendorNotFound   = errors.New("vendor not found")
)

// Service provides reference-data access for users, roles, divisions and
// vendors. The approval engine consumes it through the auth permission
// checker and through identity claims, never directly.
type Service struct {
	db *gorm.DB
}

// NewService creates the organization service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail loads a user by email, used at login.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// CreateUser hashes the password and persists the account.
func (s *Service) CreateUser(ctx context.Context, user *User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.PasswordHash = string(hash)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// VerifyPassword checks a login attempt against the stored hash.
func (s *Service) VerifyPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// HasReviewPermission implements the general may-review capability gate:
// the account must be active and hold a role flagged CanReview. Per-step
// eligibility is the engine's CanAct, separate from this check.
func (s *Service) HasReviewPermission(ctx context.Context, userID string) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}

	var role Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", user.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load role: %w", err)
	}
	return role.CanReview, nil
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, req common.PaginationRequest) ([]*User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []*User
	if err := s.db.WithContext(ctx).
		Scopes(common.Paginate(req)).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// GetDivision loads a work division by id.
func (s *Service) GetDivision(ctx context.Context, id string) (*WorkDivision, error) {
	var division WorkDivision
	if err := s.db.WithContext(ctx).First(&division, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("load division: %w", err)
	}
	return &division, nil
}

// ListDivisions returns all work divisions.
func (s *Service) ListDivisions(ctx context.Context) ([]*WorkDivision, error) {
	var divisions []*WorkDivision
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&divisions).Error; err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	return divisions, nil
}

// CreateDivision persists a work division.
func (s *Service) CreateDivision(ctx context.Context, division *WorkDivision) error {
	if division.ID == "" {
		division.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(division).Error; err != nil {
		return fmt.Errorf("create division: %w", err)
	}
	return nil
}

// GetRole loads a role by id.
func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	var role Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	return &role, nil
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	var roles []*Role
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// CreateRole persists a role.
func (s *Service) CreateRole(ctx context.Context, role *Role) error {
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// GetVendor loads a vendor by id.
func (s *Service) GetVendor(ctx context.Context, id string) (*Vendor, error) {
	var vendor Vendor
	if err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("load vendor: %w", err)
	}
	return &vendor, nil
}

// ListVendors returns a page of vendors.
func (s *Service) ListVendors(ctx context.Context, req common.PaginationRequest) ([]*Vendor, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&Vendor{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	var vendors []*Vendor
	if err := s.db.WithContext(ctx).
		Scopes(common.Paginate(req)).
		Order("name ASC").
		Find(&vendors).Error; err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, total, nil
}

// CreateVendor persists a vendor.
func (s *Service) CreateVendor(ctx context.Context, vendor *Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return fmt.Errorf("create vendor: %w", err)
	}
	return nil
}
