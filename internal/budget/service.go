package budget

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrBudgetNotFound  = errors.New("budget not found")
)

// Service manages project and budget planning records.
type Service struct {
	db *gorm.DB
}

// NewService creates the budget service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateProject persists a project.
func (s *Service) CreateProject(ctx context.Context, project *Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Code == "" {
		project.Code = common.DocumentCode("PRJ")
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetProject loads a project by id.
func (s *Service) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &project, nil
}

// ListProjects returns a page of projects, optionally scoped to a division.
func (s *Service) ListProjects(ctx context.Context, divisionID string, req common.PaginationRequest) ([]*Project, int64, error) {
	query := s.db.WithContext(ctx).Model(&Project{})
	if divisionID != "" {
		query = query.Scopes(common.ByDivision(divisionID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	var projects []*Project
	if err := query.
		Scopes(common.Paginate(req)).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

// CreateBudget persists a budget under an existing project.
func (s *Service) CreateBudget(ctx context.Context, b *Budget) error {
	if _, err := s.GetProject(ctx, b.ProjectID); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

// GetBudget loads a budget by id.
func (s *Service) GetBudget(ctx context.Context, id string) (*Budget, error) {
	var b Budget
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("load budget: %w", err)
	}
	return &b, nil
}

// ListBudgets returns a page of budgets, optionally scoped to a project.
func (s *Service) ListBudgets(ctx context.Context, projectID string, req common.PaginationRequest) ([]*Budget, int64, error) {
	query := s.db.WithContext(ctx).Model(&Budget{})
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count budgets: %w", err)
	}

	var budgets []*Budget
	if err := query.
		Scopes(common.Paginate(req)).
		Order("created_at DESC").
		Find(&budgets).Error; err != nil {
		return nil, 0, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, total, nil
}
