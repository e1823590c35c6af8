package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchemaStore holds reusable approval schemas. The engine only reads from
// it; authoring is workspace-admin CRUD. Schemas are copied-from at
// instantiation time, never referenced live, so deleting one cannot touch
// documents already in flight.
type SchemaStore struct {
	db *gorm.DB
}

// NewSchemaStore creates a schema store backed by the given database.
func NewSchemaStore(db *gorm.DB) *SchemaStore {
	return &SchemaStore{db: db}
}

// GetSchema loads a schema by id.
func (s *SchemaStore) GetSchema(ctx context.Context, id string) (*ApprovalSchema, error) {
	var schema ApprovalSchema
	if err := s.db.WithContext(ctx).First(&schema, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemaNotFound
		}
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &schema, nil
}

// ListSchemas returns all schemas, optionally filtered by document type.
func (s *SchemaStore) ListSchemas(ctx context.Context, documentType DocumentType) ([]*ApprovalSchema, error) {
	query := s.db.WithContext(ctx).Model(&ApprovalSchema{})
	if documentType != "" {
		query = query.Where("document_type = ?", documentType)
	}

	var schemas []*ApprovalSchema
	if err := query.Order("created_at DESC").Find(&schemas).Error; err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return schemas, nil
}

// ListApplicableSchemas returns the schemas whose stored division and role
// sets admit the given requester. An empty set on the schema means "applies
// to all". The set filters run in Go because the sets are stored as json
// arrays and the filter must behave identically on postgres and the sqlite
// test driver.
func (s *SchemaStore) ListApplicableSchemas(ctx context.Context, documentType DocumentType, workDivisionID, roleID string) ([]*ApprovalSchema, error) {
	schemas, err := s.ListSchemas(ctx, documentType)
	if err != nil {
		return nil, err
	}

	applicable := make([]*ApprovalSchema, 0, len(schemas))
	for _, schema := range schemas {
		if !setAdmits(schema.DivisionIDs, workDivisionID) {
			continue
		}
		if !setAdmits(schema.RoleIDs, roleID) {
			continue
		}
		applicable = append(applicable, schema)
	}
	return applicable, nil
}

// CreateSchema validates and persists a new schema.
func (s *SchemaStore) CreateSchema(ctx context.Context, schema *ApprovalSchema) error {
	if err := ValidateSchema(schema); err != nil {
		return err
	}
	if schema.ID == "" {
		schema.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(schema).Error; err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpdateSchema validates and saves an existing schema. In-flight documents
// are unaffected by design: their steps were copied at instantiation.
func (s *SchemaStore) UpdateSchema(ctx context.Context, schema *ApprovalSchema) error {
	if err := ValidateSchema(schema); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&ApprovalSchema{}).
		Where("id = ?", schema.ID).
		Select("name", "document_type", "description", "division_ids", "role_ids", "steps").
		Updates(schema)
	if res.Error != nil {
		return fmt.Errorf("update schema: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSchemaNotFound
	}
	return nil
}

// DeleteSchema removes a schema. Instantiated steps keep their copied
// values, so deletion never alters in-flight approvals.
func (s *SchemaStore) DeleteSchema(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&ApprovalSchema{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete schema: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSchemaNotFound
	}
	return nil
}

// ValidateSchema checks the schema invariants: known document type, at
// least one step, step orders strictly increasing from 1, valid overtime
// actions, and no budget limits on non purchase-request schemas.
func ValidateSchema(schema *ApprovalSchema) error {
	if schema.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStepList)
	}
	if !schema.DocumentType.IsValid() {
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidStepList, schema.DocumentType)
	}
	if len(schema.Steps) == 0 {
		return fmt.Errorf("%w: schema has no steps", ErrInvalidStepList)
	}

	prevOrder := 0
	for i, tpl := range schema.Steps {
		if tpl.RoleID == "" {
			return fmt.Errorf("%w: step %d has no role", ErrInvalidStepList, i+1)
		}
		if tpl.StepOrder <= prevOrder {
			return fmt.Errorf("%w: step orders must be strictly increasing", ErrInvalidStepList)
		}
		if i == 0 && tpl.StepOrder < 1 {
			return fmt.Errorf("%w: step orders start at 1", ErrInvalidStepList)
		}
		if tpl.OvertimeAction != "" && !tpl.OvertimeAction.IsValid() {
			return fmt.Errorf("%w: step %d has unknown overtime action %q", ErrInvalidStepList, i+1, tpl.OvertimeAction)
		}
		// Budget limits only mean something on purchase requests.
		if schema.DocumentType != DocumentTypePurchaseRequest && tpl.BudgetLimit != nil {
			return fmt.Errorf("%w: budget limit is only valid on purchase request schemas", ErrInvalidStepList)
		}
		prevOrder = tpl.StepOrder
	}
	return nil
}

func setAdmits(set []string, member string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == member {
			return true
		}
	}
	return false
}
