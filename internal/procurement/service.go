package procurement

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/approval"
	"backend/internal/common"
	"backend/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound    = errors.New("purchase request not found")
	ErrOrderNotFound      = errors.New("purchase order not found")
	ErrRequestNotEditable = errors.New("purchase request is not editable")
	ErrRequestNotApproved = errors.New("purchase request is not fully approved")
	ErrNotCreator         = errors.New("only the creator may modify this request")
)

// Service owns purchase request and purchase order lifecycles. Submission
// and resubmission delegate chain mechanics to the approval engine; status
// writes flow back through the StatusWriter the engine is wired with.
type Service struct {
	db           *gorm.DB
	engine       *approval.Engine
	instantiator *approval.Instantiator
	schemas      *approval.SchemaStore
}

// NewService creates the procurement service.
func NewService(db *gorm.DB, engine *approval.Engine, instantiator *approval.Instantiator, schemas *approval.SchemaStore) *Service {
	return &Service{
		db:           db,
		engine:       engine,
		instantiator: instantiator,
		schemas:      schemas,
	}
}

// StatusWriter persists projected statuses onto purchase_requests rows
// inside the engine's transaction.
type StatusWriter struct{}

// UpdateDocumentStatus implements approval.DocumentStatusWriter.
func (StatusWriter) UpdateDocumentStatus(tx *gorm.DB, documentID string, status approval.DocumentStatus) error {
	return tx.Model(&PurchaseRequest{}).
		Where("id = ?", documentID).
		Update("status", status).Error
}

// CreateRequest persists a new draft purchase request with its items.
func (s *Service) CreateRequest(ctx context.Context, req *PurchaseRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Code == "" {
		req.Code = common.DocumentCode("PR")
	}
	req.Status = approval.DocumentStatusDraft
	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = uuid.New().String()
		}
		req.Items[i].PurchaseRequestID = req.ID
	}

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create purchase request: %w", err)
	}
	return nil
}

// GetRequest loads a request with its items.
func (s *Service) GetRequest(ctx context.Context, id string) (*PurchaseRequest, error) {
	var req PurchaseRequest
	if err := s.db.WithContext(ctx).Preload("Items").First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("load purchase request: %w", err)
	}
	return &req, nil
}

// ListRequests returns a page of requests, optionally filtered by status
// and creator.
func (s *Service) ListRequests(ctx context.Context, status, createdBy string, page common.PaginationRequest) ([]*PurchaseRequest, int64, error) {
	query := s.db.WithContext(ctx).Model(&PurchaseRequest{})
	if status != "" {
		query = query.Scopes(common.ByStatus(status))
	}
	if createdBy != "" {
		query = query.Scopes(common.ByCreator(createdBy))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count purchase requests: %w", err)
	}

	var requests []*PurchaseRequest
	if err := query.
		Preload("Items").
		Scopes(common.Paginate(page)).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("list purchase requests: %w", err)
	}
	return requests, total, nil
}

// UpdateRequest replaces the editable fields of a draft or
// revision-returned request. Only the creator may edit.
func (s *Service) UpdateRequest(ctx context.Context, id, actorID string, update *PurchaseRequest) (*PurchaseRequest, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != actorID {
		return nil, ErrNotCreator
	}
	if req.Status != approval.DocumentStatusDraft && req.Status != approval.DocumentStatusRevision {
		return nil, ErrRequestNotEditable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PurchaseRequest{}).Where("id = ?", id).Updates(map[string]any{
			"title":            update.Title,
			"notes":            update.Notes,
			"budget_id":        update.BudgetID,
			"work_division_id": update.WorkDivisionID,
		}).Error; err != nil {
			return fmt.Errorf("update purchase request: %w", err)
		}

		if update.Items != nil {
			if err := tx.Where("purchase_request_id = ?", id).Delete(&PurchaseRequestItem{}).Error; err != nil {
				return fmt.Errorf("clear items: %w", err)
			}
			for i := range update.Items {
				update.Items[i].ID = uuid.New().String()
				update.Items[i].PurchaseRequestID = id
			}
			if err := tx.Create(&update.Items).Error; err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, id)
}

// Submit instantiates the approval chain on a draft request, either from
// a saved schema or from a hand-assembled step list, and moves the
// document to pending.
func (s *Service) Submit(ctx context.Context, requestID, requesterID, schemaID string, steps []approval.StepInput) (*PurchaseRequest, error) {
	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != requesterID {
		return nil, ErrNotCreator
	}
	if req.Status != approval.DocumentStatusDraft {
		return nil, ErrRequestNotEditable
	}

	if schemaID != "" {
		schema, err := s.schemas.GetSchema(ctx, schemaID)
		if err != nil {
			return nil, err
		}
		if schema.DocumentType != approval.DocumentTypePurchaseRequest {
			return nil, fmt.Errorf("%w: schema %s does not apply to purchase requests",
				approval.ErrInvalidStepList, schemaID)
		}
		steps = approval.StepsFromSchema(schema)
	}

	// Chain creation and the status flip commit together: a draft document
	// must never carry a live chain.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.instantiator.WithTx(tx).Instantiate(ctx, requestID, requesterID, steps); err != nil {
			return err
		}
		if err := tx.Model(&PurchaseRequest{}).
			Where("id = ?", requestID).
			Update("status", approval.DocumentStatusPending).Error; err != nil {
			return fmt.Errorf("mark request pending: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DocumentsSubmittedTotal.WithLabelValues(string(approval.DocumentTypePurchaseRequest)).Inc()
	return s.GetRequest(ctx, requestID)
}

// Resubmit restarts the chain of a revision-returned request. The engine
// resets the existing step rows in place, so the audit trail survives.
func (s *Service) Resubmit(ctx context.Context, requestID, requesterID string) (*approval.TransitionResult, error) {
	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != requesterID {
		return nil, ErrNotCreator
	}
	return s.engine.Resubmit(ctx, requestID, requesterID)
}

// ConvertToOrder turns a fully approved request into a purchase order and
// marks the request completed.
func (s *Service) ConvertToOrder(ctx context.Context, requestID, vendorID, actorID string) (*PurchaseOrder, error) {
	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != approval.DocumentStatusApproved {
		return nil, ErrRequestNotApproved
	}

	if _, err := s.engine.Complete(ctx, requestID, actorID); err != nil {
		if errors.Is(err, approval.ErrInvalidTransition) {
			return nil, ErrRequestNotApproved
		}
		return nil, err
	}

	order := &PurchaseOrder{
		ID:                uuid.New().String(),
		Code:              common.DocumentCode("PO"),
		PurchaseRequestID: requestID,
		VendorID:          vendorID,
		CreatedBy:         actorID,
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}
	return order, nil
}

// GetOrder loads a purchase order by id.
func (s *Service) GetOrder(ctx context.Context, id string) (*PurchaseOrder, error) {
	var order PurchaseOrder
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load purchase order: %w", err)
	}
	return &order, nil
}

// ListOrders returns a page of purchase orders.
func (s *Service) ListOrders(ctx context.Context, page common.PaginationRequest) ([]*PurchaseOrder, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&PurchaseOrder{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}

	var orders []*PurchaseOrder
	if err := s.db.WithContext(ctx).
		Scopes(common.Paginate(page)).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	return orders, total, nil
}
