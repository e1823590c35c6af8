package procurement

import (
	"context"
	"strings"
	"testing"

	"backend/internal/approval"
	"backend/internal/common"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	reviewerGM  = approval.Actor{ID: "user-gm", RoleID: "role-gm"}
	reviewerCFO = approval.Actor{ID: "user-cfo", RoleID: "role-cfo"}
)

func newTestService(t *testing.T) (*Service, *approval.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&PurchaseRequest{}, &PurchaseRequestItem{}, &PurchaseOrder{},
		&approval.ApprovalSchema{}, &approval.ApprovalStep{}, &approval.ApprovalHistory{},
	))

	engine := approval.NewEngine(db, approval.WithStatusWriter(StatusWriter{}))
	svc := NewService(db, engine, approval.NewInstantiator(db), approval.NewSchemaStore(db))
	return svc, engine, db
}

func draftRequest(t *testing.T, svc *Service) *PurchaseRequest {
	t.Helper()
	req := &PurchaseRequest{
		Title:          "office laptops",
		CreatedBy:      "user-requester",
		WorkDivisionID: "div-it",
		Items: []PurchaseRequestItem{
			{Description: "laptop", Quantity: 3, Unit: "pcs", UnitPrice: 15_000_000},
			{Description: "dock", Quantity: 3, Unit: "pcs", UnitPrice: 2_000_000},
		},
	}
	require.NoError(t, svc.CreateRequest(context.Background(), req))
	return req
}

func twoStepInputs() []approval.StepInput {
	return []approval.StepInput{
		{RoleID: "role-gm", DurationSeconds: 3600},
		{RoleID: "role-cfo", DurationSeconds: 3600},
	}
}

func TestCreateRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := draftRequest(t, svc)
	require.True(t, strings.HasPrefix(req.Code, "PR-"))
	require.Equal(t, approval.DocumentStatusDraft, req.Status)
	require.EqualValues(t, 51_000_000, req.TotalAmount())

	loaded, err := svc.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
}

func TestUpdateRequestGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	update := &PurchaseRequest{
		Title: "office laptops v2",
		Items: []PurchaseRequestItem{{Description: "laptop", Quantity: 2, UnitPrice: 15_000_000}},
	}

	_, err := svc.UpdateRequest(ctx, req.ID, "user-other", update)
	require.ErrorIs(t, err, ErrNotCreator)

	updated, err := svc.UpdateRequest(ctx, req.ID, "user-requester", update)
	require.NoError(t, err)
	require.Equal(t, "office laptops v2", updated.Title)
	require.Len(t, updated.Items, 1)

	// Once submitted the document is out of the creator's hands.
	_, err = svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)
	_, err = svc.UpdateRequest(ctx, req.ID, "user-requester", update)
	require.ErrorIs(t, err, ErrRequestNotEditable)
}

func TestSubmitWithInlineSteps(t *testing.T) {
	svc, engine, _ := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, submitted.Status)

	current, err := engine.GetCurrentStep(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, 1, current.StepOrder)
	require.Equal(t, "role-gm", current.RoleID)

	// A second submission hits the existing chain.
	_, err = svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.ErrorIs(t, err, ErrRequestNotEditable)
}

func TestSubmitIsAtomic(t *testing.T) {
	svc, _, db := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	// Block the status flip so the second write of the submission fails.
	require.NoError(t, db.Exec(`CREATE TRIGGER reject_pending
		BEFORE UPDATE OF status ON purchase_requests
		WHEN NEW.status = 'pending'
		BEGIN SELECT RAISE(ABORT, 'status write rejected'); END`).Error)

	_, err := svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.Error(t, err)

	// The failed submission must not leave a chain on a draft document.
	var stepCount int64
	require.NoError(t, db.Model(&approval.ApprovalStep{}).
		Where("document_id = ?", req.ID).Count(&stepCount).Error)
	require.Zero(t, stepCount)

	loaded, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusDraft, loaded.Status)

	// With the obstacle gone the same submission goes through cleanly.
	require.NoError(t, db.Exec("DROP TRIGGER reject_pending").Error)
	submitted, err := svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, submitted.Status)
}

func TestSubmitFromSchema(t *testing.T) {
	svc, engine, db := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	store := approval.NewSchemaStore(db)
	schema := &approval.ApprovalSchema{
		Name:         "it purchases",
		DocumentType: approval.DocumentTypePurchaseRequest,
		Steps: []approval.ApprovalStepTemplate{
			{StepOrder: 1, RoleID: "role-gm", DurationSeconds: 3600},
			{StepOrder: 2, RoleID: "role-cfo", DurationSeconds: 3600},
		},
	}
	require.NoError(t, store.CreateSchema(ctx, schema))

	submitted, err := svc.Submit(ctx, req.ID, "user-requester", schema.ID, nil)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, submitted.Status)

	steps, err := engine.Steps(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.Equal(t, "role-cfo", steps[1].RoleID)
}

func TestSubmitRejectsMemoSchema(t *testing.T) {
	svc, _, db := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	store := approval.NewSchemaStore(db)
	schema := &approval.ApprovalSchema{
		Name:         "memo sign-off",
		DocumentType: approval.DocumentTypeMemo,
		Steps: []approval.ApprovalStepTemplate{
			{StepOrder: 1, RoleID: "role-gm"},
		},
	}
	require.NoError(t, store.CreateSchema(ctx, schema))

	_, err := svc.Submit(ctx, req.ID, "user-requester", schema.ID, nil)
	require.ErrorIs(t, err, approval.ErrInvalidStepList)
}

func TestApprovalWritesBackDocumentStatus(t *testing.T) {
	svc, engine, _ := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	_, err := svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)

	_, err = engine.Approve(ctx, req.ID, 1, reviewerGM)
	require.NoError(t, err)
	loaded, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, loaded.Status)

	_, err = engine.Approve(ctx, req.ID, 2, reviewerCFO)
	require.NoError(t, err)
	loaded, err = svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusApproved, loaded.Status)
}

func TestRevisionRoundTrip(t *testing.T) {
	svc, engine, _ := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	_, err := svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)

	_, err = engine.Decline(ctx, req.ID, 1, reviewerGM, "wrong budget line", approval.DeclineModeRevision)
	require.NoError(t, err)

	loaded, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusRevision, loaded.Status)

	// The creator may edit while the document awaits revision.
	_, err = svc.UpdateRequest(ctx, req.ID, "user-requester", &PurchaseRequest{
		Title: "office laptops, corrected",
		Items: []PurchaseRequestItem{{Description: "laptop", Quantity: 3, UnitPrice: 14_000_000}},
	})
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, req.ID, "user-other")
	require.ErrorIs(t, err, ErrNotCreator)

	result, err := svc.Resubmit(ctx, req.ID, "user-requester")
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, result.Status)

	loaded, err = svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusPending, loaded.Status)
}

func TestConvertToOrder(t *testing.T) {
	svc, engine, _ := newTestService(t)
	req := draftRequest(t, svc)
	ctx := context.Background()

	_, err := svc.ConvertToOrder(ctx, req.ID, "vendor-1", "user-admin")
	require.ErrorIs(t, err, ErrRequestNotApproved)

	_, err = svc.Submit(ctx, req.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)
	_, err = engine.Approve(ctx, req.ID, 1, reviewerGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, req.ID, 2, reviewerCFO)
	require.NoError(t, err)

	order, err := svc.ConvertToOrder(ctx, req.ID, "vendor-1", "user-admin")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(order.Code, "PO-"))
	require.Equal(t, req.ID, order.PurchaseRequestID)
	require.Equal(t, "vendor-1", order.VendorID)

	loaded, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, approval.DocumentStatusCompleted, loaded.Status)

	// A completed request cannot be converted again.
	_, err = svc.ConvertToOrder(ctx, req.ID, "vendor-1", "user-admin")
	require.ErrorIs(t, err, ErrRequestNotApproved)
}

func TestListRequestsFilters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := draftRequest(t, svc)
	second := &PurchaseRequest{
		Title:     "printer paper",
		CreatedBy: "user-other",
		Items:     []PurchaseRequestItem{{Description: "paper", Quantity: 10, UnitPrice: 50_000}},
	}
	require.NoError(t, svc.CreateRequest(ctx, second))

	_, err := svc.Submit(ctx, first.ID, "user-requester", "", twoStepInputs())
	require.NoError(t, err)

	page := common.DefaultPagination()

	all, total, err := svc.ListRequests(ctx, "", "", page)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)

	pending, total, err := svc.ListRequests(ctx, string(approval.DocumentStatusPending), "", page)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, first.ID, pending[0].ID)

	mine, total, err := svc.ListRequests(ctx, "", "user-other", page)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, second.ID, mine[0].ID)
}
