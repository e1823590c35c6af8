package approvals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backend/internal/approval"
	"backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type allowAllChecker struct{}

func (allowAllChecker) HasReviewPermission(ctx context.Context, userID string) (bool, error) {
	return true, nil
}

func newDeclineRouter(t *testing.T) (*gin.Engine, *approval.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&approval.ApprovalSchema{}, &approval.ApprovalStep{}, &approval.ApprovalHistory{},
	))

	_, err = approval.NewInstantiator(db).Instantiate(context.Background(), "doc-1", "requester-1",
		[]approval.StepInput{{RoleID: "role-gm", DurationSeconds: 3600}})
	require.NoError(t, err)

	engine := approval.NewEngine(db)
	handler := NewApprovalHandler(engine, allowAllChecker{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserIDKey, "user-gm")
		c.Set(auth.ContextRoleIDKey, "role-gm")
	})
	router.POST("/documents/:id/approval/steps/:order/decline", handler.Decline)
	return router, engine
}

func TestDeclineWithoutBodyDefaultsToDecline(t *testing.T) {
	router, engine := newDeclineRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/approval/steps/1/decline", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	steps, err := engine.Steps(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, approval.StepStatusDeclined, steps[0].Status)
}

func TestDeclineWithRevisionMode(t *testing.T) {
	router, engine := newDeclineRouter(t)

	body := strings.NewReader(`{"comment":"split the items","mode":"revision"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/approval/steps/1/decline", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	steps, err := engine.Steps(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, approval.StepStatusRevision, steps[0].Status)
	require.Equal(t, "split the items", *steps[0].Comment)
}

func TestDeclineRejectsMalformedBody(t *testing.T) {
	router, engine := newDeclineRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/approval/steps/1/decline",
		strings.NewReader(`{"mode":`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	steps, err := engine.Steps(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, approval.StepStatusPending, steps[0].Status)
}
