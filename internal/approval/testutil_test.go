package approval

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApprovalSchema{}, &ApprovalStep{}, &ApprovalHistory{}))
	return db
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}

// threeStepInputs models the common GM -> CFO -> CEO ladder, ordered by
// ascending budget limit with the unlimited step last.
func threeStepInputs() []StepInput {
	return []StepInput{
		{RoleID: "role-gm", BudgetLimit: int64Ptr(250_000_000), DurationSeconds: 3600},
		{RoleID: "role-cfo", BudgetLimit: int64Ptr(500_000_000), DurationSeconds: 3600},
		{RoleID: "role-ceo", DurationSeconds: 3600},
	}
}

func instantiateChain(t *testing.T, db *gorm.DB, documentID string, inputs []StepInput) []ApprovalStep {
	t.Helper()
	steps, err := NewInstantiator(db).Instantiate(context.Background(), documentID, "requester-1", inputs)
	require.NoError(t, err)
	return steps
}
