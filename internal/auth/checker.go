package auth

import "context"

// PermissionChecker answers whether a user may review approval steps.
// organization.Service satisfies this; the indirection keeps handlers
// testable without a database.
type PermissionChecker interface {
	HasReviewPermission(ctx context.Context, userID string) (bool, error)
}
