package organization

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
	require.NoError(t, db.AutoMigrate(&WorkDivision{}, &Role{}, &User{}, &Vendor{}))
	return db
}

func seedUser(t *testing.T, svc *Service, canReview, active bool) *User {
	t.Helper()
	ctx := context.Background()

	role := &Role{Name: "reviewer-" + t.Name(), CanReview: canReview}
	require.NoError(t, svc.CreateRole(ctx, role))

	user := &User{
		Name:     "Dewi",
		Email:    "dewi-" + t.Name() + "@example.com",
		RoleID:   role.ID,
		IsActive: active,
	}
	require.NoError(t, svc.CreateUser(ctx, user, "s3cret-pass"))
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewService(openTestDB(t))
	user := seedUser(t, svc, false, true)

	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.True(t, svc.VerifyPassword(user, "s3cret-pass"))
	require.False(t, svc.VerifyPassword(user, "wrong-pass"))
}

func TestGetUserByEmail(t *testing.T) {
	svc := NewService(openTestDB(t))
	user := seedUser(t, svc, false, true)
	ctx := context.Background()

	found, err := svc.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = svc.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestHasReviewPermission(t *testing.T) {
	svc := NewService(openTestDB(t))
	ctx := context.Background()

	reviewer := seedUser(t, svc, true, true)
	ok, err := svc.HasReviewPermission(ctx, reviewer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	plain := &User{Name: "Budi", Email: "budi@example.com", RoleID: reviewer.RoleID}
	require.NoError(t, svc.CreateUser(ctx, plain, "another-pass"))
	require.NoError(t, svc.db.Model(plain).Update("is_active", false).Error)
	ok, err = svc.HasReviewPermission(ctx, plain.ID)
	require.NoError(t, err)
	require.False(t, ok)

	norole := &User{Name: "Sari", Email: "sari@example.com", RoleID: "missing-role", IsActive: true}
	require.NoError(t, svc.CreateUser(ctx, norole, "third-pass"))
	ok, err = svc.HasReviewPermission(ctx, norole.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.HasReviewPermission(ctx, "no-such-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestVendorRoundTrip(t *testing.T) {
	svc := NewService(openTestDB(t))
	ctx := context.Background()

	vendor := &Vendor{Name: "PT Maju Jaya", Email: "sales@majujaya.example"}
	require.NoError(t, svc.CreateVendor(ctx, vendor))

	found, err := svc.GetVendor(ctx, vendor.ID)
	require.NoError(t, err)
	require.Equal(t, "PT Maju Jaya", found.Name)

	_, err = svc.GetVendor(ctx, "missing")
	require.ErrorIs(t, err, ErrVendorNotFound)
}
