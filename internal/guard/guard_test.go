package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain/entity"
)

func authenticated(role entity.Role) entity.Session {
	return entity.Session{
		Status:      entity.SessionAuthenticated,
		User:        &entity.User{ID: "u-1", Role: role},
		AccessToken: "token",
	}
}

func TestPolicy_SellerLogin(t *testing.T) {
	policy := DefaultPolicy()
	sess := authenticated(entity.RoleSeller)

	assert.Equal(t, entity.RoleSeller, sess.User.Role)
	assert.Equal(t, Allow, policy.Check(sess, "/seller/products"))
	assert.Equal(t, Allow, policy.Check(sess, "/seller"))
	assert.Equal(t, Forbidden, policy.Check(sess, "/admin/users"))
	assert.Equal(t, Forbidden, policy.Check(sess, "/admin"))
}

func TestPolicy_Check(t *testing.T) {
	policy := DefaultPolicy()
	anonymous := entity.Session{Status: entity.SessionAnonymous}
	resolving := entity.Session{Status: entity.SessionResolving}

	tests := []struct {
		name string
		sess entity.Session
		path string
		want Decision
	}{
		{name: "public path anonymous", sess: anonymous, path: "/products/p1", want: Allow},
		{name: "public path while resolving", sess: resolving, path: "/", want: Allow},
		{name: "protected path while resolving", sess: resolving, path: "/orders", want: Wait},
		{name: "orders anonymous", sess: anonymous, path: "/orders/o1", want: RequireLogin},
		{name: "orders user", sess: authenticated(entity.RoleUser), path: "/orders/o1", want: Allow},
		{name: "admin area for admin", sess: authenticated(entity.RoleAdmin), path: "/admin/orders", want: Allow},
		{name: "seller area for admin", sess: authenticated(entity.RoleAdmin), path: "/seller/coupons", want: Allow},
		{name: "seller area for user", sess: authenticated(entity.RoleUser), path: "/seller/coupons", want: Forbidden},
		{name: "admin area anonymous", sess: anonymous, path: "/admin", want: RequireLogin},
		{name: "prefix must end at segment", sess: anonymous, path: "/sellers-guide", want: Allow},
		{name: "token without user", sess: entity.Session{Status: entity.SessionAuthenticated, AccessToken: "t"}, path: "/checkout", want: RequireLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Check(tt.sess, tt.path))
		})
	}
}

func TestPolicy_LongestPrefixWins(t *testing.T) {
	policy := NewPolicy(
		Rule{Prefix: "/admin", Roles: entity.Roles{entity.RoleAdmin}},
		Rule{Prefix: "/admin/reports", Roles: entity.Roles{entity.RoleAdmin, entity.RoleSeller}},
	)

	sess := authenticated(entity.RoleSeller)
	assert.Equal(t, Allow, policy.Check(sess, "/admin/reports/daily"))
	assert.Equal(t, Forbidden, policy.Check(sess, "/admin/users"))
	assert.Equal(t, entity.Roles{entity.RoleAdmin, entity.RoleSeller}, policy.Roles("/admin/reports"))
	assert.Nil(t, policy.Roles("/products"))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "require_login", RequireLogin.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
