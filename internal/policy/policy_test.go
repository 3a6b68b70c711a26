package policy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/policy"
)

func TestCan(t *testing.T) {
	t.Parallel()

	student := policy.Subject{Username: "alice", Roles: []model.Role{model.RoleStudent}}
	librarian := policy.Subject{Username: "bob", Roles: []model.Role{model.RoleStudent, model.RoleLibrarian}}
	admin := policy.Subject{Username: "root", Roles: []model.Role{model.RoleAdmin}}

	tests := []struct {
		name  string
		sub   policy.Subject
		op    policy.Operation
		obj   policy.Object
		allow bool
	}{
		{"any actor reads books", student, policy.OpRead, policy.Object{Resource: policy.ResourceBook}, true},
		{"student cannot create books", student, policy.OpCreate, policy.Object{Resource: policy.ResourceBook}, false},
		{"librarian creates books", librarian, policy.OpCreate, policy.Object{Resource: policy.ResourceBook}, true},
		{"librarian cannot delete books", librarian, policy.OpDelete, policy.Object{Resource: policy.ResourceBook}, false},
		{"admin deletes books", admin, policy.OpDelete, policy.Object{Resource: policy.ResourceBook}, true},

		{"owner reads own borrowing", student, policy.OpRead, policy.Object{Resource: policy.ResourceBorrowing, Owner: "alice"}, true},
		{"student cannot read others borrowing", student, policy.OpRead, policy.Object{Resource: policy.ResourceBorrowing, Owner: "carol"}, false},
		{"librarian reads any borrowing", librarian, policy.OpRead, policy.Object{Resource: policy.ResourceBorrowing, Owner: "carol"}, true},
		{"borrowing create only for self", student, policy.OpCreate, policy.Object{Resource: policy.ResourceBorrowing, Owner: "carol"}, false},
		{"borrowing create for self", student, policy.OpCreate, policy.Object{Resource: policy.ResourceBorrowing, Owner: "alice"}, true},
		{"owner updates own borrowing", student, policy.OpUpdate, policy.Object{Resource: policy.ResourceBorrowing, Owner: "alice"}, true},
		{"staff updates any borrowing", librarian, policy.OpUpdate, policy.Object{Resource: policy.ResourceBorrowing, Owner: "alice"}, true},

		{"owner cancels own reservation", student, policy.OpUpdate, policy.Object{Resource: policy.ResourceReservation, Owner: "alice"}, true},
		{"student cannot touch others reservation", student, policy.OpUpdate, policy.Object{Resource: policy.ResourceReservation, Owner: "carol"}, false},
		{"admin updates any reservation", admin, policy.OpUpdate, policy.Object{Resource: policy.ResourceReservation, Owner: "carol"}, true},

		{"roles readable by owner only", student, policy.OpRead, policy.Object{Resource: policy.ResourceRole, Owner: "alice"}, true},
		{"roles not readable by staff", librarian, policy.OpRead, policy.Object{Resource: policy.ResourceRole, Owner: "alice"}, false},
		{"role grant requires admin", librarian, policy.OpCreate, policy.Object{Resource: policy.ResourceRole, Owner: "alice"}, false},
		{"admin grants roles", admin, policy.OpCreate, policy.Object{Resource: policy.ResourceRole, Owner: "alice"}, true},
		{"admin revokes roles", admin, policy.OpDelete, policy.Object{Resource: policy.ResourceRole, Owner: "alice"}, true},

		{"review delete by staff", librarian, policy.OpDelete, policy.Object{Resource: policy.ResourceReview, Owner: "carol"}, true},
		{"review delete by owner", student, policy.OpDelete, policy.Object{Resource: policy.ResourceReview, Owner: "alice"}, true},
		{"review delete denied to stranger", student, policy.OpDelete, policy.Object{Resource: policy.ResourceReview, Owner: "carol"}, false},

		{"unknown resource denies", admin, policy.OpRead, policy.Object{Resource: "unknown"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.allow, policy.Can(tt.sub, tt.op, tt.obj))
		})
	}
}

func TestCan_FailClosed(t *testing.T) {
	t.Parallel()

	// missing role data denies everything, including book reads
	noRoles := policy.Subject{Username: "alice"}
	require.False(t, policy.Can(noRoles, policy.OpRead, policy.Object{Resource: policy.ResourceBook}))

	anonymous := policy.Subject{Roles: []model.Role{model.RoleAdmin}}
	require.False(t, policy.Can(anonymous, policy.OpRead, policy.Object{Resource: policy.ResourceBook}))
}

func TestIsStaff(t *testing.T) {
	t.Parallel()

	require.True(t, policy.IsStaff(policy.Subject{Username: "b", Roles: []model.Role{model.RoleLibrarian}}))
	require.True(t, policy.IsStaff(policy.Subject{Username: "r", Roles: []model.Role{model.RoleAdmin}}))
	require.False(t, policy.IsStaff(policy.Subject{Username: "a", Roles: []model.Role{model.RoleStudent}}))
}
