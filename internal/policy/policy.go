// Package policy is the single authorization gate for every mutating and
// reading entry point. Decisions are a pure function of the actor's role
// set and the resource's ownership, evaluated against one central rule
// table rather than per call site.
package policy

import (
	"github.com/campuslib/library-service/internal/model"
)

type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Resource string

const (
	ResourceBook        Resource = "book"
	ResourceBorrowing   Resource = "borrowing"
	ResourceReservation Resource = "reservation"
	ResourceRole        Resource = "role"
	ResourceReview      Resource = "review"
)

// Subject is the authenticated actor with its explicit role grants.
type Subject struct {
	Username string
	Roles    []model.Role
}

// Object is the resource under access. Owner is empty for resources
// without an owning actor (catalog rows).
type Object struct {
	Resource Resource
	Owner    string
}

type clause func(sub Subject, obj Object) bool

func role(want model.Role) clause {
	return func(sub Subject, _ Object) bool {
		for _, r := range sub.Roles {
			if r == want {
				return true
			}
		}
		return false
	}
}

func owner(sub Subject, obj Object) bool {
	return obj.Owner != "" && obj.Owner == sub.Username
}

func anyActor(Subject, Object) bool { return true }

var (
	librarian = role(model.RoleLibrarian)
	admin     = role(model.RoleAdmin)
)

// rules is evaluated as OR across the clauses of a (resource, operation)
// cell; a missing cell denies.
var rules = map[Resource]map[Operation][]clause{
	ResourceBook: {
		OpRead:   {anyActor},
		OpCreate: {librarian, admin},
		OpUpdate: {librarian, admin},
		OpDelete: {admin},
	},
	ResourceBorrowing: {
		OpRead:   {owner, librarian, admin},
		OpCreate: {owner},
		OpUpdate: {owner, librarian, admin},
	},
	ResourceReservation: {
		OpRead:   {owner, librarian, admin},
		OpCreate: {owner},
		OpUpdate: {owner, librarian, admin},
	},
	ResourceRole: {
		OpRead:   {owner},
		OpCreate: {admin},
		OpDelete: {admin},
	},
	ResourceReview: {
		OpRead:   {anyActor},
		OpCreate: {owner},
		OpUpdate: {owner},
		OpDelete: {owner, librarian, admin},
	},
}

// Can decides whether the subject may perform op on obj. It fails closed:
// an unauthenticated subject or an empty role set denies everything.
func Can(sub Subject, op Operation, obj Object) bool {
	if sub.Username == "" || len(sub.Roles) == 0 {
		return false
	}
	ops, ok := rules[obj.Resource]
	if !ok {
		return false
	}
	for _, c := range ops[op] {
		if c(sub, obj) {
			return true
		}
	}
	return false
}

// IsStaff reports whether the subject holds librarian or admin.
func IsStaff(sub Subject) bool {
	return librarian(sub, Object{}) || admin(sub, Object{})
}
