// Package policy decides which product actions a user may perform.
//
// Rules depend only on the user's role and whether the user created the
// product; there is no per-user permission state.
package policy

import (
	"errors"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionViewAny     Action = "viewAny"
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "forceDelete"
	ActionViewTrashed Action = "viewTrashed"
)

var ErrForbidden = errors.New("this action is unauthorized")

// Can is the whole rule table. Unknown actions are denied.
func Can(role models.Role, owns bool, action Action) bool {
	admin := role == models.RoleAdmin

	switch action {
	case ActionViewAny, ActionView:
		return true
	case ActionCreate:
		return admin
	case ActionUpdate:
		return admin || owns
	case ActionDelete, ActionRestore, ActionForceDelete, ActionViewTrashed:
		return admin
	default:
		return false
	}
}

// Authorize evaluates Can for user against product. product may be nil for
// collection-level actions (viewAny, create, viewTrashed).
func Authorize(user *models.User, action Action, product *models.Product) error {
	if user == nil {
		return ErrForbidden
	}
	owns := product != nil && product.OwnedBy(user.ID)
	if !Can(user.Role, owns, action) {
		return ErrForbidden
	}
	return nil
}
