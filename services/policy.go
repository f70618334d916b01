package services

import "github.com/Habib-0007/habsblog-api/models"

// Actor is the authenticated (or anonymous) party making a request. A zero
// ID means unauthenticated.
type Actor struct {
	ID   uint
	Role string
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool { return a.ID == 0 }

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Action enumerates the operations the policy decides on.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionAdmin covers role changes, user deletion, global listings and
	// dashboard statistics. The resource argument is ignored.
	ActionAdmin Action = "admin"
)

// Resource is anything with an owning user.
type Resource interface {
	OwnerID() uint
}

// CanAct is the single authorization decision: given (actor, resource,
// action), allow or deny. It is pure and must be reevaluated on every
// mutating request; decisions are never cached across requests.
func CanAct(actor Actor, resource Resource, action Action) bool {
	switch action {
	case ActionAdmin:
		return actor.IsAdmin()
	case ActionUpdate, ActionDelete:
		if actor.Anonymous() || resource == nil {
			return false
		}
		return actor.ID == resource.OwnerID() || actor.IsAdmin()
	case ActionRead:
		// Published content is world-readable. Draft posts are visible
		// only to their owner or an admin.
		if post, ok := resource.(*models.Post); ok && post.Status == models.StatusDraft {
			return !actor.Anonymous() && (actor.ID == post.OwnerID() || actor.IsAdmin())
		}
		return true
	default:
		return false
	}
}
