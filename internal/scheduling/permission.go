package scheduling

import (
	"slices"

	resourceModel "spacebook/internal/domains/resource/model"
	"spacebook/shared/principal"
)

// CanBook decides whether p may book resource. Rules are evaluated in order
// and the first match wins:
//
//  1. admins may always book
//  2. admin_only resources reject everyone else
//  3. a principal listed in allowed_user_ids may book
//  4. a principal holding one of the resource roles may book
//  5. a resource with neither list set is open to every principal
//  6. otherwise the principal is rejected
//
// Publication state is not considered here; callers check it separately.
func CanBook(resource resourceModel.Resource, p principal.Principal) bool {
	if p.IsAdmin {
		return true
	}

	if resource.IsAdminOnly() {
		return false
	}

	if len(resource.AllowedUserIDs) > 0 && slices.Contains(resource.AllowedUserIDs, p.ID) {
		return true
	}

	if len(resource.Roles) > 0 && slices.ContainsFunc(resource.Roles, p.HasRole) {
		return true
	}

	return len(resource.AllowedUserIDs) == 0 && len(resource.Roles) == 0
}

// Open reports whether resource accepts bookings from p at all. Archived
// resources are closed to everyone; drafts are open to admins only.
func Open(resource resourceModel.Resource, p principal.Principal) bool {
	if resource.Status == resourceModel.StatusArchived {
		return false
	}

	return p.IsAdmin || resource.IsPublished()
}

// Bookable combines Open and CanBook. Read hints and the booking write path
// both go through it.
func Bookable(resource resourceModel.Resource, p principal.Principal) bool {
	return Open(resource, p) && CanBook(resource, p)
}
