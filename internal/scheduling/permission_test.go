package scheduling_test

import (
	"testing"

	resourceModel "spacebook/internal/domains/resource/model"
	"spacebook/internal/scheduling"
	"spacebook/shared/constant"
	"spacebook/shared/principal"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

const (
	userID    = "2f5d3a4e-1111-4c57-9d59-6e9c1a2b3c4d"
	otherID   = "2f5d3a4e-2222-4c57-9d59-6e9c1a2b3c4d"
	roleEng   = "7a1c0e52-aaaa-4f0a-8d55-3b2b1f7c9e10"
	roleSales = "7a1c0e52-bbbb-4f0a-8d55-3b2b1f7c9e10"
)

func restriction(value string) *string {
	return &value
}

func resource(mutate func(r *resourceModel.Resource)) resourceModel.Resource {
	r := resourceModel.Resource{ID: "r-1", Name: "Quiet Room", Status: resourceModel.StatusPublished}
	if mutate != nil {
		mutate(&r)
	}

	return r
}

func user(roles ...string) principal.Principal {
	return principal.New(userID, "Ada", "ada@example.com", constant.RoleUser, roles)
}

func admin() principal.Principal {
	return principal.New(userID, "Ada", "ada@example.com", constant.RoleAdmin, nil)
}

func TestCanBook(t *testing.T) {
	tests := []struct {
		name      string
		resource  resourceModel.Resource
		principal principal.Principal
		expected  bool
	}{
		{
			name:      "admin bypasses admin_only",
			resource:  resource(func(r *resourceModel.Resource) { r.BookingRestriction = restriction(resourceModel.RestrictionAdminOnly) }),
			principal: admin(),
			expected:  true,
		},
		{
			name:      "admin_only rejects user even when listed",
			resource:  resource(func(r *resourceModel.Resource) { r.BookingRestriction = restriction(resourceModel.RestrictionAdminOnly); r.AllowedUserIDs = pq.StringArray{userID} }),
			principal: user(),
			expected:  false,
		},
		{
			name:      "allowed user",
			resource:  resource(func(r *resourceModel.Resource) { r.AllowedUserIDs = pq.StringArray{otherID, userID} }),
			principal: user(),
			expected:  true,
		},
		{
			name:      "matching role",
			resource:  resource(func(r *resourceModel.Resource) { r.Roles = pq.StringArray{roleEng} }),
			principal: user(roleSales, roleEng),
			expected:  true,
		},
		{
			name:      "open resource",
			resource:  resource(func(r *resourceModel.Resource) { r.BookingRestriction = restriction(resourceModel.RestrictionAllUsers) }),
			principal: user(),
			expected:  true,
		},
		{
			name:      "not listed and no role",
			resource:  resource(func(r *resourceModel.Resource) { r.AllowedUserIDs = pq.StringArray{otherID}; r.Roles = pq.StringArray{roleEng} }),
			principal: user(roleSales),
			expected:  false,
		},
		{
			name:      "roles set but principal has none",
			resource:  resource(func(r *resourceModel.Resource) { r.Roles = pq.StringArray{roleEng} }),
			principal: user(),
			expected:  false,
		},
		{
			name:      "unpublished does not matter to CanBook",
			resource:  resource(func(r *resourceModel.Resource) { r.Status = resourceModel.StatusDraft }),
			principal: user(),
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scheduling.CanBook(tt.resource, tt.principal))
		})
	}
}

func TestCanBook_MonotonicInAdmin(t *testing.T) {
	restrictions := []*string{nil, restriction(resourceModel.RestrictionAllUsers), restriction(resourceModel.RestrictionAdminOnly)}
	allowed := []pq.StringArray{nil, {userID}, {otherID}}
	roles := []pq.StringArray{nil, {roleEng}, {roleSales}}
	principalRoles := [][]string{nil, {roleEng}}

	for _, res := range restrictions {
		for _, ids := range allowed {
			for _, resourceRoles := range roles {
				for _, held := range principalRoles {
					r := resource(func(r *resourceModel.Resource) {
						r.BookingRestriction = res
						r.AllowedUserIDs = ids
						r.Roles = resourceRoles
					})

					p := user(held...)
					if !scheduling.CanBook(r, p) {
						continue
					}

					p.IsAdmin = true
					assert.True(t, scheduling.CanBook(r, p))
				}
			}
		}
	}
}

func TestBookable(t *testing.T) {
	draft := resource(func(r *resourceModel.Resource) { r.Status = resourceModel.StatusDraft })
	archived := resource(func(r *resourceModel.Resource) { r.Status = resourceModel.StatusArchived })

	assert.False(t, scheduling.Bookable(draft, user()))
	assert.False(t, scheduling.Bookable(archived, user()))
	assert.True(t, scheduling.Bookable(draft, admin()))
	assert.False(t, scheduling.Bookable(archived, admin()))
	assert.True(t, scheduling.Bookable(resource(nil), user()))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		principal principal.Principal
		expected  bool
	}{
		{name: "published for user", status: resourceModel.StatusPublished, principal: user(), expected: true},
		{name: "draft for user", status: resourceModel.StatusDraft, principal: user(), expected: false},
		{name: "draft for admin", status: resourceModel.StatusDraft, principal: admin(), expected: true},
		{name: "archived for user", status: resourceModel.StatusArchived, principal: user(), expected: false},
		{name: "archived for admin", status: resourceModel.StatusArchived, principal: admin(), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resource(func(r *resourceModel.Resource) { r.Status = tt.status })

			assert.Equal(t, tt.expected, scheduling.Open(r, tt.principal))
		})
	}
}
