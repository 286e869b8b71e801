package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := Get()
	require.NotNil(t, data)

	assert.True(t, data.FindPermissions("/v1/auth/login", http.MethodPost).Skip)
	assert.False(t, data.FindPermissions("/v1/bookings", http.MethodPost).Skip)
	assert.ElementsMatch(t, []string{"admin", "superadmin"}, data.FindPermissions("/v1/resources", http.MethodPost).Permissions)
	assert.Empty(t, data.FindPermissions("/v1/resources/{id}/availability", http.MethodGet).Permissions)
}

func TestFindPermissions(t *testing.T) {
	data := &PermissionData{Endpoints: []Permission{
		{Path: "/v1/bookings", Method: http.MethodGet, Permissions: []string{"admin"}},
		{Path: "/", Method: http.MethodGet, Skip: true},
	}}

	tests := []struct {
		name   string
		path   string
		method string
		want   Permission
	}{
		{name: "exact", path: "/v1/bookings", method: http.MethodGet, want: data.Endpoints[0]},
		{name: "trailing slash", path: "/v1/bookings/", method: http.MethodGet, want: data.Endpoints[0]},
		{name: "method case", path: "/v1/bookings", method: "get", want: data.Endpoints[0]},
		{name: "root", path: "/", method: http.MethodGet, want: data.Endpoints[1]},
		{name: "unknown", path: "/v1/rooms", method: http.MethodGet, want: Permission{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, data.FindPermissions(tt.path, tt.method))
		})
	}
}
