package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"spacebook/config"
	"spacebook/infras/jwt"
	jwtMocks "spacebook/infras/jwt/mocks"
	otelMocks "spacebook/infras/otel/mocks"
	userMocks "spacebook/internal/domains/user/service/mocks"
	"spacebook/permissions"
	"spacebook/shared/constant"
	"spacebook/shared/failure"
	"spacebook/shared/principal"
	"spacebook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const (
	userID = "c0000000-0000-4000-8000-000000000003"
	apiKey = "internal-key"
)

var admins = []string{constant.RoleAdmin, constant.RoleSuperAdmin}

func newRouter(t *testing.T) (*chi.Mux, *jwtMocks.MockJWT, *userMocks.MockUser) {
	t.Helper()

	ctrl := gomock.NewController(t)
	jwtService := jwtMocks.NewMockJWT(ctrl)
	users := userMocks.NewMockUser(ctrl)

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey

	perms := &permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/auth/login", Method: http.MethodPost, Skip: true},
		{Path: "/v1/bookings/", Method: http.MethodGet, Permissions: admins},
		{Path: "/v1/bookings/mine", Method: http.MethodGet},
	}}

	m := middleware.NewAuthRoleMiddleware(jwtService, users, otelMocks.NewOtel(), perms, cfg)

	router := chi.NewRouter()
	router.Use(m.APIKey, m.Auth, m.RBAC)

	whoami := func(w http.ResponseWriter, r *http.Request) {
		p, _ := principal.FromContext(r.Context())
		w.Header().Set("X-Principal", p.ID)
		w.WriteHeader(http.StatusOK)
	}

	router.Post("/v1/auth/login", whoami)
	router.Route("/v1/bookings", func(r chi.Router) {
		r.Get("/", whoami)
		r.Get("/mine", whoami)
	})

	return router, jwtService, users
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		header        http.Header
		setup         func(jwtService *jwtMocks.MockJWT, users *userMocks.MockUser)
		wantCode      int
		wantPrincipal string
	}{
		{
			name:     "public endpoint skips authentication",
			method:   http.MethodPost,
			path:     "/v1/auth/login",
			wantCode: http.StatusOK,
		},
		{
			name:     "missing header",
			method:   http.MethodGet,
			path:     "/v1/bookings/mine",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed header",
			method:   http.MethodGet,
			path:     "/v1/bookings/mine",
			header:   http.Header{constant.RequestHeaderAuthorization: {"Token abc"}},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/v1/bookings/mine",
			header: http.Header{constant.RequestHeaderAuthorization: {"Bearer abc"}},
			setup: func(jwtService *jwtMocks.MockJWT, _ *userMocks.MockUser) {
				jwtService.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "deactivated account",
			method: http.MethodGet,
			path:   "/v1/bookings/mine",
			header: http.Header{constant.RequestHeaderAuthorization: {"Bearer abc"}},
			setup: func(jwtService *jwtMocks.MockJWT, users *userMocks.MockUser) {
				jwtService.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				users.EXPECT().Principal(gomock.Any(), userID).Return(principal.Principal{}, failure.Unauthorized("account is not active"))
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "user reaches own bookings",
			method: http.MethodGet,
			path:   "/v1/bookings/mine",
			header: http.Header{constant.RequestHeaderAuthorization: {"Bearer abc"}},
			setup: func(jwtService *jwtMocks.MockJWT, users *userMocks.MockUser) {
				jwtService.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				users.EXPECT().Principal(gomock.Any(), userID).Return(principal.New(userID, "Ada", "ada@example.com", constant.RoleUser, nil), nil)
			},
			wantCode:      http.StatusOK,
			wantPrincipal: userID,
		},
		{
			name:   "user cannot list every booking",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: http.Header{constant.RequestHeaderAuthorization: {"Bearer abc"}},
			setup: func(jwtService *jwtMocks.MockJWT, users *userMocks.MockUser) {
				jwtService.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				users.EXPECT().Principal(gomock.Any(), userID).Return(principal.New(userID, "Ada", "ada@example.com", constant.RoleUser, nil), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "admin lists every booking",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: http.Header{constant.RequestHeaderAuthorization: {"Bearer abc"}},
			setup: func(jwtService *jwtMocks.MockJWT, users *userMocks.MockUser) {
				jwtService.EXPECT().ValidateToken("abc", jwt.AccessToken).Return(&jwt.Claims{UserID: userID}, nil)
				users.EXPECT().Principal(gomock.Any(), userID).Return(principal.New(userID, "Ada", "ada@example.com", constant.RoleAdmin, nil), nil)
			},
			wantCode:      http.StatusOK,
			wantPrincipal: userID,
		},
		{
			name:          "internal caller acts as system",
			method:        http.MethodGet,
			path:          "/v1/bookings",
			header:        http.Header{constant.RequestHeaderAPIKey: {apiKey}},
			wantCode:      http.StatusOK,
			wantPrincipal: constant.ContextSystem,
		},
		{
			name:     "wrong api key",
			method:   http.MethodGet,
			path:     "/v1/bookings",
			header:   http.Header{constant.RequestHeaderAPIKey: {"guess"}},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService, users := newRouter(t)
			if tt.setup != nil {
				tt.setup(jwtService, users)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, values := range tt.header {
				for _, value := range values {
					req.Header.Add(key, value)
				}
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantPrincipal != "" {
				assert.Equal(t, tt.wantPrincipal, rec.Header().Get("X-Principal"))
			}
		})
	}
}
