package dto_test

import (
	"testing"

	"spacebook/infras/jwt"
	"spacebook/internal/domains/auth/model/dto"
	"spacebook/shared/constant"
	"spacebook/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)
}

func TestRegisterRequest_ToUserModel(t *testing.T) {
	name := "Ada Lovelace"
	req := dto.RegisterRequest{Email: "ada@example.com", Password: "correct horse", FullName: &name}

	user := req.ToUserModel(constant.ContextGuest, "hashed")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "hashed", user.Password)
	assert.Equal(t, constant.RoleUser, user.Level)
	assert.Equal(t, &name, user.FullName)
	assert.NotNil(t, user.Roles)
	assert.Empty(t, user.Roles)
	assert.True(t, user.Active)
	assert.Equal(t, constant.ContextGuest, user.CreatedBy)
	assert.Equal(t, user.CreatedAt, user.ModifiedAt)
}

func TestChangePasswordRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.ChangePasswordRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"},
		},
		{
			name:    "too short",
			req:     dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short"},
			wantErr: true,
		},
		{
			name:    "unchanged",
			req:     dto.ChangePasswordRequest{CurrentPassword: "same-password", NewPassword: "same-password"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}
