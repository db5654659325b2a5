package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/auth"
	"go.uber.org/zap"
)

// AuthHandler handles the admin login endpoint.
type AuthHandler struct {
	auth   *auth.Service
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

// Login validates credentials and returns a bearer token.
func (h *AuthHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	token, err := h.auth.Login(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized("invalid credentials")
		}

		h.logger.Error("login failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("server error")
	}

	resp := &LoginResponse{}
	resp.Body.Success = true
	resp.Body.Token = token

	return resp, nil
}
