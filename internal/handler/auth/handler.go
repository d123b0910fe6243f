package auth

import (
	"ikhtibar/internal/config"
	"ikhtibar/internal/service"
)

// Handler serves the authentication endpoints.
type Handler struct {
	authService *service.AuthService
	authCfg     *config.AuthConfig
}

// NewHandler creates the auth handler.
func NewHandler(authService *service.AuthService, authCfg *config.AuthConfig) *Handler {
	return &Handler{
		authService: authService,
		authCfg:     authCfg,
	}
}
