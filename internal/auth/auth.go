// Package auth issues and checks session tokens for the admin panel and for
// service accounts. Credentials are not stored here: the admin password and
// the per-service codes live inside the shared document.
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/config"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/document"
)

const TokenDuration = 24 * time.Hour

const (
	RoleAdmin   = "admin"
	RoleService = "service"
)

type AuthHandler struct {
	cfg  *config.Config
	repo *document.Repository
}

func NewAuthHandler(cfg *config.Config, repo *document.Repository) *AuthHandler {
	return &AuthHandler{cfg: cfg, repo: repo}
}

type LoginInput struct {
	Body struct {
		Role    string `json:"role" enum:"admin,service" doc:"Login as admin or as a service account"`
		Service string `json:"service,omitempty" doc:"Service name, required when role is service"`
		Secret  string `json:"secret" doc:"Admin password or service access code"`
	}
}

type LoginOutput struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Role    string `json:"role"`
		Service string `json:"service,omitempty"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	data, err := h.repo.Get(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load data")
	}

	secret := strings.TrimSpace(input.Body.Secret)
	serviceName := ""

	switch input.Body.Role {
	case RoleAdmin:
		if subtle.ConstantTimeCompare([]byte(secret), []byte(data.AdminPassword)) != 1 {
			return nil, huma.Error401Unauthorized("Mot de passe incorrect")
		}
	case RoleService:
		ok := false
		for _, s := range data.Services {
			if s.Name == input.Body.Service && subtle.ConstantTimeCompare([]byte(secret), []byte(s.Code)) == 1 {
				ok = true
				serviceName = s.Name
				break
			}
		}
		if !ok {
			return nil, huma.Error401Unauthorized("Nom de service ou code d'accès incorrect")
		}
	default:
		return nil, huma.Error400BadRequest("Unknown role")
	}

	token, err := h.GenerateToken(input.Body.Role, serviceName)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	cookie := http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}

	out := &LoginOutput{SetCookie: cookie.String()}
	out.Body.Role = input.Body.Role
	out.Body.Service = serviceName
	return out, nil
}

type MeInput struct {
	Cookie string `header:"Cookie"`
}

type MeOutput struct {
	Body struct {
		Role    string `json:"role"`
		Service string `json:"service,omitempty"`
	}
}

func (h *AuthHandler) HandleMe(_ context.Context, input *MeInput) (*MeOutput, error) {
	role, service, err := h.sessionFromCookieHeader(input.Cookie)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	out := &MeOutput{}
	out.Body.Role = role
	out.Body.Service = service
	return out, nil
}

func (h *AuthHandler) GenerateToken(role, service string) (string, error) {
	claims := jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(TokenDuration).Unix(),
	}
	if service != "" {
		claims["service"] = service
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) parseToken(tokenString string) (role, service string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return "", fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}
	role, _ = claims["role"].(string)
	service, _ = claims["service"].(string)
	if role == "" {
		return "", "", fmt.Errorf("invalid token claims")
	}
	return role, service, nil
}

// sessionFromCookieHeader extracts the auth_token cookie from a raw Cookie
// header, as huma hands it to us.
func (h *AuthHandler) sessionFromCookieHeader(header string) (role, service string, err error) {
	req := http.Request{Header: http.Header{"Cookie": []string{header}}}
	cookie, err := req.Cookie("auth_token")
	if err != nil {
		return "", "", err
	}
	return h.parseToken(cookie.Value)
}

// RequireAdmin is the check huma handlers use for admin-only endpoints.
func (h *AuthHandler) RequireAdmin(cookieHeader string) error {
	role, _, err := h.sessionFromCookieHeader(cookieHeader)
	if err != nil {
		return huma.Error401Unauthorized("Unauthorized")
	}
	if role != RoleAdmin {
		return huma.Error403Forbidden("Admin access required")
	}
	return nil
}
