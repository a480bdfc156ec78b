package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/utils"
)

// RoleAdmin is the role carried by tokens allowed to write.
const RoleAdmin = "ADMIN"

// AuthHandler issues access tokens for the configured admin account.
type AuthHandler struct {
	Cfg config.AuthConfig
}

func NewAuthHandler(cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

type tokenReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := bind(c, &req); err != nil {
		return err
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.AdminUser)) == 1
	passOK := h.Cfg.AdminPasswordHash != "" && utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
	if !userOK || !passOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	ttl := time.Duration(h.Cfg.AccessTTLMin) * time.Minute
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, h.Cfg.AdminUser, RoleAdmin, ttl)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenResp{Token: tok.Token, Expires: tok.Exp}})
}
