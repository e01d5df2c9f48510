package authhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/captcha"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

const captchaIDHeader = "X-Captcha-ID"

// AuthHandler handles registration, login and captcha challenges.
type AuthHandler struct {
	users    *user.Service
	issuer   *auth.TokenIssuer
	captchas *captcha.Manager
	logger   zerolog.Logger
}

func NewAuthHandler(users *user.Service, issuer *auth.TokenIssuer, captchas *captcha.Manager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, captchas: captchas, logger: logger}
}

// Captcha returns a fresh challenge image. The challenge id travels in the
// X-Captcha-ID response header, the PNG in the body.
func (h *AuthHandler) Captcha(c *gin.Context) {
	challenge, err := h.captchas.Generate(c.Request.Context())
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.Header(captchaIDHeader, challenge.ID)
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if _, err := challenge.Image.WriteTo(c.Writer); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write captcha image")
	}
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id" binding:"required"`
	CaptchaCode string `json:"captcha_code" binding:"required"`
}

type registerResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Register creates a new account after the captcha challenge is solved.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		platformerrors.WriteValidationError(c, "invalid request body")
		return
	}
	ok, err := h.captchas.Verify(c.Request.Context(), req.CaptchaID, req.CaptchaCode)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	if !ok {
		platformerrors.WriteValidationError(c, "captcha verification failed")
		return
	}
	usr, err := h.users.Register(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, registerResponse{ID: usr.ID, Name: usr.Name})
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates form credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	name := c.PostForm("username")
	password := c.PostForm("password")
	if name == "" || password == "" {
		platformerrors.WriteValidationError(c, "username and password are required")
		return
	}
	usr, err := h.users.Authenticate(c.Request.Context(), name, password)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	token, err := h.issuer.Issue(c.Request.Context(), usr.ID, usr.Name)
	if err != nil {
		platformerrors.WriteError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
