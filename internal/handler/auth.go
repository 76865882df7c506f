package handler

import (
	"CloudStash/internal/dto"
	"CloudStash/internal/service"
	"CloudStash/utils"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	users  *service.UserService
	tokens *utils.TokenStore
}

// NewAuthHandler wires the auth endpoints.
func NewAuthHandler(users *service.UserService, tokens *utils.TokenStore) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register creates an account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.users.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmailTaken):
			utils.Fail(c, err)
		default:
			utils.FailStatus(c, http.StatusInternalServerError, err)
		}
		return
	}

	// Mail is best effort and never blocks registration.
	if utils.SMTPConfigured() {
		if err := utils.SendWelcomeMail(user.Email); err != nil {
			log.Println("send welcome mail failed:", err)
		}
	}

	utils.Success(c, gin.H{"email": user.Email})
}

// Login checks credentials and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.FailStatus(c, http.StatusUnauthorized, err)
			return
		}
		utils.FailStatus(c, http.StatusInternalServerError, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, err)
		return
	}
	utils.Success(c, dto.LoginResponse{Token: token, Email: user.Email})
}

// Logout revokes the presented token for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("token_jti")
	ttl := time.Duration(0)
	if exp, ok := c.Get("token_exp"); ok {
		if expTime, ok := exp.(time.Time); ok {
			ttl = time.Until(expTime)
		}
	}
	if err := h.tokens.Revoke(c.Request.Context(), jti, ttl); err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, err)
		return
	}
	utils.Success(c, gin.H{"msg": "logged out"})
}
