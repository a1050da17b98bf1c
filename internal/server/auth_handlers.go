package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank-dev/corebank/internal/banking"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username         string `json:"username" validate:"required,username"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	FullName         string `json:"fullName" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"omitempty,e164"`
	Address          string `json:"address" validate:"omitempty,max=200"`
	IDDocumentNumber string `json:"idDocumentNumber" validate:"omitempty,alphanum,min=5,max=20"`
	AccountType      string `json:"accountType" validate:"required,oneof=SAVINGS CHECKING"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// @Summary Register
// @Description Creates a customer and opens one funded account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} UserDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	req.AccountType = strings.ToUpper(req.AccountType)

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, _, err := s.bankingService.Register(c.Request.Context(), banking.RegisterParams{
		Username:         req.Username,
		Password:         req.Password,
		FullName:         req.FullName,
		Email:            strings.ToLower(req.Email),
		Phone:            req.Phone,
		Address:          req.Address,
		IDDocumentNumber: req.IDDocumentNumber,
		AccountType:      req.AccountType,
	})
	if err != nil {
		s.respondServiceError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, newUserDetail(user))
}

// @Summary Login
// @Description Authenticate with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, err := s.bankingService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondServiceError(c, err, "authenticate user")
		return
	}

	// Generate JWT token
	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Username:  user.Username,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokens.TTL()).UTC(),
	})
}

// @Summary Get current user
// @Description Get information about the currently authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserDetail
// @Failure 401 {object} map[string]interface{}
// @Router /users/me [get]
func (s *Server) getCurrentUser(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := s.bankingService.GetUser(c.Request.Context(), sessionData.UserID)
	if err != nil {
		s.respondServiceError(c, err, "load current user")
		return
	}

	c.JSON(http.StatusOK, newUserDetail(user))
}
