package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corebank-dev/corebank/internal/banking"
)

// TransferRequest represents a transfer request
type TransferRequest struct {
	SourceAccountNumber      string  `json:"sourceAccountNumber" validate:"required,numeric"`
	DestinationAccountNumber string  `json:"destinationAccountNumber" validate:"required,numeric"`
	Amount                   float64 `json:"amount" validate:"gt=0,money"`
	Description              string  `json:"description" validate:"max=140"`
}

// @Summary Transfer funds
// @Description Moves money from one of the caller's accounts to any active account
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "Transfer request"
// @Success 201 {object} TransferDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /transfers [post]
func (s *Server) createTransfer(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	result, err := s.bankingService.Transfer(c.Request.Context(), banking.TransferParams{
		InitiatorID:              sessionData.UserID,
		InitiatorUsername:        sessionData.Username,
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		AmountCents:              int64(math.Round(req.Amount * 100)),
		Description:              req.Description,
	})
	if err != nil {
		s.respondServiceError(c, err, "execute transfer")
		return
	}

	c.JSON(http.StatusCreated, TransferDetail{
		TransactionID:            result.Transaction.ID,
		Status:                   result.Transaction.Status,
		SourceAccountNumber:      result.SourceAccountNumber,
		DestinationAccountNumber: result.DestinationAccountNumber,
		Amount:                   toUnits(result.Transaction.AmountCents),
		Description:              result.Transaction.Description,
		CreatedAt:                result.Transaction.CreatedAt,
	})
}
