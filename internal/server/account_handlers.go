package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Get account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} AccountDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /accounts/{id} [get]
func (s *Server) getAccount(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	account, err := s.bankingService.GetAccount(c.Request.Context(), sessionData.UserID, c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err, "load account")
		return
	}

	c.JSON(http.StatusOK, newAccountDetail(account))
}

// @Summary List a user's accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {array} AccountDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /accounts/user/{userId} [get]
func (s *Server) listUserAccounts(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	accounts, err := s.bankingService.ListAccounts(c.Request.Context(), sessionData.UserID, c.Param("userId"))
	if err != nil {
		s.respondServiceError(c, err, "list accounts")
		return
	}

	details := make([]AccountDetail, len(accounts))
	for i := range accounts {
		details[i] = newAccountDetail(&accounts[i])
	}

	c.JSON(http.StatusOK, details)
}

// @Summary Get an account's audit trail
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {array} AuditEntryDetail
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /accounts/{id}/audit [get]
func (s *Server) getAuditTrail(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	entries, err := s.bankingService.AuditTrail(c.Request.Context(), sessionData.UserID, c.Param("id"))
	if err != nil {
		s.respondServiceError(c, err, "load audit trail")
		return
	}

	details := make([]AuditEntryDetail, len(entries))
	for i := range entries {
		details[i] = newAuditEntryDetail(&entries[i])
	}

	c.JSON(http.StatusOK, details)
}
