package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

// VerificationHandlers handles the send/redeem HTTP requests
type VerificationHandlers struct {
	verificationSvc domain.VerificationService
	logger          *zap.Logger
}

// NewVerificationHandlers creates new verification handlers
func NewVerificationHandlers(verificationSvc domain.VerificationService, logger *zap.Logger) *VerificationHandlers {
	return &VerificationHandlers{
		verificationSvc: verificationSvc,
		logger:          logging.OrNop(logger).Named("http"),
	}
}

// SendCodeRequest represents a code request
type SendCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// RedeemRequest represents a code redemption
type RedeemRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// SendCode handles POST /verification/send
func (h *VerificationHandlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number is required"})
		return
	}

	result, err := h.verificationSvc.SendCode(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		status, msg := errorResponse(c, err)
		h.logFailure("send code", status, err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"expiresAt": result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Redeem handles POST /verification/redeem
func (h *VerificationHandlers) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "verified": false, "error": "Phone number and code are required"})
		return
	}

	result, err := h.verificationSvc.Redeem(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		status, msg := errorResponse(c, err)
		h.logFailure("redeem code", status, err)
		c.JSON(status, gin.H{"success": false, "verified": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"verified": true,
		"user":     userJSON(result.User),
		"session": gin.H{
			"id":          result.Session.ID,
			"accessToken": result.AccessToken,
			"tokenType":   "Bearer",
			"expiresIn":   result.ExpiresIn,
		},
	})
}

func (h *VerificationHandlers) logFailure(op string, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.Int("status", status), zap.Error(err))
		return
	}
	h.logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
}

func userJSON(user *domain.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"phoneNumber":     user.PhoneNumber,
		"displayName":     user.DisplayName,
		"avatarUrl":       user.AvatarURL,
		"isAuthenticated": true,
	}
}
