package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// errorResponse maps a service error to an HTTP status and a client safe message
func errorResponse(c *gin.Context, err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidPhoneNumber):
		return http.StatusBadRequest, "Invalid phone number"
	case errors.Is(err, domain.ErrInvalidOrExpiredCode):
		return http.StatusBadRequest, "Invalid or expired verification code"
	case errors.Is(err, domain.ErrRateLimited):
		var rle *domain.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			c.Header("Retry-After", strconv.FormatInt(int64(rle.RetryAfter.Seconds()), 10))
		}
		return http.StatusTooManyRequests, "Too many requests, please try again later"
	case errors.Is(err, domain.ErrIdentityIssuanceFailed):
		return http.StatusInternalServerError, "Verification succeeded but sign-in failed, please request a new code"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusBadGateway, "Failed to send verification code"
	case errors.Is(err, domain.ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrTokenMalformed):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "Session invalid or expired"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
