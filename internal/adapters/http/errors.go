package http

import (
	"errors"
	nethttp "net/http"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var badRequest = []error{
	domain.ErrRoomNameEmpty,
	domain.ErrRoomNameTooLong,
	domain.ErrRoomDescTooLong,
	domain.ErrVisibilityInvalid,
	domain.ErrMessageEmpty,
	domain.ErrMessageTooLong,
	domain.ErrTaskTitleEmpty,
	domain.ErrTaskStatusInvalid,
	domain.ErrAssigneeNotMember,
	domain.ErrNoteTitleEmpty,
	domain.ErrNoteTitleTooLong,
	domain.ErrNoteContentEmpty,
	domain.ErrCommentEmpty,
	domain.ErrCommentTooLong,
	domain.ErrEventTitleEmpty,
	domain.ErrEventTitleTooLong,
	domain.ErrEventRange,
	domain.ErrResetTokenInvalid,
	domain.ErrPasswordTooShort,
	domain.ErrUserNameEmpty,
	domain.ErrUserNameTooLong,
	domain.ErrEmailInvalid,
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nethttp.StatusNotFound
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotMember):
		return nethttp.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return nethttp.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAuthentication):
		return nethttp.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return nethttp.StatusTooManyRequests
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return nethttp.StatusBadRequest
		}
	}
	return nethttp.StatusInternalServerError
}

// respondError writes {"error": msg}. Internal errors are logged and not exposed.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	switch status {
	case nethttp.StatusInternalServerError:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		msg = "Server error"
	case nethttp.StatusNotFound:
		msg = "Not found"
	case nethttp.StatusForbidden:
		msg = "Forbidden"
	case nethttp.StatusUnauthorized:
		msg = "Invalid credentials"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func respondInvalid(c *gin.Context, err error) {
	c.AbortWithStatusJSON(nethttp.StatusBadRequest, gin.H{"error": err.Error()})
}
