package http

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"testing"

	"github.com/dkeye/StudyHub/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	req := require.New(t)
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, nethttp.StatusNotFound},
		{fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrNotMember), nethttp.StatusForbidden},
		{domain.ErrConflict, nethttp.StatusConflict},
		{fmt.Errorf("%w: token expired", domain.ErrAuthentication), nethttp.StatusUnauthorized},
		{fmt.Errorf("%w: s1", domain.ErrRateLimited), nethttp.StatusTooManyRequests},
		{domain.ErrRoomDescTooLong, nethttp.StatusBadRequest},
		{fmt.Errorf("%w: u9", domain.ErrAssigneeNotMember), nethttp.StatusBadRequest},
		{domain.ErrNoteContentEmpty, nethttp.StatusBadRequest},
		{domain.ErrCommentTooLong, nethttp.StatusBadRequest},
		{domain.ErrEventRange, nethttp.StatusBadRequest},
		{domain.ErrResetTokenInvalid, nethttp.StatusBadRequest},
		{errors.New("disk full"), nethttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		req.Equal(tc.want, statusOf(tc.err), tc.err.Error())
	}
}
