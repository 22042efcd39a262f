package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, book.ErrBookNotFound):
		return apperr.NotFound("book_not_found", "book not found", err)
	case errors.Is(err, book.ErrTitleRequired),
		errors.Is(err, book.ErrAuthorRequired),
		errors.Is(err, book.ErrEmptyUpdate):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, poll.ErrPollNotFound), errors.Is(err, vote.ErrPollNotFound):
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, poll.ErrTitleRequired), errors.Is(err, poll.ErrNoBooks):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, poll.ErrPastExpiration):
		return apperr.BadRequest("expiration_in_past", "poll expiration must be in the future", err)
	case errors.Is(err, poll.ErrDuplicateOption):
		return apperr.Conflict("duplicate_option", "book is already an option of this poll", err)
	case errors.Is(err, vote.ErrPollClosed):
		return apperr.Conflict("poll_closed", "poll is no longer accepting votes", err)
	case errors.Is(err, vote.ErrInvalidOption):
		return apperr.BadRequest("invalid_option", "book is not an option of this poll", err)
	case errors.Is(err, vote.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "you already voted in this poll", err)
	case errors.Is(err, role.ErrAlreadyGranted):
		return apperr.Conflict("role_exists", "user already holds this role", err)
	case errors.Is(err, role.ErrGrantNotFound):
		return apperr.NotFound("role_not_found", "role grant not found", err)
	case errors.Is(err, role.ErrUserRequired):
		return apperr.BadRequest("invalid_input", "user id required", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
