package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/apperr"
)

type createPollRequest struct {
	Title            string `json:"title"`
	ExpiresAt        string `json:"expires_at"`
	IncludeReadBooks bool   `json:"include_read_books"`
}

type addOptionsRequest struct {
	BookIDs []int64 `json:"book_ids"`
}

// @Summary     List active polls
// @Tags        polls
// @Produce     json
// @Success     200  {array}   poll.Poll
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /api/v1/polls [get]
func (h *Handler) handleListActivePolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.ListActive(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	if polls == nil {
		polls = []poll.Poll{}
	}
	writeJSON(w, http.StatusOK, polls)
}

// @Summary     List all polls, including closed ones
// @Tags        polls
// @Security    BearerAuth
// @Produce     json
// @Success     200  {array}   poll.Poll
// @Failure     403  {object}  map[string]string  "not a book club admin"
// @Router      /api/v1/polls/all [get]
func (h *Handler) handleListAllPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.ListAll(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	if polls == nil {
		polls = []poll.Poll{}
	}
	writeJSON(w, http.StatusOK, polls)
}

// @Summary     Create poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Param       request  body      createPollRequest  true  "Poll fields"
// @Success     201      {object}  poll.Poll
// @Failure     400      {object}  map[string]string  "missing title or past expiration"
// @Failure     403      {object}  map[string]string  "not a book club admin"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "expires_at must be RFC3339", err))
		return
	}

	ident, _ := identityFromCtx(r)
	p := &poll.Poll{
		Title:            req.Title,
		ExpiresAt:        expiresAt,
		IncludeReadBooks: req.IncludeReadBooks,
		CreatedBy:        ident.ID,
	}

	if err := h.pollSvc.Create(r.Context(), p); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// @Summary     Add book options to a poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Param       id       path      int64              true  "Poll ID"
// @Param       request  body      addOptionsRequest  true  "Book IDs"
// @Success     201      {array}   poll.Option
// @Failure     404      {object}  map[string]string  "poll or book not found"
// @Failure     409      {object}  map[string]string  "duplicate option"
// @Router      /api/v1/polls/{id}/options [post]
func (h *Handler) handleAddOptions(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req addOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	opts, err := h.pollSvc.AddOptions(r.Context(), pollID, req.BookIDs)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, opts)
}

// @Summary     List a poll's options with their books
// @Tags        polls
// @Produce     json
// @Param       id   path      int64  true  "Poll ID"
// @Success     200  {array}   poll.OptionWithBook
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Router      /api/v1/polls/{id}/options [get]
func (h *Handler) handleListOptions(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	opts, err := h.pollSvc.ListOptions(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if opts == nil {
		opts = []poll.OptionWithBook{}
	}
	writeJSON(w, http.StatusOK, opts)
}
