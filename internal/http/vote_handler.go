package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/apperr"
	"github.com/bitcoindistrict/bookclub-api/internal/retry"
	"github.com/bitcoindistrict/bookclub-api/internal/worker"
)

type castVoteRequest struct {
	BookID int64 `json:"book_id"`
}

type pollResultsResponse struct {
	PollID     int64         `json:"poll_id"`
	TotalVotes int64         `json:"total_votes"`
	Results    []vote.Result `json:"results"`
}

type dashboardEntry struct {
	Poll       poll.Poll     `json:"poll"`
	Results    []vote.Result `json:"results"`
	TotalVotes int64         `json:"total_votes"`
	MyVote     *vote.Vote    `json:"my_vote"`
}

// @Summary     Cast a vote
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       id       path      int64            true  "Poll ID"
// @Param       request  body      castVoteRequest  true  "Chosen book"
// @Success     201      {object}  vote.Vote
// @Failure     400      {object}  map[string]string  "invalid body or option"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Failure     404      {object}  map[string]string  "poll not found"
// @Failure     409      {object}  map[string]string  "poll closed or already voted"
// @Router      /api/v1/polls/{id}/vote [post]
func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.BookID == 0 {
		errorResponse(w, apperr.BadRequest("invalid_input", "book_id is required", nil))
		return
	}

	ident, _ := identityFromCtx(r)

	v, err := h.voteSvc.Cast(r.Context(), pollID, req.BookID, ident.ID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	select {
	case h.voteCh <- worker.VoteEvent{PollID: pollID, BookID: req.BookID, VoterID: ident.ID}:
	default:
	}

	writeJSON(w, http.StatusCreated, v)
}

// @Summary     The caller's own vote in a poll
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      int64  true  "Poll ID"
// @Success     200  {object}  map[string]any
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Router      /api/v1/polls/{id}/vote [get]
func (h *Handler) handleMyVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	ident, _ := identityFromCtx(r)

	v, err := h.voteSvc.ForVoter(r.Context(), pollID, ident.ID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vote": v})
}

// @Summary     Poll results
// @Tags        polls
// @Produce     json
// @Param       id   path      int64  true  "Poll ID"
// @Success     200  {object}  pollResultsResponse
// @Failure     404  {object}  map[string]string  "poll not found"
// @Router      /api/v1/polls/{id}/results [get]
func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	// default to the redacted projection; only a verified admin gets
	// voter identities
	publicView := true
	if ident, ok := identityFromCtx(r); ok {
		admin, err := h.roleSvc.IsAdmin(r.Context(), ident.ID)
		if err != nil {
			slogLogger.Warn("admin check failed, serving public view",
				"poll_id", pollID, "err", err)
		}
		publicView = err != nil || !admin
	}

	results, total, err := h.voteSvc.Results(r.Context(), pollID, publicView)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if results == nil {
		results = []vote.Result{}
	}

	writeJSON(w, http.StatusOK, pollResultsResponse{
		PollID:     pollID,
		TotalVotes: total,
		Results:    results,
	})
}

// @Summary     Book club dashboard
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Success     200  {array}   dashboardEntry
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Router      /api/v1/bookclub [get]
//
// Per-poll aggregation fans out concurrently; a poll whose results cannot
// be fetched after retries is logged and dropped from the response rather
// than failing the whole dashboard.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFromCtx(r)
	ctx := r.Context()

	polls, err := h.pollSvc.ListActive(ctx)
	if err != nil {
		errorResponse(w, err)
		return
	}

	entries := make([]dashboardEntry, len(polls))
	loaded := make([]bool, len(polls))

	var wg sync.WaitGroup
	for i := range polls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := polls[i]

			var results []vote.Result
			var total int64
			err := retry.DoWithRetry(ctx, 3, 100*time.Millisecond, func() error {
				var rerr error
				results, total, rerr = h.voteSvc.Results(ctx, p.ID, true)
				return rerr
			})
			if err != nil {
				slogLogger.Warn("dropping poll from dashboard",
					"poll_id", p.ID, "err", err)
				return
			}

			mine, err := h.voteSvc.ForVoter(ctx, p.ID, ident.ID)
			if err != nil {
				slogLogger.Warn("dropping poll from dashboard",
					"poll_id", p.ID, "err", err)
				return
			}

			entries[i] = dashboardEntry{
				Poll:       p,
				Results:    results,
				TotalVotes: total,
				MyVote:     mine,
			}
			loaded[i] = true
		}(i)
	}
	wg.Wait()

	out := make([]dashboardEntry, 0, len(entries))
	for i := range entries {
		if loaded[i] {
			out = append(out, entries[i])
		}
	}
	writeJSON(w, http.StatusOK, out)
}
