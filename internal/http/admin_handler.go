package api

import (
	"net/http"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
	"github.com/go-chi/chi/v5"
)

// @Summary     List book club admins
// @Tags        admins
// @Security    BearerAuth
// @Produce     json
// @Success     200  {array}   role.Grant
// @Failure     403  {object}  map[string]string  "not a book club admin"
// @Router      /api/v1/admins [get]
func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	grants, err := h.roleSvc.ListAdmins(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	if grants == nil {
		grants = []role.Grant{}
	}
	writeJSON(w, http.StatusOK, grants)
}

// @Summary     Grant the book club admin role
// @Tags        admins
// @Security    BearerAuth
// @Param       userID  path      string  true  "User ID"
// @Success     201     {object}  role.Grant
// @Failure     403     {object}  map[string]string  "not a book club admin"
// @Failure     409     {object}  map[string]string  "already granted"
// @Router      /api/v1/admins/{userID} [post]
func (h *Handler) handleGrantAdmin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	g, err := h.roleSvc.GrantAdmin(r.Context(), userID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// @Summary     Revoke the book club admin role
// @Tags        admins
// @Security    BearerAuth
// @Param       userID  path  string  true  "User ID"
// @Success     204
// @Failure     403     {object}  map[string]string  "not a book club admin"
// @Failure     404     {object}  map[string]string  "grant not found"
// @Router      /api/v1/admins/{userID} [delete]
func (h *Handler) handleRevokeAdmin(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.roleSvc.RevokeAdmin(r.Context(), userID); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
