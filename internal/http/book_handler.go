package api

import (
	"encoding/json"
	"net/http"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/platform/apperr"
)

type createBookRequest struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description *string `json:"description"`
	BuyURL      *string `json:"buy_url"`
	ReadingDate *string `json:"reading_date"`
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	BuyURL      *string `json:"buy_url"`
	ReadingDate *string `json:"reading_date"`
}

// @Summary     List books
// @Tags        books
// @Produce     json
// @Param       shelf  query     string  false  "Filter: read or unread"
// @Success     200    {array}   book.Book
// @Failure     400    {object}  map[string]string  "unknown shelf"
// @Failure     500    {object}  map[string]string  "server error"
// @Router      /api/v1/books [get]
func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	var (
		books []book.Book
		err   error
	)

	switch shelf := r.URL.Query().Get("shelf"); shelf {
	case "":
		books, err = h.bookSvc.ListAll(r.Context())
	case "read":
		books, err = h.bookSvc.ListRead(r.Context())
	case "unread":
		books, err = h.bookSvc.ListUnread(r.Context())
	default:
		errorResponse(w, apperr.BadRequest("invalid_input", "unknown shelf: "+shelf, nil))
		return
	}
	if err != nil {
		errorResponse(w, err)
		return
	}

	if books == nil {
		books = []book.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid book id", err))
		return
	}

	b, err := h.bookSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// @Summary     Create book
// @Tags        books
// @Security    BearerAuth
// @Accept      json
// @Param       request  body      createBookRequest  true  "Book fields"
// @Success     201      {object}  book.Book
// @Failure     400      {object}  map[string]string  "missing title or author"
// @Failure     403      {object}  map[string]string  "not a book club admin"
// @Router      /api/v1/books [post]
func (h *Handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	b := &book.Book{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		BuyURL:      req.BuyURL,
		ReadingDate: parseTimePtr(req.ReadingDate),
	}

	if err := h.bookSvc.Create(r.Context(), b); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid book id", err))
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	b, err := h.bookSvc.Update(r.Context(), id, book.Update{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		BuyURL:      req.BuyURL,
		ReadingDate: parseTimePtr(req.ReadingDate),
	})
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// @Summary     Soft-delete book
// @Tags        books
// @Security    BearerAuth
// @Param       id   path  int64  true  "Book ID"
// @Success     204
// @Failure     403  {object}  map[string]string  "not a book club admin"
// @Failure     404  {object}  map[string]string  "book not found"
// @Router      /api/v1/books/{id} [delete]
func (h *Handler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid book id", err))
		return
	}

	if err := h.bookSvc.SoftDelete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxCoverBytes = 5 << 20

func (h *Handler) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid book id", err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)
	file, header, err := r.FormFile("cover")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "cover file required", err))
		return
	}
	defer file.Close()

	b, err := h.bookSvc.UploadCover(r.Context(), id, header.Filename, file)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) handleRemoveCover(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid book id", err))
		return
	}

	if err := h.bookSvc.RemoveCover(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
