package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jumak-kr/jumakweb/internal/auth"
	"github.com/jumak-kr/jumakweb/internal/service"
	"github.com/jumak-kr/jumakweb/internal/store"
	"github.com/jumak-kr/jumakweb/pkg/models"
)

// CreateNote: POST /api/notes
func (h *Handler) CreateNote(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var note models.TastingNote
	if err := c.BindJSON(&note); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	if note.AuthorName == "" {
		note.AuthorName = u.Name
	}
	created, err := h.svc.CreateNote(c.Request.Context(), u.Sub, &note)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// NotesByUser: GET /api/notes/user/:user_id
//
// Users may only list their own notes; anyone else's id is a 403 rather than
// an empty list, so clients can tell the difference.
func (h *Handler) NotesByUser(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	userID := c.Param("user_id")
	if userID != u.Sub {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot list another user's notes"})
		return
	}
	notes, err := h.svc.NotesByUser(c.Request.Context(), userID)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(notes)},
		"data": notes,
	})
}

// NotesByLiquor: GET /api/notes/liquor/:liquor_id
func (h *Handler) NotesByLiquor(c *gin.Context) {
	liquorID, err := strconv.Atoi(c.Param("liquor_id"))
	if err != nil || liquorID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid liquor_id"})
		return
	}
	notes, err := h.svc.NotesByLiquor(c.Request.Context(), liquorID)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(notes)},
		"data": notes,
	})
}

// PublicNotes: GET /api/notes?limit=20
func (h *Handler) PublicNotes(c *gin.Context) {
	lim := parseLimit(c.DefaultQuery("limit", "20"))
	notes, err := h.svc.PublicNotes(c.Request.Context(), lim)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meta": gin.H{"count": len(notes), "limit": lim},
		"data": notes,
	})
}

// UpdateNote: PUT /api/notes/:note_id
func (h *Handler) UpdateNote(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var note models.TastingNote
	if err := c.BindJSON(&note); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json: " + err.Error()})
		return
	}
	updated, err := h.svc.UpdateNote(c.Request.Context(), c.Param("note_id"), u.Sub, &note)
	if err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// DeleteNote: DELETE /api/notes/:note_id
func (h *Handler) DeleteNote(c *gin.Context) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := h.svc.DeleteNote(c.Request.Context(), c.Param("note_id"), u.Sub); err != nil {
		h.noteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (h *Handler) noteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("note operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
