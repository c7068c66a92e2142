package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/service"
)

// NoteHandler expone el CRUD de notas del usuario autenticado.
type NoteHandler struct {
	logger  *zap.Logger
	noteSvc *service.NoteService
}

func NewNoteHandler(logger *zap.Logger, noteSvc *service.NoteService) *NoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteHandler{logger: logger, noteSvc: noteSvc}
}

// List maneja GET /api/notes.
func (h *NoteHandler) List(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}
	notes, err := h.noteSvc.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, "list notes", err)
		return
	}
	respondOK(c, http.StatusOK, "Notes retrieved successfully", gin.H{"data": notes})
}

// Create maneja POST /api/notes.
func (h *NoteHandler) Create(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create note request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	note, err := h.noteSvc.Create(c.Request.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		respondError(c, h.logger, "create note", err)
		return
	}
	respondOK(c, http.StatusCreated, "Note created successfully", gin.H{"data": note})
}

// Update maneja PUT /api/notes/:id. Los campos ausentes no se modifican.
func (h *NoteHandler) Update(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}
	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update note request", zap.Error(err))
		respondFail(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	note, err := h.noteSvc.Update(c.Request.Context(), user.ID, c.Param("id"), service.UpdateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, h.logger, "update note", err)
		return
	}
	respondOK(c, http.StatusOK, "Note updated successfully", gin.H{"data": note})
}

// Delete maneja DELETE /api/notes/:id.
func (h *NoteHandler) Delete(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		respondFail(c, http.StatusUnauthorized, service.ErrUnauthorized.Message)
		return
	}
	if err := h.noteSvc.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, h.logger, "delete note", err)
		return
	}
	respondOK(c, http.StatusOK, "Note deleted successfully", nil)
}
