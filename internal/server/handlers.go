package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillence/skillence/internal/generation"
	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/logger"
	"github.com/skillence/skillence/internal/service"
)

// LessonHandler serves the JSON lesson API.
type LessonHandler struct {
	svc *service.LessonService
	log *logger.Logger
}

// NewLessonHandler creates a LessonHandler.
func NewLessonHandler(svc *service.LessonService, log *logger.Logger) *LessonHandler {
	return &LessonHandler{svc: svc, log: log}
}

// createRequest is the POST /v1/lessons body.
type createRequest struct {
	Subject  string `json:"subject"`
	Audience string `json:"audience"`
	Duration string `json:"duration"`
}

// createResponse extends the service result with a human message.
type createResponse struct {
	service.CreateResult
	Message string `json:"message"`
}

// Health reports liveness.
func (h *LessonHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Create generates (or returns the cached) lesson for the request.
func (h *LessonHandler) Create(c *gin.Context) {
	var body createRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "request body must be valid JSON"})
		return
	}

	req, err := lesson.NewRequest(body.Subject, body.Audience, body.Duration)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, createResponse{
		CreateResult: *result,
		Message:      "lesson generated successfully",
	})
}

// Get returns a stored lesson by ID.
func (h *LessonHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "lesson not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// writeError maps domain errors to HTTP responses with a FastAPI-style
// {"detail": ...} body.
func (h *LessonHandler) writeError(c *gin.Context, err error) {
	var validation *lesson.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validation.Error()})
		return
	}

	var genErr *generation.Error
	if errors.As(err, &genErr) {
		h.log.Warn("lesson generation failed",
			"kind", genErr.Kind,
			"status", genErr.Status,
			"error", genErr,
		)
		c.JSON(genErr.Status, gin.H{"detail": genErr.Message})
		return
	}

	h.log.Error("internal error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
