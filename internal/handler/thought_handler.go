package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freka11/schoolday/internal/model"
)

// GetThoughts godoc
// @Summary List thoughts
// @Description Returns today's thoughts, or the full history with ?date=all.
// @Description A store failure yields status 500 with an empty array body.
// @Tags Thoughts
// @Produce json
// @Param date query string false "Use 'all' for the full history"
// @Success 200 {array} model.Thought
// @Router /admin/thoughts [get]
func (h *ContentHandler) GetThoughts(c *gin.Context) {
	thoughts, err := h.contentService.ListThoughts(listScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, []model.Thought{})
		return
	}
	if thoughts == nil {
		thoughts = []model.Thought{}
	}
	c.JSON(http.StatusOK, thoughts)
}

// CreateThought godoc
// @Summary Create a thought of the day
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param body body model.CreateThoughtRequest true "Create thought request"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/thoughts [post]
func (h *ContentHandler) CreateThought(c *gin.Context) {
	var req model.CreateThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	id, err := h.contentService.CreateThought(req, creator(c))
	if err != nil {
		createError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreatedResponse{
		Success: true,
		Message: "Thought created",
		ID:      id.String(),
	})
}

// UpdateThought godoc
// @Summary Update a thought's text and status
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param body body model.UpdateContentRequest true "Update request"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/thoughts [put]
func (h *ContentHandler) UpdateThought(c *gin.Context) {
	var req model.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.contentService.UpdateThought(req); err != nil {
		contentError(c, err, "Failed to update document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Thought updated"})
}

// PatchThought godoc
// @Summary Toggle a thought's disabled flag
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param id query string true "Thought ID"
// @Param body body model.PatchContentRequest true "Patch request"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/thoughts [patch]
func (h *ContentHandler) PatchThought(c *gin.Context) {
	var req model.PatchContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.contentService.PatchThought(c.Query("id"), req); err != nil {
		contentError(c, err, "Failed to update document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Thought updated"})
}

// DeleteThought godoc
// @Summary Delete a thought
// @Tags Thoughts
// @Produce json
// @Param id query string true "Thought ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/thoughts [delete]
func (h *ContentHandler) DeleteThought(c *gin.Context) {
	if err := h.contentService.DeleteThought(c.Query("id")); err != nil {
		contentError(c, err, "Failed to delete document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Thought deleted"})
}
