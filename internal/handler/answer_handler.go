package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
)

// GetAnswers godoc
// @Summary List answers
// @Description Returns answers submitted today, or the full history with
// @Description ?date=all. A store failure yields status 500 with an empty
// @Description array body.
// @Tags Answers
// @Produce json
// @Param date query string false "Use 'all' for the full history"
// @Success 200 {array} model.Answer
// @Router /admin/answers [get]
func (h *ContentHandler) GetAnswers(c *gin.Context) {
	answers, err := h.contentService.ListAnswers(listScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, []model.Answer{})
		return
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	c.JSON(http.StatusOK, answers)
}

// CreateAnswer godoc
// @Summary Submit an answer to today's question
// @Description Stores the answer and advances the student's streak.
// @Tags Answers
// @Accept json
// @Produce json
// @Param body body model.CreateAnswerRequest true "Answer submission"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /user/answers [post]
func (h *ContentHandler) CreateAnswer(c *gin.Context) {
	var req model.CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	id, err := h.contentService.CreateAnswer(req)
	if err != nil {
		createError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreatedResponse{
		Success: true,
		Message: "Answer submitted",
		ID:      id.String(),
	})
}

// DeleteAnswer godoc
// @Summary Delete an answer
// @Tags Answers
// @Produce json
// @Param id query string true "Answer ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/answers [delete]
func (h *ContentHandler) DeleteAnswer(c *gin.Context) {
	if err := h.contentService.DeleteAnswer(c.Query("id")); err != nil {
		contentError(c, err, "Failed to delete document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Answer deleted"})
}

// GetStreak godoc
// @Summary Get the current student's answer streak
// @Tags Answers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Streak
// @Router /user/streak [get]
func (h *ContentHandler) GetStreak(c *gin.Context) {
	user := middleware.SessionFrom(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authentication required"})
		return
	}

	streak, err := h.contentService.GetStreak(user.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load streak"})
		return
	}

	c.JSON(http.StatusOK, streak)
}
