package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/service"
)

// ContentHandler handles daily-content endpoints: questions, thoughts,
// answers and streaks
type ContentHandler struct {
	contentService *service.ContentService
}

func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// listScope maps the ?date= query to a service scope: "all" selects the
// full history, anything else today's partition
func listScope(c *gin.Context) string {
	if c.Query("date") == service.ListScopeAll {
		return service.ListScopeAll
	}
	return ""
}

// creator resolves the session user stamped onto created documents
func creator(c *gin.Context) model.SessionUser {
	if user := middleware.SessionFrom(c); user != nil {
		return *user
	}
	return model.SessionUser{}
}

// contentError maps a mutation failure to the right status: missing
// fields and malformed ids are the caller's fault, everything else is a
// store failure and ours
func contentError(c *gin.Context, err error, message string) {
	var missing *service.MissingFieldsError
	if errors.As(err, &missing) || errors.Is(err, service.ErrInvalidID) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: message})
}

func createError(c *gin.Context, err error) {
	contentError(c, err, "Failed to save document")
}

// GetQuestions godoc
// @Summary List questions
// @Description Returns today's questions, or the full history with ?date=all.
// @Description A store failure yields status 500 with an empty array body.
// @Tags Questions
// @Produce json
// @Param date query string false "Use 'all' for the full history"
// @Success 200 {array} model.Question
// @Router /admin/questions [get]
func (h *ContentHandler) GetQuestions(c *gin.Context) {
	questions, err := h.contentService.ListQuestions(listScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, []model.Question{})
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	c.JSON(http.StatusOK, questions)
}

// CreateQuestion godoc
// @Summary Create a question
// @Tags Questions
// @Accept json
// @Produce json
// @Param body body model.CreateQuestionRequest true "Create question request"
// @Success 201 {object} model.CreatedResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/questions [post]
func (h *ContentHandler) CreateQuestion(c *gin.Context) {
	var req model.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	id, err := h.contentService.CreateQuestion(req, creator(c))
	if err != nil {
		createError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.CreatedResponse{
		Success: true,
		Message: "Question created",
		ID:      id.String(),
	})
}

// UpdateQuestion godoc
// @Summary Update a question's text and status
// @Tags Questions
// @Accept json
// @Produce json
// @Param body body model.UpdateContentRequest true "Update request"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/questions [put]
func (h *ContentHandler) UpdateQuestion(c *gin.Context) {
	var req model.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.contentService.UpdateQuestion(req); err != nil {
		contentError(c, err, "Failed to update document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Question updated"})
}

// PatchQuestion godoc
// @Summary Toggle a question's disabled flag
// @Tags Questions
// @Accept json
// @Produce json
// @Param id query string true "Question ID"
// @Param body body model.PatchContentRequest true "Patch request"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/questions [patch]
func (h *ContentHandler) PatchQuestion(c *gin.Context) {
	var req model.PatchContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.contentService.PatchQuestion(c.Query("id"), req); err != nil {
		contentError(c, err, "Failed to update document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Question updated"})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags Questions
// @Produce json
// @Param id query string true "Question ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/questions [delete]
func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	if err := h.contentService.DeleteQuestion(c.Query("id")); err != nil {
		contentError(c, err, "Failed to delete document")
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Question deleted"})
}

// BulkCreateQuestions godoc
// @Summary Create a batch of questions
// @Description Writes items independently with per-item results; earlier
// @Description successes are not rolled back when a later item fails.
// @Tags Questions
// @Accept json
// @Produce json
// @Param body body model.BulkQuestionsRequest true "Bulk create request"
// @Success 200 {object} model.BulkQuestionsResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /admin/questions/bulk [post]
func (h *ContentHandler) BulkCreateQuestions(c *gin.Context) {
	var req model.BulkQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp := h.contentService.BulkCreateQuestions(req, creator(c))

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

// SendDailyDigest godoc
// @Summary Mail today's question to all students
// @Tags Questions
// @Produce json
// @Success 200 {object} model.SuccessResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/digest [post]
func (h *ContentHandler) SendDailyDigest(c *gin.Context) {
	sent, err := h.contentService.SendDailyDigest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Digest sent", Data: gin.H{"recipients": sent}})
}
