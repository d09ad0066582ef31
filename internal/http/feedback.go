package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobby-api/internal/domain"
	"jobby-api/internal/service"
)

type createFeedbackRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type updateFeedbackRequest struct {
	Email   *string `json:"email"`
	Message *string `json:"message"`
}

// createFeedback attributes the feedback to the token's user; a username in
// the body is ignored.
func (h *Handler) createFeedback(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access denied. No token provided."})
		return
	}

	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": "message is required"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeError(c, err, "User not found")
		return
	}

	email := req.Email
	if email == "" {
		email = user.Email
	}
	fb, err := h.feedback.Create(c.Request.Context(), service.FeedbackInput{
		Username: user.Username,
		Email:    email,
		Message:  req.Message,
	})
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}

	c.JSON(http.StatusCreated, feedbackToResponse(*fb, h.feedbackLoc))
}

func (h *Handler) listFeedback(c *gin.Context) {
	list, err := h.feedback.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}

	resp := make([]FeedbackResponse, len(list))
	for i := range list {
		resp[i] = feedbackToResponse(list[i], h.feedbackLoc)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getFeedback(c *gin.Context) {
	fb, err := h.feedback.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(*fb, h.feedbackLoc))
}

func (h *Handler) updateFeedback(c *gin.Context) {
	var req updateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fb, err := h.feedback.Update(c.Request.Context(), c.Param("id"), domain.FeedbackUpdate{
		Message: req.Message,
		Email:   req.Email,
	})
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(*fb, h.feedbackLoc))
}

func (h *Handler) deleteFeedback(c *gin.Context) {
	fb, err := h.feedback.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully", "feedback": feedbackToResponse(*fb, h.feedbackLoc)})
}

func (h *Handler) deleteAllFeedback(c *gin.Context) {
	n, err := h.feedback.DeleteAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Feedback not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": n})
}
