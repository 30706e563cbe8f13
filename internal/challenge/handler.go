package challenge

import (
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type FormChallenge struct {
	Title         string    `json:"title" binding:"required,max=255"`
	Description   string    `json:"description" binding:"max=10000"`
	ThematicAreas []string  `json:"thematic_areas" binding:"max=10,dive,thematic_area"`
	Deadline      time.Time `json:"deadline" binding:"required"`
}

func (f FormChallenge) toInput() ChallengeInput {
	return ChallengeInput{
		Title:         f.Title,
		Description:   f.Description,
		ThematicAreas: f.ThematicAreas,
		Deadline:      f.Deadline,
	}
}

type FormMember struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Role  string `json:"role" binding:"max=120"`
}

type FormSubmission struct {
	Title    string       `json:"title" binding:"required,max=255"`
	Summary  string       `json:"summary" binding:"max=10000"`
	Solution string       `json:"solution" binding:"max=20000"`
	Members  []FormMember `json:"members" binding:"max=20,dive"`
}

func (f FormSubmission) toInput() SubmissionInput {
	members := make([]domain.CollaborationMember, 0, len(f.Members))
	for _, m := range f.Members {
		members = append(members, domain.CollaborationMember{Name: m.Name, Email: m.Email, Role: m.Role})
	}
	return SubmissionInput{
		Title:    f.Title,
		Summary:  f.Summary,
		Solution: f.Solution,
		Members:  members,
	}
}

func (h *Handler) CreateChallenge(c *gin.Context) {
	var form FormChallenge
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	challenge, err := h.service.CreateChallenge(c.Request.Context(), middleware.CurrentActor(c), form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

func (h *Handler) UpdateChallenge(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form FormChallenge
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	challenge, err := h.service.UpdateChallenge(c.Request.Context(), middleware.CurrentActor(c), id, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func (h *Handler) CloseChallenge(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	challenge, err := h.service.CloseChallenge(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

func (h *Handler) ShowChallenge(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	challenge, err := h.service.ShowChallenge(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// ListChallenges lists every challenge, or only the open ones with ?open=true.
func (h *Handler) ListChallenges(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.ListChallenges(c.Request.Context(), c.Query("open") == "true", page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateSubmission(c *gin.Context) {
	challengeID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form FormSubmission
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	submission, err := h.service.CreateSubmission(c.Request.Context(), middleware.CurrentActor(c), challengeID, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

func (h *Handler) UpdateSubmission(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form FormSubmission
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	submission, err := h.service.UpdateSubmission(c.Request.Context(), middleware.CurrentActor(c), id, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *Handler) ShowSubmission(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	submission, err := h.service.ShowSubmission(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	challengeID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.ListSubmissions(c.Request.Context(), middleware.CurrentActor(c), challengeID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListMySubmissions(c *gin.Context) {
	submissions, err := h.service.ListMySubmissions(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

func (h *Handler) Submit(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	submission, err := h.service.Submit(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, submission)
}
