package review

import (
	"innovation-portal/internal/errors"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/utils"
	"innovation-portal/internal/workflow"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type FormReview struct {
	Recommendation   string `json:"recommendation" binding:"required,recommendation"`
	Comments         string `json:"comments" binding:"max=10000"`
	FeasibilityScore *uint8 `json:"feasibility_score" binding:"omitempty,min=1,max=5"`
	ImpactScore      *uint8 `json:"impact_score" binding:"omitempty,min=1,max=5"`
	InnovationScore  *uint8 `json:"innovation_score" binding:"omitempty,min=1,max=5"`
}

type FormDecision struct {
	Decision         string `json:"decision" binding:"required,decision"`
	CompiledComments string `json:"compiled_comments" binding:"max=20000"`
}

// SubmitReview returns the handler for POST /ideas/:id/reviews or
// /submissions/:id/reviews depending on kind.
func (h *Handler) SubmitReview(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		var form FormReview
		if err := c.ShouldBindJSON(&form); err != nil {
			c.Error(errors.NewValidationError(err))
			return
		}

		review, err := h.service.SubmitReview(c.Request.Context(), middleware.CurrentActor(c), kind, id, ReviewInput{
			Recommendation:   workflow.Decision(form.Recommendation),
			Comments:         form.Comments,
			FeasibilityScore: form.FeasibilityScore,
			ImpactScore:      form.ImpactScore,
			InnovationScore:  form.InnovationScore,
		})
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

func (h *Handler) ListReviews(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}

		reviews, err := h.service.ListReviews(c.Request.Context(), middleware.CurrentActor(c), kind, id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reviews})
	}
}

func (h *Handler) Decide(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		var form FormDecision
		if err := c.ShouldBindJSON(&form); err != nil {
			c.Error(errors.NewValidationError(err))
			return
		}

		decision, err := h.service.Decide(c.Request.Context(), middleware.CurrentActor(c), kind, id, DecisionInput{
			Decision:         workflow.Decision(form.Decision),
			CompiledComments: form.CompiledComments,
		})
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, decision)
	}
}

func (h *Handler) ListDecisions(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}

		decisions, err := h.service.ListDecisions(c.Request.Context(), middleware.CurrentActor(c), kind, id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": decisions})
	}
}

func (h *Handler) Queue(c *gin.Context) {
	queue, err := h.service.Queue(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

// Workflow describes the state machine for clients.
func (h *Handler) Workflow(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":    workflow.Statuses,
		"transitions": workflow.Transitions(),
	})
}
