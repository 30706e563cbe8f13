package collaboration

import (
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type FormRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// FormResponse answers a request or a proposal.
type FormResponse struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

type FormProposal struct {
	Summary            string   `json:"summary" binding:"required,max=2000"`
	Title              string   `json:"title" binding:"required,max=255"`
	ThematicArea       string   `json:"thematic_area" binding:"required,thematic_area"`
	ProblemStatement   string   `json:"problem_statement" binding:"max=10000"`
	ProposedSolution   string   `json:"proposed_solution" binding:"max=10000"`
	ExpectedImpact     string   `json:"expected_impact" binding:"max=10000"`
	ImplementationPlan string   `json:"implementation_plan" binding:"max=10000"`
	Keywords           []string `json:"keywords" binding:"max=20,dive,max=50"`
}

func (f FormProposal) toInput() ProposalInput {
	return ProposalInput{
		Summary: f.Summary,
		Changes: domain.IdeaContent{
			Title:              f.Title,
			ThematicArea:       f.ThematicArea,
			ProblemStatement:   f.ProblemStatement,
			ProposedSolution:   f.ProposedSolution,
			ExpectedImpact:     f.ExpectedImpact,
			ImplementationPlan: f.ImplementationPlan,
			Keywords:           f.Keywords,
		},
	}
}

func (h *Handler) RequestToJoin(c *gin.Context) {
	ideaID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var form FormRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	request, err := h.service.RequestToJoin(c.Request.Context(), middleware.CurrentActor(c), ideaID, form.Message)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *Handler) ListRequests(c *gin.Context) {
	ideaID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), middleware.CurrentActor(c), ideaID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests})
}

func (h *Handler) RespondToRequest(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var form FormResponse
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	request, err := h.service.RespondToRequest(c.Request.Context(), middleware.CurrentActor(c), id, form.Status == domain.CollaborationApproved)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *Handler) Propose(c *gin.Context) {
	ideaID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var form FormProposal
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	proposal, err := h.service.Propose(c.Request.Context(), middleware.CurrentActor(c), ideaID, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, proposal)
}

func (h *Handler) ListProposals(c *gin.Context) {
	ideaID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	proposals, err := h.service.ListProposals(c.Request.Context(), middleware.CurrentActor(c), ideaID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": proposals})
}

func (h *Handler) RespondToProposal(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var form FormResponse
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	proposal, err := h.service.RespondToProposal(c.Request.Context(), middleware.CurrentActor(c), id, form.Status == domain.CollaborationApproved)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, proposal)
}
