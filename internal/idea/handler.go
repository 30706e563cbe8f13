package idea

import (
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/utils"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const uploadOverhead = 64 << 10

type Handler struct {
	service            Service
	maxAttachmentBytes int64
}

func NewHandler(service Service, maxAttachmentBytes int64) *Handler {
	return &Handler{service: service, maxAttachmentBytes: maxAttachmentBytes}
}

type FormTeamMember struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
	Role  string `json:"role" binding:"max=120"`
}

type FormIdea struct {
	Title              string           `json:"title" binding:"required,max=255"`
	ThematicArea       string           `json:"thematic_area" binding:"required,thematic_area"`
	ProblemStatement   string           `json:"problem_statement" binding:"max=10000"`
	ProposedSolution   string           `json:"proposed_solution" binding:"max=10000"`
	ExpectedImpact     string           `json:"expected_impact" binding:"max=10000"`
	ImplementationPlan string           `json:"implementation_plan" binding:"max=10000"`
	Keywords           []string         `json:"keywords" binding:"max=20,dive,max=50"`
	TeamMembers        []FormTeamMember `json:"team_members" binding:"max=20,dive"`
}

func (f FormIdea) toInput() IdeaInput {
	members := make([]domain.TeamMember, 0, len(f.TeamMembers))
	for _, m := range f.TeamMembers {
		members = append(members, domain.TeamMember{Name: m.Name, Email: m.Email, Role: m.Role})
	}
	return IdeaInput{
		IdeaContent: domain.IdeaContent{
			Title:              f.Title,
			ThematicArea:       f.ThematicArea,
			ProblemStatement:   f.ProblemStatement,
			ProposedSolution:   f.ProposedSolution,
			ExpectedImpact:     f.ExpectedImpact,
			ImplementationPlan: f.ImplementationPlan,
			Keywords:           f.Keywords,
		},
		TeamMembers: members,
	}
}

type FormComment struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (h *Handler) Create(c *gin.Context) {
	var form FormIdea
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	idea, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, idea)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form FormIdea
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	idea, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Show(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	view, err := h.service.Show(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) ListMine(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.ListMine(c.Request.Context(), middleware.CurrentActor(c), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListPublic(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	result, err := h.service.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Submit(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	idea, err := h.service.Submit(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// UploadAttachment takes a multipart "file" field and replaces the current
// attachment.
func (h *Handler) UploadAttachment(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxAttachmentBytes+uploadOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		c.Error(errors.UnprocessableEntity("A file field is required", err))
		return
	}
	if header.Size > h.maxAttachmentBytes {
		c.Error(errors.New(http.StatusRequestEntityTooLarge, "Attachment is too large", nil))
		return
	}

	f, err := header.Open()
	if err != nil {
		c.Error(errors.BadRequest("Can't read uploaded file", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.Error(errors.BadRequest("Can't read uploaded file", err))
		return
	}

	err = h.service.UploadAttachment(c.Request.Context(), middleware.CurrentActor(c), id, Attachment{
		Name: header.Filename,
		Mime: header.Header.Get("Content-Type"),
		Data: data,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DownloadAttachment(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	file, err := h.service.DownloadAttachment(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.Mime, file.Data)
}

func (h *Handler) ListVersions(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func (h *Handler) AddComment(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form FormComment
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), middleware.CurrentActor(c), id, form.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	commentID, err := utils.ParseID(c, "commentId")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.CurrentActor(c), id, commentID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	state, err := h.service.ToggleLike(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}
