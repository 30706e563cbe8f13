package idea

import (
	"context"
	"encoding/json"
	defError "errors"
	"fmt"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/errors"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/utils"
	"innovation-portal/internal/workflow"
	"innovation-portal/redis"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const VersionReasonSubmit = "submit"

type Service interface {
	Create(ctx context.Context, actor workflow.Actor, input IdeaInput) (*domain.Idea, error)
	Update(ctx context.Context, actor workflow.Actor, id uint64, input IdeaInput) (*domain.Idea, error)
	Delete(ctx context.Context, actor workflow.Actor, id uint64) error
	Show(ctx context.Context, actor workflow.Actor, id uint64) (*IdeaView, error)
	ListMine(ctx context.Context, actor workflow.Actor, page, pageSize int) (*IdeaPage, error)
	ListPublic(ctx context.Context, page, pageSize int) (*IdeaPage, error)
	Submit(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Idea, error)
	UploadAttachment(ctx context.Context, actor workflow.Actor, id uint64, file Attachment) error
	DownloadAttachment(ctx context.Context, actor workflow.Actor, id uint64) (*Attachment, error)
	ListVersions(ctx context.Context, actor workflow.Actor, id uint64) ([]domain.IdeaVersion, error)
	AddComment(ctx context.Context, actor workflow.Actor, id uint64, content string) (*CommentView, error)
	ListComments(ctx context.Context, actor workflow.Actor, id uint64) ([]CommentView, error)
	DeleteComment(ctx context.Context, actor workflow.Actor, ideaID, commentID uint64) error
	ToggleLike(ctx context.Context, actor workflow.Actor, id uint64) (*LikeState, error)
}

// IdeaInput is the editable content plus the team.
type IdeaInput struct {
	domain.IdeaContent
	TeamMembers []domain.TeamMember
}

type IdeaView struct {
	*domain.Idea
	LikeCount      int64 `json:"like_count"`
	LikedByMe      bool  `json:"liked_by_me"`
	IsCollaborator bool  `json:"is_collaborator"`
	HasAttachment  bool  `json:"has_attachment"`
}

type IdeaPage struct {
	Data []domain.Idea  `json:"data"`
	Meta utils.PageMeta `json:"meta"`
}

type Attachment struct {
	Name string
	Mime string
	Data []byte
}

type CommentView struct {
	domain.Comment
	AuthorName string `json:"author_name"`
}

type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type DefaultService struct {
	repository         IdeaRepository
	cache              *redis.Cache
	notifier           notification.Notifier
	maxAttachmentBytes int64
	now                func() time.Time
}

func NewService(repository IdeaRepository, cache *redis.Cache, notifier notification.Notifier, maxAttachmentBytes int64) Service {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &DefaultService{
		repository:         repository,
		cache:              cache,
		notifier:           notifier,
		maxAttachmentBytes: maxAttachmentBytes,
		now:                time.Now,
	}
}

func (s *DefaultService) Create(ctx context.Context, actor workflow.Actor, input IdeaInput) (*domain.Idea, error) {
	if !actor.Can(workflow.PermCreateIdea) {
		return nil, errors.Forbidden("You can't create ideas", nil)
	}

	idea := &domain.Idea{UserID: actor.ID, TeamMembers: input.TeamMembers}
	idea.ApplyContent(Normalize(input.IdeaContent))

	if err := s.repository.Create(ctx, idea); err != nil {
		return nil, err
	}
	InvalidateLists(ctx, s.cache, actor.ID, false)
	return idea, nil
}

func (s *DefaultService) Update(ctx context.Context, actor workflow.Actor, id uint64, input IdeaInput) (*domain.Idea, error) {
	idea, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.CanEdit(actor, idea.Subject()); err != nil {
		return nil, errors.FromWorkflow(err)
	}

	idea.ApplyContent(Normalize(input.IdeaContent))
	idea.TeamMembers = input.TeamMembers
	if err := s.repository.Update(ctx, idea, idea.Status); err != nil {
		return nil, errors.FromWorkflow(err)
	}
	InvalidateLists(ctx, s.cache, idea.UserID, false)
	return idea, nil
}

// Delete removes a draft. Ideas that entered review stay for the record.
func (s *DefaultService) Delete(ctx context.Context, actor workflow.Actor, id uint64) error {
	idea, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if idea.UserID != actor.ID {
		return errors.FromWorkflow(workflow.ErrNotAuthor)
	}
	if idea.Status != workflow.StatusDraft {
		return errors.Conflict("Only draft ideas can be deleted", nil)
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	InvalidateLists(ctx, s.cache, idea.UserID, false)
	return nil
}

func (s *DefaultService) Show(ctx context.Context, actor workflow.Actor, id uint64) (*IdeaView, error) {
	idea, collaborator, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repository.CountLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	liked, err := s.repository.HasLiked(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	return &IdeaView{
		Idea:           idea,
		LikeCount:      count,
		LikedByMe:      liked,
		IsCollaborator: collaborator,
		HasAttachment:  idea.AttachmentName != "",
	}, nil
}

func (s *DefaultService) ListMine(ctx context.Context, actor workflow.Actor, page, pageSize int) (*IdeaPage, error) {
	v := s.cache.GetVersion(ctx, UserListVersionKey(actor.ID))
	cacheKey := fmt.Sprintf("ideas:u:%d:v:%d:p:%d:ps:%d", actor.ID, v, page, pageSize)

	return s.cachedPage(ctx, cacheKey, page, pageSize, func(offset int) ([]domain.Idea, int64, error) {
		return s.repository.ListByUser(ctx, actor.ID, offset, pageSize)
	})
}

// ListPublic lists approved ideas, which every signed-in user may read.
func (s *DefaultService) ListPublic(ctx context.Context, page, pageSize int) (*IdeaPage, error) {
	v := s.cache.GetVersion(ctx, PublicListVersionKey)
	cacheKey := fmt.Sprintf("ideas:public:v:%d:p:%d:ps:%d", v, page, pageSize)

	return s.cachedPage(ctx, cacheKey, page, pageSize, func(offset int) ([]domain.Idea, int64, error) {
		return s.repository.ListByStatus(ctx, workflow.StatusApproved, offset, pageSize)
	})
}

func (s *DefaultService) cachedPage(ctx context.Context, cacheKey string, page, pageSize int, load func(offset int) ([]domain.Idea, int64, error)) (*IdeaPage, error) {
	var result IdeaPage
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	ideas, total, err := load(utils.Offset(page, pageSize))
	if err != nil {
		return nil, err
	}
	if ideas == nil {
		ideas = []domain.Idea{}
	}
	result = IdeaPage{Data: ideas, Meta: utils.NewPageMeta(total, page, pageSize)}
	go s.cache.Set(context.Background(), cacheKey, result, 0)

	return &result, nil
}

// Submit sends a draft or a revised idea into review. The revision number
// grows by one and the content at that revision is snapshotted.
func (s *DefaultService) Submit(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Idea, error) {
	idea, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := workflow.CanSubmit(actor, idea.Subject())
	if err != nil {
		return nil, errors.FromWorkflow(err)
	}
	if missing := missingFields(idea); len(missing) > 0 {
		fields := make(map[string]string, len(missing))
		for _, f := range missing {
			fields[f] = "is required before submitting"
		}
		return nil, &errors.APIError{Status: http.StatusUnprocessableEntity, Message: "Idea is incomplete", Fields: fields}
	}

	from := idea.Status
	now := s.now()
	idea.Status = next
	idea.CurrentRevisionNumber++
	idea.SubmittedAt = &now

	version, err := NewVersion(idea, actor.ID, VersionReasonSubmit)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Submit(ctx, idea, from, version); err != nil {
		return nil, errors.FromWorkflow(err)
	}

	InvalidateLists(ctx, s.cache, idea.UserID, false)
	s.notifier.Notify(notification.Submitted(notification.SubjectIdea, idea.ID, idea.UserID, idea.Title, next))
	return idea, nil
}

// NewVersion snapshots the idea's current content at its current revision.
func NewVersion(idea *domain.Idea, createdBy uint64, reason string) (*domain.IdeaVersion, error) {
	snapshot, err := json.Marshal(idea.Content())
	if err != nil {
		return nil, err
	}
	return &domain.IdeaVersion{
		IdeaID:      idea.ID,
		Version:     idea.CurrentRevisionNumber,
		Status:      idea.Status,
		Snapshot:    datatypes.JSON(snapshot),
		CreatedByID: createdBy,
		Reason:      reason,
	}, nil
}

func (s *DefaultService) UploadAttachment(ctx context.Context, actor workflow.Actor, id uint64, file Attachment) error {
	if len(file.Data) == 0 {
		return errors.UnprocessableEntity("Attachment is empty", nil)
	}
	if int64(len(file.Data)) > s.maxAttachmentBytes {
		return errors.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Attachment exceeds %d bytes", s.maxAttachmentBytes), nil)
	}

	idea, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := workflow.CanEdit(actor, idea.Subject()); err != nil {
		return errors.FromWorkflow(err)
	}

	if file.Mime == "" || file.Mime == "application/octet-stream" {
		file.Mime = http.DetectContentType(file.Data)
	}
	return errors.FromWorkflow(s.repository.SetAttachment(ctx, id, idea.Status, file.Name, file.Mime, file.Data))
}

func (s *DefaultService) DownloadAttachment(ctx context.Context, actor workflow.Actor, id uint64) (*Attachment, error) {
	if _, _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}

	idea, err := s.repository.FindAttachment(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(idea.Attachment) == 0 {
		return nil, errors.NotFound("Idea has no attachment", nil)
	}
	return &Attachment{Name: idea.AttachmentName, Mime: idea.AttachmentMime, Data: idea.Attachment}, nil
}

func (s *DefaultService) ListVersions(ctx context.Context, actor workflow.Actor, id uint64) ([]domain.IdeaVersion, error) {
	if _, _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	versions, err := s.repository.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []domain.IdeaVersion{}
	}
	return versions, nil
}

func (s *DefaultService) AddComment(ctx context.Context, actor workflow.Actor, id uint64, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.UnprocessableEntity("Comment cannot be empty", nil)
	}
	if _, _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}

	comment := &domain.Comment{IdeaID: id, UserID: actor.ID, Content: content}
	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return &CommentView{Comment: *comment}, nil
}

func (s *DefaultService) ListComments(ctx context.Context, actor workflow.Actor, id uint64) ([]CommentView, error) {
	if _, _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	comments, err := s.repository.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		v := CommentView{Comment: c}
		if c.Author != nil && !c.IsDeleted {
			v.AuthorName = c.Author.Name
		}
		views = append(views, v)
	}
	return views, nil
}

// DeleteComment blanks the comment and keeps the row so threads stay intact.
func (s *DefaultService) DeleteComment(ctx context.Context, actor workflow.Actor, ideaID, commentID uint64) error {
	comment, err := s.repository.FindComment(ctx, ideaID, commentID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Comment not found", err)
		}
		return err
	}
	if comment.UserID != actor.ID && !actor.HasRole(workflow.RoleAdmin) {
		return errors.Forbidden("Only the author can delete this comment", nil)
	}
	if comment.IsDeleted {
		return nil
	}
	return s.repository.MarkCommentDeleted(ctx, commentID)
}

func (s *DefaultService) ToggleLike(ctx context.Context, actor workflow.Actor, id uint64) (*LikeState, error) {
	if _, _, err := s.findVisible(ctx, actor, id); err != nil {
		return nil, err
	}
	liked, err := s.repository.ToggleLike(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.repository.CountLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LikeState{Liked: liked, Count: count}, nil
}

func (s *DefaultService) find(ctx context.Context, id uint64) (*domain.Idea, error) {
	idea, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Idea not found", err)
		}
		return nil, err
	}
	return idea, nil
}

// findVisible hides ideas the actor may not read behind a 404.
func (s *DefaultService) findVisible(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Idea, bool, error) {
	idea, err := s.find(ctx, id)
	if err != nil {
		return nil, false, err
	}

	collaborator := false
	if idea.UserID != actor.ID {
		collaborator, err = s.repository.IsCollaborator(ctx, id, actor.ID)
		if err != nil {
			return nil, false, err
		}
	}
	if !workflow.CanView(actor, idea.Subject(), collaborator) {
		return nil, false, errors.NotFound("Idea not found", nil)
	}
	return idea, collaborator, nil
}

// Normalize trims the content and lowercases and dedupes keywords.
func Normalize(c domain.IdeaContent) domain.IdeaContent {
	c.Title = strings.TrimSpace(c.Title)
	c.ThematicArea = strings.TrimSpace(c.ThematicArea)
	keywords := make([]string, 0, len(c.Keywords))
	seen := make(map[string]bool, len(c.Keywords))
	for _, k := range c.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}
	c.Keywords = keywords
	return c
}

func missingFields(idea *domain.Idea) []string {
	var missing []string
	if idea.Title == "" {
		missing = append(missing, "title")
	}
	if idea.ThematicArea == "" {
		missing = append(missing, "thematic_area")
	}
	if strings.TrimSpace(idea.ProblemStatement) == "" {
		missing = append(missing, "problem_statement")
	}
	if strings.TrimSpace(idea.ProposedSolution) == "" {
		missing = append(missing, "proposed_solution")
	}
	return missing
}
