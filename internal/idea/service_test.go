package idea

import (
	"context"
	"encoding/json"
	"innovation-portal/internal/domain"
	apiError "innovation-portal/internal/errors"
	"innovation-portal/internal/notification"
	"innovation-portal/internal/workflow"
	"innovation-portal/redis"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	author    = workflow.NewActor(1, []string{"submitter"})
	stranger  = workflow.NewActor(2, []string{"submitter"})
	sme       = workflow.NewActor(3, []string{"sme"})
	adminUser = workflow.NewActor(4, []string{"admin"})
)

func newTestService(t *testing.T) (*DefaultService, *MockRepository, *recordingNotifier, *redis.Cache) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redis.NewCache(client, time.Minute)

	repo := new(MockRepository)
	notifier := &recordingNotifier{}
	svc := NewService(repo, cache, notifier, 1024).(*DefaultService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo, notifier, cache
}

func completeIdea(status workflow.Status) *domain.Idea {
	return &domain.Idea{
		ID:                    10,
		UserID:                1,
		Title:                 "Solar kiosks",
		ThematicArea:          "Energy",
		ProblemStatement:      "Outages",
		ProposedSolution:      "Kiosks",
		Status:                status,
		CurrentRevisionNumber: 0,
	}
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var e *apiError.APIError
	require.ErrorAs(t, err, &e)
	return e.Status
}

func TestCreate_NormalizesAndBumpsListVersion(t *testing.T) {
	svc, repo, _, cache := newTestService(t)
	ctx := context.Background()
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Idea")).Return(nil)

	idea, err := svc.Create(ctx, author, IdeaInput{IdeaContent: domain.IdeaContent{
		Title:        "  Solar kiosks ",
		ThematicArea: "Energy",
		Keywords:     []string{"Solar", "solar ", "", "grid"},
	}})

	require.NoError(t, err)
	assert.Equal(t, "Solar kiosks", idea.Title)
	assert.Equal(t, []string{"solar", "grid"}, []string(idea.Keywords))
	assert.Equal(t, uint64(1), idea.UserID)
	assert.Equal(t, int64(1), cache.GetVersion(ctx, UserListVersionKey(1)))
}

func TestCreate_NeedsPermission(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), workflow.Actor{ID: 9}, IdeaInput{})
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))
}

func TestUpdate_Gates(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusStage1Review), nil).Once()

	_, err := svc.Update(ctx, author, 10, IdeaInput{})
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusStage1Revise), nil).Once()
	_, err = svc.Update(ctx, stranger, 10, IdeaInput{})
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusStage1Revise), nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Idea"), workflow.StatusStage1Revise).Return(nil).Once()
	updated, err := svc.Update(ctx, author, 10, IdeaInput{IdeaContent: domain.IdeaContent{Title: "New"}})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
}

func TestUpdate_SubmittedMeanwhile(t *testing.T) {
	svc, repo, _, cache := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil)
	repo.On("Update", ctx, mock.AnythingOfType("*domain.Idea"), workflow.StatusDraft).Return(workflow.ErrStaleStatus)

	_, err := svc.Update(ctx, author, 10, IdeaInput{IdeaContent: domain.IdeaContent{Title: "Late edit"}})

	assert.Equal(t, http.StatusConflict, apiStatus(t, err))
	assert.ErrorIs(t, err, workflow.ErrStaleStatus)
	assert.Zero(t, cache.GetVersion(ctx, UserListVersionKey(author.ID)))
}

func TestUpdate_NotFound(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Update(ctx, author, 99, IdeaInput{})
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))
}

func TestDelete_DraftOnly(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusStage1Revise), nil).Once()
	assert.Equal(t, http.StatusConflict, apiStatus(t, svc.Delete(ctx, author, 10)))

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil).Once()
	assert.Equal(t, http.StatusForbidden, apiStatus(t, svc.Delete(ctx, adminUser, 10)))

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil).Once()
	repo.On("Delete", ctx, uint64(10)).Return(nil).Once()
	assert.NoError(t, svc.Delete(ctx, author, 10))
}

func TestSubmit_FromDraft(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil)

	var stored *domain.IdeaVersion
	repo.On("Submit", ctx, mock.AnythingOfType("*domain.Idea"), workflow.StatusDraft, mock.AnythingOfType("*domain.IdeaVersion")).
		Run(func(args mock.Arguments) { stored = args.Get(3).(*domain.IdeaVersion) }).
		Return(nil)

	idea, err := svc.Submit(ctx, author, 10)

	require.NoError(t, err)
	assert.Equal(t, workflow.StatusStage1Review, idea.Status)
	assert.Equal(t, uint(1), idea.CurrentRevisionNumber)
	require.NotNil(t, idea.SubmittedAt)

	require.NotNil(t, stored)
	assert.Equal(t, uint(1), stored.Version)
	assert.Equal(t, VersionReasonSubmit, stored.Reason)
	var content domain.IdeaContent
	require.NoError(t, json.Unmarshal(stored.Snapshot, &content))
	assert.Equal(t, "Solar kiosks", content.Title)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notification.KindSubmitted, events[0].Kind)
	assert.Equal(t, []workflow.Role{workflow.RoleSME}, events[0].RecipientRoles)
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		idea   *domain.Idea
		actor  workflow.Actor
		status int
	}{
		{"not author", completeIdea(workflow.StatusDraft), stranger, http.StatusForbidden},
		{"already in review", completeIdea(workflow.StatusStage1Review), author, http.StatusConflict},
		{"terminal", completeIdea(workflow.StatusApproved), author, http.StatusConflict},
		{"incomplete", &domain.Idea{ID: 10, UserID: 1, Title: "x", Status: workflow.StatusDraft}, author, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier, _ := newTestService(t)
			repo.On("FindByID", mock.Anything, uint64(10)).Return(tt.idea, nil)

			_, err := svc.Submit(context.Background(), tt.actor, 10)

			assert.Equal(t, tt.status, apiStatus(t, err))
			repo.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Empty(t, notifier.Events())
		})
	}
}

func TestSubmit_ConcurrentChangeIsConflict(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusStage2Revise), nil)
	repo.On("Submit", ctx, mock.Anything, workflow.StatusStage2Revise, mock.Anything).Return(workflow.ErrStaleStatus)

	_, err := svc.Submit(ctx, author, 10)

	assert.Equal(t, http.StatusConflict, apiStatus(t, err))
	assert.Empty(t, notifier.Events())
}

func TestShow_Visibility(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	draft := completeIdea(workflow.StatusDraft)
	repo.On("FindByID", ctx, uint64(10)).Return(draft, nil)
	repo.On("IsCollaborator", ctx, uint64(10), uint64(2)).Return(false, nil)
	repo.On("IsCollaborator", ctx, uint64(10), uint64(3)).Return(false, nil)
	repo.On("CountLikes", ctx, uint64(10)).Return(int64(2), nil)
	repo.On("HasLiked", ctx, uint64(10), mock.Anything).Return(true, nil)

	_, err := svc.Show(ctx, stranger, 10)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))

	view, err := svc.Show(ctx, sme, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.LikeCount)
	assert.True(t, view.LikedByMe)

	view, err = svc.Show(ctx, author, 10)
	require.NoError(t, err)
	assert.False(t, view.IsCollaborator)
}

func TestListMine_ServedFromCache(t *testing.T) {
	svc, repo, _, cache := newTestService(t)
	ctx := context.Background()
	repo.On("ListByUser", ctx, uint64(1), 0, 10).Return([]domain.Idea{{ID: 10, Title: "A"}}, int64(1), nil).Once()

	first, err := svc.ListMine(ctx, author, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Meta.TotalPage)

	require.Eventually(t, func() bool {
		var p IdeaPage
		found, _ := cache.Get(ctx, "ideas:u:1:v:0:p:1:ps:10", &p)
		return found
	}, time.Second, 10*time.Millisecond)

	second, err := svc.ListMine(ctx, author, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "A", second.Data[0].Title)
	repo.AssertNumberOfCalls(t, "ListByUser", 1)

	InvalidateLists(ctx, cache, 1, false)
	repo.On("ListByUser", ctx, uint64(1), 0, 10).Return([]domain.Idea{}, int64(0), nil).Once()
	third, err := svc.ListMine(ctx, author, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, third.Data)
}

func TestListPublic_ApprovedOnly(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("ListByStatus", ctx, workflow.StatusApproved, 10, 10).Return(nil, int64(0), assert.AnError)

	_, err := svc.ListPublic(ctx, 2, 10)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestUploadAttachment(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.UploadAttachment(ctx, author, 10, Attachment{Name: "big.pdf", Data: make([]byte, 2048)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiStatus(t, err))

	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil)
	repo.On("SetAttachment", ctx, uint64(10), workflow.StatusDraft, "notes.txt", "text/plain; charset=utf-8", []byte("hello")).Return(nil).Once()

	require.NoError(t, svc.UploadAttachment(ctx, author, 10, Attachment{Name: "notes.txt", Data: []byte("hello")}))
	repo.AssertExpectations(t)

	repo.On("SetAttachment", ctx, uint64(10), workflow.StatusDraft, "notes.txt", mock.Anything, mock.Anything).Return(workflow.ErrStaleStatus).Once()
	err = svc.UploadAttachment(ctx, author, 10, Attachment{Name: "notes.txt", Data: []byte("hello")})
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))
}

func TestDownloadAttachment_Missing(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusDraft), nil)
	repo.On("FindAttachment", ctx, uint64(10)).Return(&domain.Idea{ID: 10}, nil)

	_, err := svc.DownloadAttachment(ctx, author, 10)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))
}

func TestDeleteComment(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	comment := &domain.Comment{ID: 5, IdeaID: 10, UserID: 2, Content: "hi"}
	repo.On("FindComment", ctx, uint64(10), uint64(5)).Return(comment, nil)
	repo.On("FindComment", ctx, uint64(10), uint64(6)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("MarkCommentDeleted", ctx, uint64(5)).Return(nil)

	assert.Equal(t, http.StatusForbidden, apiStatus(t, svc.DeleteComment(ctx, author, 10, 5)))
	assert.Equal(t, http.StatusNotFound, apiStatus(t, svc.DeleteComment(ctx, author, 10, 6)))
	assert.NoError(t, svc.DeleteComment(ctx, stranger, 10, 5))
	assert.NoError(t, svc.DeleteComment(ctx, adminUser, 10, 5))
	repo.AssertNumberOfCalls(t, "MarkCommentDeleted", 2)
}

func TestListComments_HidesDeletedAuthor(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusApproved), nil)
	repo.On("IsCollaborator", ctx, uint64(10), uint64(2)).Return(false, nil)
	repo.On("ListComments", ctx, uint64(10)).Return([]domain.Comment{
		{ID: 1, Content: "great", Author: &domain.User{Name: "Ada"}},
		{ID: 2, Content: domain.DeletedCommentContent, IsDeleted: true, Author: &domain.User{Name: "Bob"}},
	}, nil)

	views, err := svc.ListComments(ctx, stranger, 10)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ada", views[0].AuthorName)
	assert.Empty(t, views[1].AuthorName)
}

func TestToggleLike(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	repo.On("FindByID", ctx, uint64(10)).Return(completeIdea(workflow.StatusApproved), nil)
	repo.On("IsCollaborator", ctx, uint64(10), uint64(2)).Return(false, nil)
	repo.On("ToggleLike", ctx, uint64(10), uint64(2)).Return(true, nil)
	repo.On("CountLikes", ctx, uint64(10)).Return(int64(7), nil)

	state, err := svc.ToggleLike(ctx, stranger, 10)

	require.NoError(t, err)
	assert.Equal(t, &LikeState{Liked: true, Count: 7}, state)
}
