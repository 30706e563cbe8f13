package challenge

import (
	"bytes"
	"context"
	"encoding/json"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/middleware"
	"innovation-portal/internal/validation"
	"innovation-portal/internal/workflow"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateChallenge(ctx context.Context, actor workflow.Actor, input ChallengeInput) (*domain.Challenge, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockService) UpdateChallenge(ctx context.Context, actor workflow.Actor, id uint64, input ChallengeInput) (*domain.Challenge, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockService) CloseChallenge(ctx context.Context, actor workflow.Actor, id uint64) (*domain.Challenge, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockService) ShowChallenge(ctx context.Context, id uint64) (*domain.Challenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Challenge), args.Error(1)
}

func (m *MockService) ListChallenges(ctx context.Context, openOnly bool, page, pageSize int) (*ChallengePage, error) {
	args := m.Called(ctx, openOnly, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ChallengePage), args.Error(1)
}

func (m *MockService) CreateSubmission(ctx context.Context, actor workflow.Actor, challengeID uint64, input SubmissionInput) (*domain.ChallengeSubmission, error) {
	args := m.Called(ctx, actor, challengeID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeSubmission), args.Error(1)
}

func (m *MockService) UpdateSubmission(ctx context.Context, actor workflow.Actor, id uint64, input SubmissionInput) (*domain.ChallengeSubmission, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeSubmission), args.Error(1)
}

func (m *MockService) ShowSubmission(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeSubmission), args.Error(1)
}

func (m *MockService) ListSubmissions(ctx context.Context, actor workflow.Actor, challengeID uint64, page, pageSize int) (*SubmissionPage, error) {
	args := m.Called(ctx, actor, challengeID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubmissionPage), args.Error(1)
}

func (m *MockService) ListMySubmissions(ctx context.Context, actor workflow.Actor) ([]domain.ChallengeSubmission, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChallengeSubmission), args.Error(1)
}

func (m *MockService) Submit(ctx context.Context, actor workflow.Actor, id uint64) (*domain.ChallengeSubmission, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChallengeSubmission), args.Error(1)
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint64(1))
		c.Set(middleware.ContextRoles, []string{"challenge-manager"})
		c.Next()
	})
	router.GET("/challenges", h.ListChallenges)
	router.POST("/challenges", h.CreateChallenge)
	router.POST("/challenges/:id/submissions", h.CreateSubmission)
	return router
}

func doJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerCreateChallenge(t *testing.T) {
	svc := new(MockService)
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.On("CreateChallenge", mock.Anything, mock.Anything, mock.MatchedBy(func(in ChallengeInput) bool {
		return in.Title == "Water" && in.Deadline.Equal(deadline) && len(in.ThematicAreas) == 1
	})).Return(&domain.Challenge{ID: 1, Title: "Water", IsOpen: true}, nil)

	w := doJSON(setupRouter(NewHandler(svc)), "POST", "/challenges", FormChallenge{
		Title: "Water", ThematicAreas: []string{"Water"}, Deadline: deadline,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlerCreateChallenge_MissingDeadline(t *testing.T) {
	svc := new(MockService)
	w := doJSON(setupRouter(NewHandler(svc)), "POST", "/challenges", map[string]string{"title": "Water"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandlerListChallenges_OpenFilter(t *testing.T) {
	svc := new(MockService)
	svc.On("ListChallenges", mock.Anything, true, 1, 10).Return(&ChallengePage{Data: []domain.Challenge{}}, nil)

	w := httptest.NewRecorder()
	setupRouter(NewHandler(svc)).ServeHTTP(w, httptest.NewRequest("GET", "/challenges?open=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandlerCreateSubmission(t *testing.T) {
	svc := new(MockService)
	svc.On("CreateSubmission", mock.Anything, mock.Anything, uint64(4), mock.MatchedBy(func(in SubmissionInput) bool {
		return in.Title == "Filters" && len(in.Members) == 1
	})).Return(&domain.ChallengeSubmission{ID: 9}, nil)

	w := doJSON(setupRouter(NewHandler(svc)), "POST", "/challenges/4/submissions", FormSubmission{
		Title:   "Filters",
		Members: []FormMember{{Name: "Ada", Email: "ada@example.com"}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}
