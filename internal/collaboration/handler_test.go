package collaboration

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

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RequestToJoin(ctx context.Context, actor workflow.Actor, ideaID uint64, message string) (*domain.CollaborationRequest, error) {
	args := m.Called(ctx, actor, ideaID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationRequest), args.Error(1)
}

func (m *MockService) ListRequests(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]domain.CollaborationRequest, error) {
	args := m.Called(ctx, actor, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CollaborationRequest), args.Error(1)
}

func (m *MockService) RespondToRequest(ctx context.Context, actor workflow.Actor, requestID uint64, approve bool) (*domain.CollaborationRequest, error) {
	args := m.Called(ctx, actor, requestID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CollaborationRequest), args.Error(1)
}

func (m *MockService) Propose(ctx context.Context, actor workflow.Actor, ideaID uint64, input ProposalInput) (*ProposalView, error) {
	args := m.Called(ctx, actor, ideaID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProposalView), args.Error(1)
}

func (m *MockService) ListProposals(ctx context.Context, actor workflow.Actor, ideaID uint64) ([]ProposalView, error) {
	args := m.Called(ctx, actor, ideaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProposalView), args.Error(1)
}

func (m *MockService) RespondToProposal(ctx context.Context, actor workflow.Actor, proposalID uint64, accept bool) (*ProposalView, error) {
	args := m.Called(ctx, actor, proposalID, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProposalView), args.Error(1)
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint64(2))
		c.Set(middleware.ContextRoles, []string{"submitter"})
		c.Next()
	})
	router.POST("/ideas/:id/collaboration-requests", h.RequestToJoin)
	router.PUT("/collaboration-requests/:id", h.RespondToRequest)
	router.POST("/ideas/:id/proposals", h.Propose)
	router.PUT("/proposals/:id", h.RespondToProposal)
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

func TestHandlerRequestToJoin(t *testing.T) {
	svc := new(MockService)
	svc.On("RequestToJoin", mock.Anything, mock.Anything, uint64(10), "count me in").
		Return(&domain.CollaborationRequest{ID: 1, Status: domain.CollaborationPending}, nil)

	w := doJSON(setupRouter(NewHandler(svc)), "POST", "/ideas/10/collaboration-requests", FormRequest{Message: "count me in"})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandlerRespond_Status(t *testing.T) {
	tests := []struct {
		status  string
		code    int
		approve bool
	}{
		{"approved", http.StatusOK, true},
		{"rejected", http.StatusOK, false},
		{"maybe", http.StatusUnprocessableEntity, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			svc := new(MockService)
			svc.On("RespondToRequest", mock.Anything, mock.Anything, uint64(4), tt.approve).
				Return(&domain.CollaborationRequest{ID: 4, Status: tt.status}, nil)
			svc.On("RespondToProposal", mock.Anything, mock.Anything, uint64(6), tt.approve).
				Return(&ProposalView{}, nil)
			router := setupRouter(NewHandler(svc))

			w := doJSON(router, "PUT", "/collaboration-requests/4", FormResponse{Status: tt.status})
			assert.Equal(t, tt.code, w.Code)

			w = doJSON(router, "PUT", "/proposals/6", FormResponse{Status: tt.status})
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandlerPropose(t *testing.T) {
	svc := new(MockService)
	svc.On("Propose", mock.Anything, mock.Anything, uint64(10), mock.MatchedBy(func(in ProposalInput) bool {
		return in.Summary == "sharper" && in.Changes.Title == "Solar kiosks v2"
	})).Return(&ProposalView{}, nil)

	w := doJSON(setupRouter(NewHandler(svc)), "POST", "/ideas/10/proposals", FormProposal{
		Summary: "sharper", Title: "Solar kiosks v2", ThematicArea: "Energy",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(setupRouter(NewHandler(svc)), "POST", "/ideas/10/proposals", map[string]string{"summary": "no title"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
