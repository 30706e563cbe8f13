package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	tests := []struct {
		from    Status
		want    Status
		wantErr bool
	}{
		{StatusDraft, StatusStage1Review, false},
		{StatusStage1Revise, StatusStage1Review, false},
		{StatusStage2Revise, StatusStage2Review, false},
		{StatusStage1Review, StatusStage1Review, true},
		{StatusStage2Review, StatusStage2Review, true},
		{StatusApproved, StatusApproved, true},
		{StatusRejected, StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, err := Submit(tt.from)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		from     Status
		decision Decision
		want     Status
		wantErr  bool
	}{
		{StatusStage1Review, DecisionApprove, StatusStage2Review, false},
		{StatusStage1Review, DecisionRevise, StatusStage1Revise, false},
		{StatusStage1Review, DecisionReject, StatusRejected, false},
		{StatusStage2Review, DecisionApprove, StatusApproved, false},
		{StatusStage2Review, DecisionRevise, StatusStage2Revise, false},
		{StatusStage2Review, DecisionReject, StatusRejected, false},
		{StatusDraft, DecisionApprove, StatusDraft, true},
		{StatusStage1Revise, DecisionApprove, StatusStage1Revise, true},
		{StatusApproved, DecisionReject, StatusApproved, true},
		{StatusStage1Review, Decision("maybe"), StatusStage1Review, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.decision), func(t *testing.T) {
			got, err := Apply(tt.from, tt.decision)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, s := range []Status{StatusApproved, StatusRejected} {
		assert.True(t, s.Terminal())
		_, err := Submit(s)
		assert.Error(t, err)
		for _, d := range []Decision{DecisionApprove, DecisionRevise, DecisionReject} {
			_, err := Apply(s, d)
			assert.Error(t, err)
		}
	}
}

func TestTransitionsNeverSkipAStage(t *testing.T) {
	for _, tr := range Transitions() {
		from, to := StageOf(tr.From), StageOf(tr.To)
		if from == StageNone || to == StageNone {
			continue
		}
		assert.LessOrEqual(t, int(to)-int(from), 1, "%s -> %s", tr.From, tr.To)
		assert.GreaterOrEqual(t, int(to), int(from), "%s -> %s", tr.From, tr.To)
	}
}

func TestTransitionsTable(t *testing.T) {
	table := Transitions()
	require.Len(t, table, 9)
	assert.Equal(t, Transition{From: StatusDraft, Trigger: "submit", To: StatusStage1Review, Actor: "author"}, table[0])

	for _, tr := range table {
		assert.True(t, tr.From.Valid())
		assert.True(t, tr.To.Valid())
	}
}

func TestStageOf(t *testing.T) {
	assert.Equal(t, StageNone, StageOf(StatusDraft))
	assert.Equal(t, Stage1, StageOf(StatusStage1Review))
	assert.Equal(t, Stage1, StageOf(StatusStage1Revise))
	assert.Equal(t, Stage2, StageOf(StatusStage2Review))
	assert.Equal(t, Stage2, StageOf(StatusStage2Revise))
	assert.Equal(t, StageNone, StageOf(StatusApproved))
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.True(t, StatusStage2Revise.Editable())
	assert.False(t, StatusStage1Review.Editable())
	assert.True(t, StatusStage2Review.InReview())
	assert.False(t, StatusStage2Revise.InReview())
	assert.False(t, Status("pending").Valid())
	assert.True(t, DecisionRevise.Valid())
	assert.False(t, Decision("").Valid())
}
