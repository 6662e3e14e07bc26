package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

func votesOf(t *testing.T, repo *memoryRepository, id uuid.UUID) []int64 {
	t.Helper()
	q, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	var votes []int64
	for _, c := range q.Choices {
		votes = append(votes, c.Votes)
	}
	return votes
}

func TestVoteIncrementsSelectedChoiceOnly(t *testing.T) {
	repo := newMemoryRepository()
	publisher := &recordingPublisher{}
	svc := NewVoteService(repo, repo, publisher, clock)

	q := createQuestion(t, repo, "Vote question.", -1)

	questionID, err := svc.Vote(context.Background(), ports.VoteInput{
		QuestionID: q.ID.String(),
		ChoiceID:   q.Choices[1].ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, q.ID, questionID)
	assert.Equal(t, []int64{0, 1}, votesOf(t, repo, q.ID))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.VoteEvent{
		QuestionID: q.ID,
		ChoiceID:   q.Choices[1].ID,
		Votes:      1,
		CastAt:     fixedNow,
	}, publisher.events[0])
}

func TestVoteWithoutValidChoice(t *testing.T) {
	repo := newMemoryRepository()
	q := createQuestion(t, repo, "Vote question.", -1)
	other := createQuestion(t, repo, "Other question.", -1)

	tests := []struct {
		name     string
		choiceID string
	}{
		{"no choice", ""},
		{"blank choice", "   "},
		{"malformed choice", "abc"},
		{"unknown choice", uuid.NewString()},
		{"choice of another question", other.Choices[0].ID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			svc := NewVoteService(repo, repo, publisher, clock)

			_, err := svc.Vote(context.Background(), ports.VoteInput{QuestionID: q.ID.String(), ChoiceID: tt.choiceID})
			assert.ErrorIs(t, err, domain.ErrNoChoiceSelected)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "You didn't select a choice.", verr.Message)

			assert.Equal(t, []int64{0, 0}, votesOf(t, repo, q.ID))
			assert.Equal(t, []int64{0, 0}, votesOf(t, repo, other.ID))
			assert.Empty(t, publisher.events)
		})
	}
}

func TestVoteUnknownQuestion(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewVoteService(repo, repo, nil, clock)

	_, err := svc.Vote(context.Background(), ports.VoteInput{QuestionID: uuid.NewString(), ChoiceID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	_, err = svc.Vote(context.Background(), ports.VoteInput{QuestionID: "1", ChoiceID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestVoteClosedQuestion(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewVoteService(repo, repo, nil, clock)

	future := createQuestion(t, repo, "Future question.", 30)
	_, err := svc.Vote(context.Background(), ports.VoteInput{QuestionID: future.ID.String(), ChoiceID: future.Choices[0].ID.String()})
	assert.ErrorIs(t, err, domain.ErrVotingClosed)

	closed := createQuestion(t, repo, "Closed question.", -3)
	end := daysFromNow(-1)
	closed.EndDate = &end
	require.NoError(t, repo.Save(context.Background(), closed))

	_, err = svc.Vote(context.Background(), ports.VoteInput{QuestionID: closed.ID.String(), ChoiceID: closed.Choices[0].ID.String()})
	assert.ErrorIs(t, err, domain.ErrVotingClosed)

	assert.Equal(t, []int64{0, 0}, votesOf(t, repo, future.ID))
	assert.Equal(t, []int64{0, 0}, votesOf(t, repo, closed.ID))
}

func TestVoteSucceedsWhenPublishFails(t *testing.T) {
	repo := newMemoryRepository()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := NewVoteService(repo, repo, publisher, clock)
	q := createQuestion(t, repo, "Vote question.", -1)

	_, err := svc.Vote(context.Background(), ports.VoteInput{QuestionID: q.ID.String(), ChoiceID: q.Choices[0].ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0}, votesOf(t, repo, q.ID))
}

func TestConcurrentVotesAreAllCounted(t *testing.T) {
	repo := newMemoryRepository()
	svc := NewVoteService(repo, repo, nil, clock)
	q := createQuestion(t, repo, "Busy question.", -1)

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Vote(context.Background(), ports.VoteInput{QuestionID: q.ID.String(), ChoiceID: q.Choices[0].ID.String()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []int64{voters, 0}, votesOf(t, repo, q.ID))
}
