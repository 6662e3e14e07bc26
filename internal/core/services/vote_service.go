package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type voteService struct {
	questionRepo ports.QuestionRepository
	voteRepo     ports.VoteRepository
	publisher    ports.VotePublisher
	now          func() time.Time
}

// NewVoteService builds the vote service. publisher may be nil, in which case
// no vote events are emitted.
func NewVoteService(questionRepo ports.QuestionRepository, voteRepo ports.VoteRepository, publisher ports.VotePublisher, now func() time.Time) ports.VoteService {
	if now == nil {
		now = time.Now
	}
	return &voteService{
		questionRepo: questionRepo,
		voteRepo:     voteRepo,
		publisher:    publisher,
		now:          now,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (uuid.UUID, error) {
	questionID, err := parseQuestionID(input.QuestionID)
	if err != nil {
		return uuid.Nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return uuid.Nil, err
	}

	now := s.now()
	if !question.CanVote(now) {
		return uuid.Nil, domain.ErrVotingClosed
	}

	choiceStr := strings.TrimSpace(input.ChoiceID)
	if choiceStr == "" {
		return uuid.Nil, domain.ErrNoChoiceSelected
	}
	choiceID, err := uuid.Parse(choiceStr)
	if err != nil {
		return uuid.Nil, domain.ErrNoChoiceSelected
	}

	choice, err := s.voteRepo.IncrementVotes(ctx, question.ID, choiceID)
	if err != nil {
		if errors.Is(err, domain.ErrChoiceNotFound) {
			return uuid.Nil, domain.ErrNoChoiceSelected
		}
		return uuid.Nil, err
	}

	if s.publisher != nil {
		event := domain.VoteEvent{
			QuestionID: question.ID,
			ChoiceID:   choice.ID,
			Votes:      choice.Votes,
			CastAt:     now,
		}
		if err := s.publisher.PublishVote(ctx, event); err != nil {
			slog.Warn("failed to publish vote event", "question_id", question.ID, "choice_id", choice.ID, "error", err)
		}
	}

	return question.ID, nil
}
