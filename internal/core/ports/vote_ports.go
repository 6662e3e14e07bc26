package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type VoteRepository interface {
	// IncrementVotes adds one vote to the choice, scoped to its question, and
	// returns the updated choice. Returns domain.ErrChoiceNotFound when the
	// choice does not belong to the question.
	IncrementVotes(ctx context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error)
}

// VotePublisher forwards vote events to whoever maintains live tallies.
type VotePublisher interface {
	PublishVote(ctx context.Context, event domain.VoteEvent) error
}

// VoteInput carries identifiers exactly as received from the caller.
type VoteInput struct {
	QuestionID string
	ChoiceID   string
}

type VoteService interface {
	// Vote adds one vote to the chosen choice and returns the id of the
	// question voted on, for redirection. Questions outside their voting
	// window (not yet published, or past end_date) are rejected with
	// domain.ErrVotingClosed before the choice is looked at.
	Vote(ctx context.Context, input VoteInput) (uuid.UUID, error)
}
