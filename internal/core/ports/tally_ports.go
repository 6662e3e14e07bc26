package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type TallyCache interface {
	// SetVotes records the count of one choice and returns the question's
	// tally. A count lower than the cached one is ignored, so replaying an
	// event or receiving events out of order never lowers a tally.
	SetVotes(ctx context.Context, questionID, choiceID uuid.UUID, votes int64) (domain.Tally, error)
	// Seed stores the counts of choices missing from the cache and returns
	// the resulting tally.
	Seed(ctx context.Context, questionID uuid.UUID, tally domain.Tally) (domain.Tally, error)
	Replace(ctx context.Context, questionID uuid.UUID, tally domain.Tally) error
	Get(ctx context.Context, questionID uuid.UUID) (domain.Tally, error)
}

type TallyNotifier interface {
	Notify(questionID uuid.UUID, tally domain.Tally)
}

type TallyService interface {
	Apply(ctx context.Context, event domain.VoteEvent) error
	SyncAll(ctx context.Context) error
	Get(ctx context.Context, questionID string) (domain.Tally, error)
}
