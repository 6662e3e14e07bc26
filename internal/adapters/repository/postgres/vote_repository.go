package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) IncrementVotes(ctx context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error) {
	query := `
		UPDATE choices
		SET votes = votes + 1
		WHERE id = $1 AND question_id = $2
		RETURNING id, question_id, choice_text, votes
	`
	var c domain.Choice
	err := r.db.QueryRowContext(ctx, query, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.Text, &c.Votes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChoiceNotFound
		}
		return nil, fmt.Errorf("failed to increment votes: %w", err)
	}
	return &c, nil
}
