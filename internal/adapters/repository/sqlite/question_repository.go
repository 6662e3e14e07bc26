package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

// Repository implements both the question and the vote repository.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ ports.QuestionRepository = (*Repository)(nil)
	_ ports.VoteRepository     = (*Repository)(nil)
)

func (r *Repository) Save(ctx context.Context, question *domain.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var endDate sql.NullInt64
	if question.EndDate != nil {
		endDate = sql.NullInt64{Int64: toMicros(*question.EndDate), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO questions (id, question_text, pub_date, end_date) VALUES (?, ?, ?, ?)`,
		question.ID.String(), question.Text, toMicros(question.PubDate), endDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	for i, c := range question.Choices {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO choices (id, question_id, choice_text, votes, position) VALUES (?, ?, ?, ?, ?)`,
			c.ID.String(), question.ID.String(), c.Text, c.Votes, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, question_text, pub_date, end_date FROM questions WHERE id = ?`, id.String())

	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.Choices, err = r.fetchChoices(ctx, question.ID); err != nil {
		return nil, err
	}
	return question, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]*domain.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question_text, pub_date, end_date FROM questions ORDER BY pub_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all questions: %w", err)
	}
	return r.scanQuestions(ctx, rows)
}

func (r *Repository) ListPublished(ctx context.Context, now time.Time, limit int) ([]*domain.Question, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question_text, pub_date, end_date
		FROM questions
		WHERE pub_date <= ?
		ORDER BY pub_date DESC
		LIMIT ?`, toMicros(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published questions: %w", err)
	}
	return r.scanQuestions(ctx, rows)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *Repository) IncrementVotes(ctx context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error) {
	var c domain.Choice
	err := r.db.QueryRowContext(ctx, `
		UPDATE choices
		SET votes = votes + 1
		WHERE id = ? AND question_id = ?
		RETURNING id, question_id, choice_text, votes`,
		choiceID.String(), questionID.String(),
	).Scan(&c.ID, &c.QuestionID, &c.Text, &c.Votes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChoiceNotFound
		}
		return nil, fmt.Errorf("failed to increment votes: %w", err)
	}
	return &c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(s scanner) (*domain.Question, error) {
	var (
		q       domain.Question
		pubDate int64
		endDate sql.NullInt64
	)
	if err := s.Scan(&q.ID, &q.Text, &pubDate, &endDate); err != nil {
		return nil, err
	}
	q.PubDate = fromMicros(pubDate)
	if endDate.Valid {
		end := fromMicros(endDate.Int64)
		q.EndDate = &end
	}
	return &q, nil
}

func (r *Repository) scanQuestions(ctx context.Context, rows *sql.Rows) ([]*domain.Question, error) {
	var questions []*domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	// The single connection must be released before choices are fetched.
	rows.Close()

	for _, q := range questions {
		choices, err := r.fetchChoices(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		q.Choices = choices
	}
	return questions, nil
}

func (r *Repository) fetchChoices(ctx context.Context, questionID uuid.UUID) ([]domain.Choice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, question_id, choice_text, votes
		FROM choices
		WHERE question_id = ?
		ORDER BY position, choice_text`, questionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get choices: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating choices: %w", err)
	}
	return choices, nil
}
