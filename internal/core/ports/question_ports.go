package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type QuestionRepository interface {
	Save(ctx context.Context, question *domain.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error)
	GetAll(ctx context.Context) ([]*domain.Question, error)
	// ListPublished returns questions with pub_date <= now, newest first.
	// A limit <= 0 means no limit.
	ListPublished(ctx context.Context, now time.Time, limit int) ([]*domain.Question, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateQuestionInput struct {
	Text    string
	PubDate *time.Time
	EndDate *time.Time
	Choices []string
}

type QuestionService interface {
	Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error)
	Delete(ctx context.Context, id string) error
	Index(ctx context.Context) ([]*domain.Question, error)
	Detail(ctx context.Context, id string) (*domain.Question, error)
	Results(ctx context.Context, id string) (*domain.QuestionResults, error)
}
