package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

// IndexLimit bounds the number of questions on the index.
const IndexLimit = 5

type questionService struct {
	repo ports.QuestionRepository
	now  func() time.Time
}

func NewQuestionService(repo ports.QuestionRepository, now func() time.Time) ports.QuestionService {
	if now == nil {
		now = time.Now
	}
	return &questionService{
		repo: repo,
		now:  now,
	}
}

func (s *questionService) Create(ctx context.Context, input ports.CreateQuestionInput) (*domain.Question, error) {
	questionID := uuid.New()
	pubDate := s.now()
	if input.PubDate != nil {
		pubDate = *input.PubDate
	}

	question := &domain.Question{
		ID:      questionID,
		Text:    strings.TrimSpace(input.Text),
		PubDate: pubDate,
		EndDate: input.EndDate,
	}

	for _, text := range input.Choices {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		question.Choices = append(question.Choices, domain.Choice{
			ID:         uuid.New(),
			QuestionID: questionID,
			Text:       text,
		})
	}

	if err := question.Validate(); err != nil {
		return nil, err
	}
	if len(question.Choices) < 2 {
		return nil, &domain.ValidationError{Field: "choices", Message: "at least two choices are required"}
	}

	if err := s.repo.Save(ctx, question); err != nil {
		return nil, err
	}

	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id string) error {
	questionID, err := parseQuestionID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, questionID)
}

func (s *questionService) Index(ctx context.Context) ([]*domain.Question, error) {
	return s.repo.ListPublished(ctx, s.now(), IndexLimit)
}

// Detail returns a question only while it accepts votes; otherwise it returns
// domain.ErrVotingClosed.
func (s *questionService) Detail(ctx context.Context, id string) (*domain.Question, error) {
	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.CanVote(s.now()) {
		return nil, domain.ErrVotingClosed
	}
	return question, nil
}

func (s *questionService) Results(ctx context.Context, id string) (*domain.QuestionResults, error) {
	question, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.IsPublished(s.now()) {
		return nil, domain.ErrQuestionNotFound
	}
	return domain.NewQuestionResults(question), nil
}

func (s *questionService) get(ctx context.Context, id string) (*domain.Question, error) {
	questionID, err := parseQuestionID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, questionID)
}

// parseQuestionID treats malformed ids as unknown questions.
func parseQuestionID(id string) (uuid.UUID, error) {
	questionID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrQuestionNotFound
	}
	return questionID, nil
}
