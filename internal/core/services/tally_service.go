package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
)

type TallyService struct {
	questionRepo ports.QuestionRepository
	cache        ports.TallyCache
	notifier     ports.TallyNotifier
	now          func() time.Time
}

// NewTallyService keeps the live tally cache in step with the stored
// counters. notifier may be nil when nobody subscribes to updates.
func NewTallyService(questionRepo ports.QuestionRepository, cache ports.TallyCache, notifier ports.TallyNotifier, now func() time.Time) *TallyService {
	if now == nil {
		now = time.Now
	}
	return &TallyService{
		questionRepo: questionRepo,
		cache:        cache,
		notifier:     notifier,
		now:          now,
	}
}

// Apply records the count carried by event. Applying the same event twice
// leaves the tally unchanged.
func (s *TallyService) Apply(ctx context.Context, event domain.VoteEvent) error {
	if _, err := s.warm(ctx, event.QuestionID); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			slog.Warn("dropping vote event for unknown question", "question_id", event.QuestionID)
			return nil
		}
		return err
	}

	tally, err := s.cache.SetVotes(ctx, event.QuestionID, event.ChoiceID, event.Votes)
	if err != nil {
		return fmt.Errorf("failed to update tally for question %s: %w", event.QuestionID, err)
	}

	if s.notifier != nil {
		s.notifier.Notify(event.QuestionID, tally)
	}
	return nil
}

// PublishVote applies the event in process. It lets the service stand in for
// a message broker.
func (s *TallyService) PublishVote(ctx context.Context, event domain.VoteEvent) error {
	return s.Apply(ctx, event)
}

func (s *TallyService) SyncAll(ctx context.Context) error {
	questions, err := s.questionRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all questions: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(questions))

	for _, question := range questions {
		wg.Add(1)
		go func(q *domain.Question) {
			defer wg.Done()
			if err := s.cache.Replace(ctx, q.ID, domain.TallyOf(q)); err != nil {
				errChan <- fmt.Errorf("failed to sync tally for question %s: %w", q.ID, err)
			}
		}(question)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

// Get returns the tally of a published question.
func (s *TallyService) Get(ctx context.Context, questionID string) (domain.Tally, error) {
	id, err := uuid.Parse(questionID)
	if err != nil {
		return nil, domain.ErrQuestionNotFound
	}

	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.IsPublished(s.now()) {
		return nil, domain.ErrQuestionNotFound
	}

	tally, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tally for question %s: %w", id, err)
	}
	if len(tally) > 0 {
		return tally, nil
	}
	return s.seed(ctx, question)
}

// warm makes sure the cache holds every choice of the question, loading the
// stored counters when it holds nothing.
func (s *TallyService) warm(ctx context.Context, questionID uuid.UUID) (domain.Tally, error) {
	tally, err := s.cache.Get(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tally for question %s: %w", questionID, err)
	}
	if len(tally) > 0 {
		return tally, nil
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return s.seed(ctx, question)
}

func (s *TallyService) seed(ctx context.Context, question *domain.Question) (domain.Tally, error) {
	tally, err := s.cache.Seed(ctx, question.ID, domain.TallyOf(question))
	if err != nil {
		return nil, fmt.Errorf("failed to seed tally for question %s: %w", question.ID, err)
	}
	return tally, nil
}
