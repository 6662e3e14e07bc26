package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

type memoryRepository struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*domain.Question
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{questions: make(map[uuid.UUID]*domain.Question)}
}

func (r *memoryRepository) Save(_ context.Context, q *domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.ID] = clone(q)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return clone(q), nil
}

func (r *memoryRepository) GetAll(_ context.Context) ([]*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Question
	for _, q := range r.questions {
		out = append(out, clone(q))
	}
	return out, nil
}

func (r *memoryRepository) ListPublished(_ context.Context, now time.Time, limit int) ([]*domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Question
	for _, q := range r.questions {
		if !q.PubDate.After(now) {
			out = append(out, clone(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *memoryRepository) IncrementVotes(_ context.Context, questionID, choiceID uuid.UUID) (*domain.Choice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[questionID]
	if !ok {
		return nil, domain.ErrChoiceNotFound
	}
	c, ok := q.Choice(choiceID)
	if !ok {
		return nil, domain.ErrChoiceNotFound
	}
	c.Votes++
	updated := *c
	return &updated, nil
}

func clone(q *domain.Question) *domain.Question {
	cp := *q
	cp.Choices = append([]domain.Choice(nil), q.Choices...)
	return &cp
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.VoteEvent
	err    error
}

func (p *recordingPublisher) PublishVote(_ context.Context, event domain.VoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type memoryTallyCache struct {
	mu      sync.Mutex
	tallies map[uuid.UUID]domain.Tally
	err     error
}

func newMemoryTallyCache() *memoryTallyCache {
	return &memoryTallyCache{tallies: make(map[uuid.UUID]domain.Tally)}
}

func (c *memoryTallyCache) SetVotes(_ context.Context, questionID, choiceID uuid.UUID, votes int64) (domain.Tally, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	t := c.tally(questionID)
	if votes > t[choiceID] {
		t[choiceID] = votes
	}
	return copyTally(t), nil
}

func (c *memoryTallyCache) Seed(_ context.Context, questionID uuid.UUID, tally domain.Tally) (domain.Tally, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	t := c.tally(questionID)
	for choiceID, votes := range tally {
		if _, ok := t[choiceID]; !ok {
			t[choiceID] = votes
		}
	}
	return copyTally(t), nil
}

func (c *memoryTallyCache) tally(questionID uuid.UUID) domain.Tally {
	t, ok := c.tallies[questionID]
	if !ok {
		t = domain.Tally{}
		c.tallies[questionID] = t
	}
	return t
}

func (c *memoryTallyCache) Replace(_ context.Context, questionID uuid.UUID, tally domain.Tally) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.tallies[questionID] = copyTally(tally)
	return nil
}

func (c *memoryTallyCache) Get(_ context.Context, questionID uuid.UUID) (domain.Tally, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return copyTally(c.tallies[questionID]), nil
}

func copyTally(t domain.Tally) domain.Tally {
	out := make(domain.Tally, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

type notification struct {
	questionID uuid.UUID
	tally      domain.Tally
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(questionID uuid.UUID, tally domain.Tally) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{questionID: questionID, tally: tally})
}
