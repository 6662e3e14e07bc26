package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxQuestionTextLen = 200
	MaxChoiceTextLen   = 200

	// RecentWindow bounds WasPublishedRecently.
	RecentWindow = 24 * time.Hour
)

type Question struct {
	ID      uuid.UUID  `json:"id"`
	Text    string     `json:"question_text"`
	PubDate time.Time  `json:"pub_date"`
	EndDate *time.Time `json:"end_date,omitempty"`
	Choices []Choice   `json:"choices,omitempty"`
}

type Choice struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"choice_text"`
	Votes      int64     `json:"votes"`
}

func (q *Question) String() string {
	return q.Text
}

// IsPublished reports whether now is at or after the publication date.
func (q *Question) IsPublished(now time.Time) bool {
	return !now.Before(q.PubDate)
}

// WasPublishedRecently reports whether PubDate falls in (now-24h, now].
// Future questions are never recent.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	if q.PubDate.After(now) {
		return false
	}
	return q.PubDate.After(now.Add(-RecentWindow))
}

// CanVote reports whether now lies in the eligibility window
// [PubDate, EndDate], or [PubDate, inf) when EndDate is nil.
func (q *Question) CanVote(now time.Time) bool {
	if !q.IsPublished(now) {
		return false
	}
	return q.EndDate == nil || !now.After(*q.EndDate)
}

// Choice returns the choice with the given id, if it belongs to q.
func (q *Question) Choice(id uuid.UUID) (*Choice, bool) {
	for i := range q.Choices {
		if q.Choices[i].ID == id {
			return &q.Choices[i], true
		}
	}
	return nil, false
}

// Validate checks the bounds a stored question must satisfy.
func (q *Question) Validate() error {
	if q.Text == "" {
		return &ValidationError{Field: "question_text", Message: "is required"}
	}
	if len([]rune(q.Text)) > MaxQuestionTextLen {
		return &ValidationError{Field: "question_text", Message: "must be at most 200 characters"}
	}
	if q.EndDate != nil && q.EndDate.Before(q.PubDate) {
		return &ValidationError{Field: "end_date", Message: "must not be before pub_date"}
	}
	for _, c := range q.Choices {
		if c.Text == "" {
			return &ValidationError{Field: "choices", Message: "choice text is required"}
		}
		if len([]rune(c.Text)) > MaxChoiceTextLen {
			return &ValidationError{Field: "choices", Message: "choice text must be at most 200 characters"}
		}
	}
	return nil
}
