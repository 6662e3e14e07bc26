package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteEvent is emitted after a choice's counter has been incremented.
type VoteEvent struct {
	QuestionID uuid.UUID `json:"question_id"`
	ChoiceID   uuid.UUID `json:"choice_id"`
	Votes      int64     `json:"votes"`
	CastAt     time.Time `json:"cast_at"`
}

// Tally maps choice ids to vote counts for a single question.
type Tally map[uuid.UUID]int64

// TallyOf builds a tally from the stored counters of q.
func TallyOf(q *Question) Tally {
	t := make(Tally, len(q.Choices))
	for _, c := range q.Choices {
		t[c.ID] = c.Votes
	}
	return t
}
