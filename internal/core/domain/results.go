package domain

import "github.com/google/uuid"

type ChoiceResult struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"choice_text"`
	Votes      int64     `json:"votes"`
	Percentage float64   `json:"percentage"`
}

type QuestionResults struct {
	Question   *Question      `json:"question"`
	TotalVotes int64          `json:"total_votes"`
	Choices    []ChoiceResult `json:"choices"`
}

// NewQuestionResults computes each choice's share of the question's votes.
// Percentages are zero when no votes have been cast.
func NewQuestionResults(q *Question) *QuestionResults {
	var total int64
	for _, c := range q.Choices {
		total += c.Votes
	}

	res := &QuestionResults{
		Question:   q,
		TotalVotes: total,
		Choices:    make([]ChoiceResult, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(c.Votes) / float64(total)) * 100
		}
		res.Choices = append(res.Choices, ChoiceResult{
			ID:         c.ID,
			Text:       c.Text,
			Votes:      c.Votes,
			Percentage: percentage,
		})
	}
	return res
}
