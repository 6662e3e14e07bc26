package http

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/polls/internal/core/domain"
)

func TestVote(t *testing.T) {
	app := newTestApp(t)

	t.Run("counts the selected choice and redirects to results", func(t *testing.T) {
		q := app.createQuestion(t, "What's up?", -1, nil)
		chosen := q.Choices[1]

		rec := app.vote(q.ID.String(), url.Values{"choice": {chosen.ID.String()}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/api/polls/"+q.ID.String()+"/results", rec.Header().Get("Location"))

		results := decode[domain.QuestionResults](t, app.get(rec.Header().Get("Location")).Body)
		assert.Equal(t, int64(1), results.TotalVotes)
		for _, c := range results.Choices {
			if c.ID == chosen.ID {
				assert.Equal(t, int64(1), c.Votes)
				assert.Equal(t, 100.0, c.Percentage)
			} else {
				assert.Zero(t, c.Votes)
			}
		}
	})

	t.Run("missing or foreign choice", func(t *testing.T) {
		q := app.createQuestion(t, "What's up?", -1, nil)
		other := app.createQuestion(t, "Other?", -1, nil)

		for name, form := range map[string]url.Values{
			"no field":       {},
			"empty":          {"choice": {""}},
			"malformed":      {"choice": {"abc"}},
			"unknown":        {"choice": {uuid.NewString()}},
			"other question": {"choice": {other.Choices[0].ID.String()}},
		} {
			t.Run(name, func(t *testing.T) {
				rec := app.vote(q.ID.String(), form)
				require.Equal(t, http.StatusBadRequest, rec.Code)

				body := decode[voteErrorResponse](t, rec.Body)
				assert.Equal(t, "You didn't select a choice.", body.Message)
				require.NotNil(t, body.Question)
				assert.Equal(t, q.ID, body.Question.ID)
			})
		}

		results := decode[domain.QuestionResults](t, app.get("/api/polls/"+q.ID.String()+"/results").Body)
		assert.Zero(t, results.TotalVotes)
		results = decode[domain.QuestionResults](t, app.get("/api/polls/"+other.ID.String()+"/results").Body)
		assert.Zero(t, results.TotalVotes)
	})

	t.Run("unknown question", func(t *testing.T) {
		rec := app.vote(uuid.NewString(), url.Values{"choice": {uuid.NewString()}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("closed question", func(t *testing.T) {
		end := fixedNow.Add(-time.Minute)
		q := app.createQuestion(t, "Closed?", -1, &end)
		rec := app.vote(q.ID.String(), url.Values{"choice": {q.Choices[0].ID.String()}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
