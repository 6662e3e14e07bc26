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

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndex(t *testing.T) {
	t.Run("no questions", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/api/polls")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[indexResponse](t, rec.Body)
		assert.Empty(t, body.Questions)
		assert.Empty(t, body.Message)
	})

	t.Run("future questions are hidden", func(t *testing.T) {
		app := newTestApp(t)
		past := app.createQuestion(t, "Past question.", -30, nil)
		app.createQuestion(t, "Future question.", 30, nil)

		body := decode[indexResponse](t, app.get("/api/polls").Body)
		require.Len(t, body.Questions, 1)
		assert.Equal(t, past.ID, body.Questions[0].ID)
	})

	t.Run("newest first, at most five", func(t *testing.T) {
		app := newTestApp(t)
		var ids []uuid.UUID
		for days := -7; days <= -1; days++ {
			ids = append(ids, app.createQuestion(t, "Question.", days, nil).ID)
		}

		body := decode[indexResponse](t, app.get("/api/polls").Body)
		require.Len(t, body.Questions, 5)
		for i, q := range body.Questions {
			assert.Equal(t, ids[len(ids)-1-i], q.ID)
		}
	})

	t.Run("flags recent questions", func(t *testing.T) {
		app := newTestApp(t)
		recent := app.createQuestion(t, "Recent question.", 0, nil)
		app.createQuestion(t, "Old question.", -2, nil)

		body := decode[indexResponse](t, app.get("/api/polls").Body)
		require.Len(t, body.Questions, 2)
		assert.Equal(t, recent.ID, body.Questions[0].ID)
		assert.True(t, body.Questions[0].PublishedRecently)
		assert.False(t, body.Questions[1].PublishedRecently)
	})

	t.Run("echoes redirect message", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.get("/api/polls?" + url.Values{"error": {CantVoteMessage}}.Encode())
		body := decode[indexResponse](t, rec.Body)
		assert.Equal(t, CantVoteMessage, body.Message)
	})
}

func TestDetail(t *testing.T) {
	app := newTestApp(t)

	t.Run("open question", func(t *testing.T) {
		q := app.createQuestion(t, "Past question.", -5, nil)
		rec := app.get("/api/polls/" + q.ID.String())
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[domain.Question](t, rec.Body)
		assert.Equal(t, q.ID, got.ID)
		assert.Len(t, got.Choices, 2)
	})

	t.Run("future question redirects", func(t *testing.T) {
		q := app.createQuestion(t, "Future question.", 5, nil)
		rec := app.get("/api/polls/" + q.ID.String())
		require.Equal(t, http.StatusSeeOther, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/api/polls", location.Path)
		assert.Equal(t, CantVoteMessage, location.Query().Get("error"))
	})

	t.Run("ended question redirects", func(t *testing.T) {
		end := fixedNow.Add(-time.Hour)
		q := app.createQuestion(t, "Ended question.", -5, &end)
		rec := app.get("/api/polls/" + q.ID.String())
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("missing question", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, app.get("/api/polls/"+uuid.NewString()).Code)
		assert.Equal(t, http.StatusNotFound, app.get("/api/polls/42").Code)
	})
}

func TestResults(t *testing.T) {
	app := newTestApp(t)

	t.Run("published question", func(t *testing.T) {
		q := app.createQuestion(t, "Past question.", -1, nil)
		rec := app.get("/api/polls/" + q.ID.String() + "/results")
		require.Equal(t, http.StatusOK, rec.Code)

		results := decode[domain.QuestionResults](t, rec.Body)
		assert.Equal(t, int64(0), results.TotalVotes)
		require.Len(t, results.Choices, 2)
		assert.Zero(t, results.Choices[0].Percentage)
	})

	t.Run("unpublished question", func(t *testing.T) {
		q := app.createQuestion(t, "Future question.", 1, nil)
		assert.Equal(t, http.StatusNotFound, app.get("/api/polls/"+q.ID.String()+"/results").Code)
	})
}

func TestSwaggerDoc(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/polls/{id}/vote")
}
