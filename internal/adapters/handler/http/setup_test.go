package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/polls/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/polls/internal/core/domain"
	"github.com/vncsmyrnk/polls/internal/core/ports"
	"github.com/vncsmyrnk/polls/internal/core/services"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type testApp struct {
	handler   http.Handler
	questions ports.QuestionService
	auth      ports.AuthService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewRepository(db)
	questions := services.NewQuestionService(repo, clock)
	votes := services.NewVoteService(repo, repo, nil, clock)
	auth := services.NewAuthService(testSecret, clock)

	return &testApp{
		handler: NewHandler(Handlers{
			Questions: NewQuestionHandler(questions, clock),
			Votes:     NewVoteHandler(votes, questions),
			Admin:     NewAdminHandler(questions),
			Auth:      auth,
		}),
		questions: questions,
		auth:      auth,
	}
}

// createQuestion stores a question published the given number of days from
// now (negative for the past).
func (a *testApp) createQuestion(t *testing.T, text string, days int, end *time.Time) *domain.Question {
	t.Helper()
	pub := fixedNow.Add(time.Duration(days) * 24 * time.Hour)
	q, err := a.questions.Create(context.Background(), ports.CreateQuestionInput{
		Text:    text,
		PubDate: &pub,
		EndDate: end,
		Choices: []string{"Not much", "The sky"},
	})
	require.NoError(t, err)
	return q
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) vote(questionID string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/polls/"+questionID+"/vote", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := a.auth.IssueAdminToken("tester", time.Hour)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}
