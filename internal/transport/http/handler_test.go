package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

type testServer struct {
	*httptest.Server
	service *app.SubmissionService
	phases  *app.PhaseController
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	bus := app.NewBroadcaster()
	phases := app.NewPhaseController(quizzes, bus)
	service := app.NewSubmissionService(
		quizzes, phases,
		memory.NewAnswerLedger(),
		memory.NewRankSequencer(),
		memory.NewScoreAccumulator(),
		memory.NewParticipantDirectory(),
		bus,
	)

	mux := http.NewServeMux()
	NewHandler(service, phases).Register(mux, NewWSHandler(service))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{Server: server, service: service, phases: phases}
}

func sampleQuizzes() map[string]domain.QuizContent {
	return map[string]domain.QuizContent{
		"quiz-1": {
			ID:   "quiz-1",
			Name: "Sample",
			Questions: []domain.Question{
				{ID: "q1", QuizID: "quiz-1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectOption: 1, OrderIndex: 0},
				{ID: "q2", QuizID: "quiz-1", Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectOption: 0, OrderIndex: 1},
			},
		},
	}
}

func (s *testServer) postJSON(t *testing.T, path string, body any, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(s.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) join(t *testing.T, name string) domain.Participant {
	t.Helper()
	var p domain.Participant
	if code := s.postJSON(t, "/quizzes/quiz-1/join", map[string]string{"name": name}, &p); code != http.StatusOK {
		t.Fatalf("join returned %d", code)
	}
	return p
}

func TestSubmitAnswerFlow(t *testing.T) {
	s := newTestServer(t)
	p := s.join(t, "Alice")

	submit := map[string]any{
		"quizId":         "quiz-1",
		"participantId":  p.ID,
		"questionId":     "q1",
		"selectedOption": 1,
	}

	// Before start: 409.
	if code := s.postJSON(t, "/submit-answer", submit, nil); code != http.StatusConflict {
		t.Fatalf("expected 409 before start, got %d", code)
	}

	if code := s.postJSON(t, "/quizzes/quiz-1/start", nil, nil); code != http.StatusOK {
		t.Fatalf("start returned %d", code)
	}

	var result submitResponse
	if code := s.postJSON(t, "/submit-answer", submit, &result); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !result.Success || !result.IsCorrect || result.PointsEarned != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.AnswerRank == nil || *result.AnswerRank != 1 {
		t.Fatalf("expected rank 1, got %v", result.AnswerRank)
	}

	// Retry: duplicate, 400, no double scoring.
	var dup errorResponse
	if code := s.postJSON(t, "/submit-answer", submit, &dup); code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d", code)
	}
}

func TestSubmitAnswerUnknownIDs(t *testing.T) {
	s := newTestServer(t)
	p := s.join(t, "Alice")
	if code := s.postJSON(t, "/quizzes/quiz-1/start", nil, nil); code != http.StatusOK {
		t.Fatal("start failed")
	}

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown quiz", map[string]any{"quizId": "nope", "participantId": p.ID, "questionId": "q1", "selectedOption": 0}, http.StatusNotFound},
		{"unknown question", map[string]any{"quizId": "quiz-1", "participantId": p.ID, "questionId": "nope", "selectedOption": 0}, http.StatusNotFound},
		{"unknown participant", map[string]any{"quizId": "quiz-1", "participantId": "nope", "questionId": "q1", "selectedOption": 0}, http.StatusNotFound},
		{"missing fields", map[string]any{"quizId": "quiz-1"}, http.StatusBadRequest},
	}
	for _, c := range cases {
		if code := s.postJSON(t, "/submit-answer", c.body, nil); code != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, code)
		}
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := s.join(t, "Alice")
	bob := s.join(t, "Bob")
	if code := s.postJSON(t, "/quizzes/quiz-1/start", nil, nil); code != http.StatusOK {
		t.Fatal("start failed")
	}

	for _, id := range []string{alice.ID, bob.ID} {
		body := map[string]any{"quizId": "quiz-1", "participantId": id, "questionId": "q1", "selectedOption": 1}
		if code := s.postJSON(t, "/submit-answer", body, nil); code != http.StatusOK {
			t.Fatal("submit failed")
		}
	}

	resp, err := http.Get(s.URL + "/quizzes/quiz-1/snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot returned %d", resp.StatusCode)
	}

	var snap domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Leaderboard) != 2 || len(snap.Answers) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Leaderboard[0].ParticipantID != alice.ID || snap.Leaderboard[0].TotalScore != 10 {
		t.Fatalf("expected alice leading with 10, got %+v", snap.Leaderboard[0])
	}
	if snap.Leaderboard[1].TotalScore != 9 {
		t.Fatalf("expected bob with 9, got %+v", snap.Leaderboard[1])
	}
}

func TestQuestionAnswersEndpoint(t *testing.T) {
	s := newTestServer(t)
	p := s.join(t, "Alice")
	if code := s.postJSON(t, "/quizzes/quiz-1/start", nil, nil); code != http.StatusOK {
		t.Fatal("start failed")
	}
	body := map[string]any{"quizId": "quiz-1", "participantId": p.ID, "questionId": "q1", "selectedOption": 1}
	if code := s.postJSON(t, "/submit-answer", body, nil); code != http.StatusOK {
		t.Fatal("submit failed")
	}

	resp, err := http.Get(s.URL + "/quizzes/quiz-1/questions/q1/answers")
	if err != nil {
		t.Fatalf("GET answers: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answers returned %d", resp.StatusCode)
	}
	var answers []domain.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answers); err != nil {
		t.Fatalf("decode answers: %v", err)
	}
	if len(answers) != 1 || answers[0].ParticipantID != p.ID {
		t.Fatalf("unexpected answers: %+v", answers)
	}

	if resp, err := http.Get(s.URL + "/quizzes/quiz-1/questions/nope/answers"); err != nil {
		t.Fatalf("GET unknown question: %v", err)
	} else {
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown question, got %d", resp.StatusCode)
		}
	}
}

func TestOperatorEndpoints(t *testing.T) {
	s := newTestServer(t)

	var view domain.Quiz
	if code := s.postJSON(t, "/quizzes/quiz-1/start", nil, &view); code != http.StatusOK || !view.Started {
		t.Fatalf("start: code=%d view=%+v", code, view)
	}
	if code := s.postJSON(t, "/quizzes/quiz-1/advance", nil, &view); code != http.StatusOK || view.CurrentQuestionIndex != 1 {
		t.Fatalf("advance: code=%d view=%+v", code, view)
	}
	// Past the last question: still 200, index unchanged.
	if code := s.postJSON(t, "/quizzes/quiz-1/advance", nil, &view); code != http.StatusOK || view.CurrentQuestionIndex != 1 {
		t.Fatalf("no-op advance: code=%d view=%+v", code, view)
	}
	if code := s.postJSON(t, "/quizzes/quiz-1/end", nil, &view); code != http.StatusOK || !view.Ended {
		t.Fatalf("end: code=%d view=%+v", code, view)
	}
	if code := s.postJSON(t, "/quizzes/missing/start", nil, nil); code != http.StatusNotFound {
		t.Fatalf("start unknown quiz: expected 404, got %d", code)
	}
}
