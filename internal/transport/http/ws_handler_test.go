package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"livequiz-service/internal/domain"
)

func dialWS(t *testing.T, s *testServer, quizID string) *websocket.Conn {
	t.Helper()
	u := "ws" + s.URL[len("http"):] + "/ws?quizId=" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame wsFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestWebSocketSnapshotThenEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	p := s.join(t, "Alice")
	if _, err := s.phases.Start(ctx, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	conn := dialWS(t, s, "quiz-1")

	// First frame is always a snapshot.
	frame := readFrame(t, conn)
	if frame.Type != "snapshot" {
		t.Fatalf("expected snapshot first, got %s", frame.Type)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(frame.Payload, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Phase != domain.PhaseLive || len(snap.Leaderboard) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	// A submission produces answer and score events on the live feed.
	if _, err := s.service.Submit(ctx, "quiz-1", p.ID, "q1", 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	var sawAnswer, sawScore bool
	for i := 0; i < 2; i++ {
		frame = readFrame(t, conn)
		if frame.Type != "event" {
			t.Fatalf("expected event frame, got %s", frame.Type)
		}
		var ev domain.Event
		if err := json.Unmarshal(frame.Payload, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		switch ev.Type {
		case domain.EventAnswerRecorded:
			sawAnswer = true
			if ev.Answer == nil || !ev.Answer.IsCorrect || ev.Answer.PointsEarned != 10 {
				t.Fatalf("unexpected answer event: %+v", ev)
			}
		case domain.EventScoreUpdated:
			sawScore = true
			if ev.Score == nil || ev.Score.TotalScore != 10 {
				t.Fatalf("unexpected score event: %+v", ev)
			}
		}
	}
	if !sawAnswer || !sawScore {
		t.Fatalf("expected answer and score events, got answer=%v score=%v", sawAnswer, sawScore)
	}

	// Phase transitions arrive on the same feed.
	if _, err := s.phases.Advance(ctx, "quiz-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	frame = readFrame(t, conn)
	var ev domain.Event
	if err := json.Unmarshal(frame.Payload, &ev); err != nil {
		t.Fatalf("decode phase event: %v", err)
	}
	if ev.Type != domain.EventPhaseChanged || ev.Phase == nil || ev.Phase.CurrentQuestionIndex != 1 {
		t.Fatalf("unexpected phase event: %+v", ev)
	}
}

func TestWebSocketRequiresQuizID(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.URL + "/ws")
	if err != nil {
		t.Fatalf("GET /ws: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without quizId, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownQuizSendsError(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s, "quiz-missing")

	frame := readFrame(t, conn)
	if frame.Type != "error" {
		t.Fatalf("expected error frame, got %s", frame.Type)
	}
}
