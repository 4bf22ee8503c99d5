package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
)

func newPhaseController() (*app.PhaseController, *app.Broadcaster) {
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(testQuizzes()), 5*time.Minute)
	bus := app.NewBroadcaster()
	return app.NewPhaseController(quizzes, bus), bus
}

func TestPhaseLifecycle(t *testing.T) {
	ctx := context.Background()
	phases, _ := newPhaseController()

	view, err := phases.View(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Phase() != domain.PhaseScheduled {
		t.Fatalf("expected scheduled, got %s", view.Phase())
	}

	if view, err = phases.Start(ctx, "quiz-1"); err != nil || view.Phase() != domain.PhaseLive {
		t.Fatalf("start: view=%+v err=%v", view, err)
	}
	if view, err = phases.Advance(ctx, "quiz-1"); err != nil || view.CurrentQuestionIndex != 1 {
		t.Fatalf("advance: view=%+v err=%v", view, err)
	}
	if view, err = phases.End(ctx, "quiz-1"); err != nil || view.Phase() != domain.PhaseEnded {
		t.Fatalf("end: view=%+v err=%v", view, err)
	}

	if _, err = phases.Start(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizEnded) {
		t.Fatalf("expected ended error on restart, got %v", err)
	}
	if _, err = phases.Advance(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotLive) {
		t.Fatalf("expected not-live advancing an ended quiz, got %v", err)
	}
}

func TestAdvanceBeforeStartRejected(t *testing.T) {
	ctx := context.Background()
	phases, _ := newPhaseController()

	if _, err := phases.Advance(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotLive) {
		t.Fatalf("expected not-live, got %v", err)
	}
	if _, err := phases.End(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotLive) {
		t.Fatalf("expected not-live ending an unstarted quiz, got %v", err)
	}
}

func TestAdvancePastLastQuestionIsSilentNoOp(t *testing.T) {
	ctx := context.Background()
	phases, bus := newPhaseController()

	if _, err := phases.Start(ctx, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := phases.Advance(ctx, "quiz-1"); err != nil {
		t.Fatalf("advance to last: %v", err)
	}

	ch, cancel := bus.Subscribe("quiz-1")
	defer cancel()

	view, err := phases.Advance(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("advance past last: %v", err)
	}
	if view.CurrentQuestionIndex != 1 {
		t.Fatalf("index moved past last question: %d", view.CurrentQuestionIndex)
	}

	select {
	case ev := <-ch:
		t.Fatalf("no-op advance emitted an event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransitionsPublishInOrder(t *testing.T) {
	ctx := context.Background()
	phases, bus := newPhaseController()
	ch, cancel := bus.Subscribe("quiz-1")
	defer cancel()

	if _, err := phases.Start(ctx, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := phases.Advance(ctx, "quiz-1"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := phases.End(ctx, "quiz-1"); err != nil {
		t.Fatalf("end: %v", err)
	}

	want := []struct {
		phase domain.Phase
		index int
	}{
		{domain.PhaseLive, 0},
		{domain.PhaseLive, 1},
		{domain.PhaseEnded, 1},
	}
	for i, w := range want {
		select {
		case ev := <-ch:
			if ev.Type != domain.EventPhaseChanged || ev.Phase == nil {
				t.Fatalf("event %d: not a phase event: %+v", i, ev)
			}
			if ev.Phase.Phase != w.phase || ev.Phase.CurrentQuestionIndex != w.index {
				t.Fatalf("event %d: got %+v, want %+v", i, *ev.Phase, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing phase event %d", i)
		}
	}
}

func TestPhaseUnknownQuiz(t *testing.T) {
	ctx := context.Background()
	phases, _ := newPhaseController()
	if _, err := phases.Start(ctx, "quiz-missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz-not-found, got %v", err)
	}
}

func TestRepeatedStartAndEndAreNoOps(t *testing.T) {
	ctx := context.Background()
	phases, bus := newPhaseController()

	if _, err := phases.Start(ctx, "quiz-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	ch, cancel := bus.Subscribe("quiz-1")
	defer cancel()

	if _, err := phases.Start(ctx, "quiz-1"); err != nil {
		t.Fatalf("second start: %v", err)
	}
	select {
	case ev := <-ch:
		t.Fatalf("repeated start emitted an event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
