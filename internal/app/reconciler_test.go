package app_test

import (
	"context"
	"testing"

	"livequiz-service/internal/app"
)

func TestReconcileQuizRepairsDriftedTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.startQuiz(t)
	alice := env.join(t, "Alice")
	bob := env.join(t, "Bob")

	if _, err := env.service.Submit(ctx, "quiz-1", alice.ID, "q1", 2); err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	if _, err := env.service.Submit(ctx, "quiz-1", bob.ID, "q1", 2); err != nil {
		t.Fatalf("bob submit: %v", err)
	}

	// Corrupt one stored total to simulate a lost increment.
	if err := env.scores.ReconcileTotal(ctx, alice.ID, 3); err != nil {
		t.Fatalf("corrupt total: %v", err)
	}

	reconciler := app.NewReconciler(env.ledger, env.scores, env.players)
	fixed, err := reconciler.ReconcileQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("reconcile quiz: %v", err)
	}
	if fixed != 1 {
		t.Fatalf("expected 1 corrected total, got %d", fixed)
	}

	if total, _ := env.scores.TotalScore(ctx, alice.ID); total != 10 {
		t.Fatalf("alice total not restored: %d", total)
	}
	if total, _ := env.scores.TotalScore(ctx, bob.ID); total != 9 {
		t.Fatalf("bob total disturbed: %d", total)
	}
}

func TestReconcileParticipantReturnsDerivedTotal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.startQuiz(t)
	p := env.join(t, "Alice")

	if _, err := env.service.Submit(ctx, "quiz-1", p.ID, "q1", 2); err != nil {
		t.Fatalf("submit: %v", err)
	}

	reconciler := app.NewReconciler(env.ledger, env.scores, env.players)
	total, err := reconciler.ReconcileParticipant(ctx, "quiz-1", p.ID)
	if err != nil {
		t.Fatalf("reconcile participant: %v", err)
	}
	if total != 10 {
		t.Fatalf("expected derived total 10, got %d", total)
	}
}
