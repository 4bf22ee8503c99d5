package app

import (
	"context"
	"fmt"
)

// Reconciler repairs participant totals from the answer ledger. The ledger is
// the source of truth; a total is a derived cache that can drift only when a
// score increment fails after its answer committed.
type Reconciler struct {
	ledger  AnswerLedger
	scores  ScoreAccumulator
	players ParticipantDirectory
}

func NewReconciler(ledger AnswerLedger, scores ScoreAccumulator, players ParticipantDirectory) *Reconciler {
	return &Reconciler{ledger: ledger, scores: scores, players: players}
}

// ReconcileParticipant recomputes one participant's total as the sum of
// points over their ledger answers and overwrites the stored total if it
// drifted. Returns the derived total.
func (r *Reconciler) ReconcileParticipant(ctx context.Context, quizID, participantID string) (int, error) {
	answers, err := r.ledger.QuizAnswers(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("read ledger: %w", err)
	}

	derived := 0
	for _, a := range answers {
		if a.ParticipantID == participantID {
			derived += a.PointsEarned
		}
	}

	stored, err := r.scores.TotalScore(ctx, participantID)
	if err != nil {
		return 0, fmt.Errorf("read stored total: %w", err)
	}
	if stored != derived {
		if err := r.scores.ReconcileTotal(ctx, participantID, derived); err != nil {
			return 0, fmt.Errorf("write reconciled total: %w", err)
		}
	}
	return derived, nil
}

// ReconcileQuiz sweeps every participant of a quiz and returns how many
// totals had drifted.
func (r *Reconciler) ReconcileQuiz(ctx context.Context, quizID string) (int, error) {
	participants, err := r.players.ByQuiz(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("list participants: %w", err)
	}
	answers, err := r.ledger.QuizAnswers(ctx, quizID)
	if err != nil {
		return 0, fmt.Errorf("read ledger: %w", err)
	}

	derived := make(map[string]int, len(participants))
	for _, a := range answers {
		derived[a.ParticipantID] += a.PointsEarned
	}

	fixed := 0
	for _, p := range participants {
		stored, err := r.scores.TotalScore(ctx, p.ID)
		if err != nil {
			return fixed, fmt.Errorf("read stored total for %s: %w", p.ID, err)
		}
		want := derived[p.ID]
		if stored == want {
			continue
		}
		if err := r.scores.ReconcileTotal(ctx, p.ID, want); err != nil {
			return fixed, fmt.Errorf("write reconciled total for %s: %w", p.ID, err)
		}
		fixed++
	}
	return fixed, nil
}
