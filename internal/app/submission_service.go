package app

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"livequiz-service/internal/domain"
)

// SubmissionService handles concurrent answer submissions: it guards the
// single-attempt invariant through the ledger, assigns speed ranks to correct
// answers, applies points atomically, and publishes the outcome to quiz
// observers. Locks are only ever taken one at a time, in a fixed order
// (ledger slot, then rank counter, then score), so the flow cannot deadlock.
type SubmissionService struct {
	quizzes    QuizRepository
	phases     *PhaseController
	ledger     AnswerLedger
	ranks      RankSequencer
	scores     ScoreAccumulator
	players    ParticipantDirectory
	bus        *Broadcaster
	reconciler *Reconciler

	now   func() time.Time
	newID func() string
}

func NewSubmissionService(
	quizzes QuizRepository,
	phases *PhaseController,
	ledger AnswerLedger,
	ranks RankSequencer,
	scores ScoreAccumulator,
	players ParticipantDirectory,
	bus *Broadcaster,
) *SubmissionService {
	return &SubmissionService{
		quizzes:    quizzes,
		phases:     phases,
		ledger:     ledger,
		ranks:      ranks,
		scores:     scores,
		players:    players,
		bus:        bus,
		reconciler: NewReconciler(ledger, scores, players),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Submit processes one answer attempt. Observable side effects happen in a
// fixed order: ledger write, then score update, then broadcast. A duplicate
// attempt fails before any of them.
func (s *SubmissionService) Submit(ctx context.Context, quizID, participantID, questionID string, selectedOption int) (domain.SubmissionResult, error) {
	view, err := s.phases.View(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if view.Phase() != domain.PhaseLive {
		return domain.SubmissionResult{}, domain.ErrQuizNotLive
	}

	content, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	question, ok := content.QuestionByID(questionID)
	if !ok {
		return domain.SubmissionResult{}, domain.ErrQuestionNotFound
	}
	if selectedOption < 0 || selectedOption >= len(question.Options) {
		return domain.SubmissionResult{}, domain.ErrOptionNotFound
	}

	participant, err := s.players.Get(ctx, participantID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if participant.QuizID != quizID {
		return domain.SubmissionResult{}, domain.ErrParticipantNotFound
	}

	reserved, err := s.ledger.Reserve(ctx, participantID, questionID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("reserve answer slot: %w", err)
	}
	if !reserved {
		return domain.SubmissionResult{}, domain.ErrDuplicateSubmission
	}

	isCorrect := selectedOption == question.CorrectOption

	var rank *int
	points := 0
	if isCorrect {
		r, err := s.ranks.NextRank(ctx, questionID)
		if err != nil {
			s.release(ctx, participantID, questionID)
			return domain.SubmissionResult{}, fmt.Errorf("assign rank: %w", err)
		}
		rank = &r
		points = PointsForRank(r)
	}

	answer := domain.Answer{
		ID:             s.newID(),
		QuizID:         quizID,
		ParticipantID:  participantID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsCorrect:      isCorrect,
		AnswerRank:     rank,
		PointsEarned:   points,
		AnsweredAt:     s.now(),
	}
	if err := s.ledger.Record(ctx, answer); err != nil {
		s.release(ctx, participantID, questionID)
		return domain.SubmissionResult{}, fmt.Errorf("record answer: %w", err)
	}

	total := participant.TotalScore
	if points > 0 {
		total, err = s.scores.AddPoints(ctx, participantID, points)
		if err != nil {
			// The answer is committed; the total is now stale. Rebuild it
			// from the ledger rather than leaving the gap.
			total, err = s.reconciler.ReconcileParticipant(ctx, quizID, participantID)
			if err != nil {
				log.Printf("score increment and reconcile both failed for participant %s: %v", participantID, err)
				return domain.SubmissionResult{}, domain.ErrPartialCommit
			}
		}
	} else {
		if t, err := s.scores.TotalScore(ctx, participantID); err == nil {
			total = t
		}
	}

	s.bus.Publish(quizID, domain.Event{
		Type: domain.EventAnswerRecorded,
		Answer: &domain.AnswerEvent{
			ParticipantID: participantID,
			QuestionID:    questionID,
			IsCorrect:     isCorrect,
			PointsEarned:  points,
			AnswerRank:    rank,
		},
	})
	if points > 0 {
		s.bus.Publish(quizID, domain.Event{
			Type: domain.EventScoreUpdated,
			Score: &domain.ScoreEvent{
				ParticipantID: participantID,
				TotalScore:    total,
				Delta:         points,
			},
		})
	}

	return domain.SubmissionResult{
		IsCorrect:    isCorrect,
		PointsEarned: points,
		AnswerRank:   rank,
		TotalScore:   total,
	}, nil
}

// Join registers a participant for a quiz and announces nothing; joining is
// plain directory state, not a scored event.
func (s *SubmissionService) Join(ctx context.Context, quizID, name string) (domain.Participant, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Participant{}, err
	}
	p := domain.Participant{
		ID:       s.newID(),
		QuizID:   quizID,
		Name:     name,
		JoinedAt: s.now(),
	}
	if err := s.players.Register(ctx, p); err != nil {
		return domain.Participant{}, fmt.Errorf("register participant: %w", err)
	}
	return p, nil
}

// Subscribe attaches an observer to a quiz's event feed.
func (s *SubmissionService) Subscribe(ctx context.Context, quizID string) (<-chan domain.Event, func(), error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.bus.Subscribe(quizID)
	return ch, cancel, nil
}

// Snapshot rebuilds the full observable state for a quiz from the ledger,
// scores, and directory. Observers that missed feed events call this to
// resynchronize.
func (s *SubmissionService) Snapshot(ctx context.Context, quizID string) (domain.Snapshot, error) {
	view, err := s.phases.View(ctx, quizID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	participants, err := s.players.ByQuiz(ctx, quizID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list participants: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		total, err := s.scores.TotalScore(ctx, p.ID)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("read total for %s: %w", p.ID, err)
		}
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			TotalScore:    total,
		})
	}
	// participants is join-ordered; a stable sort keeps that order on ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	answers, err := s.ledger.QuizAnswers(ctx, quizID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list answers: %w", err)
	}

	return domain.Snapshot{
		QuizID:               quizID,
		Phase:                view.Phase(),
		CurrentQuestionIndex: view.CurrentQuestionIndex,
		Leaderboard:          entries,
		Answers:              answers,
		TakenAt:              s.now(),
	}, nil
}

// QuestionAnswers lists the recorded answers for one question of a quiz; the
// operator's monitor uses it to show who answered and how fast.
func (s *SubmissionService) QuestionAnswers(ctx context.Context, quizID, questionID string) ([]domain.Answer, error) {
	content, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, ok := content.QuestionByID(questionID); !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return s.ledger.QuestionAnswers(ctx, questionID)
}

func (s *SubmissionService) release(ctx context.Context, participantID, questionID string) {
	if err := s.ledger.Release(ctx, participantID, questionID); err != nil {
		log.Printf("release answer slot %s/%s: %v", participantID, questionID, err)
	}
}
