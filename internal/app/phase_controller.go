package app

import (
	"context"
	"sync"

	"livequiz-service/internal/domain"
)

// PhaseController owns the lifecycle of each quiz: Scheduled -> Live -> Ended,
// with a forward-only current question index. Transitions come from the
// operator path; submissions only read the state. Every real transition is
// published through the broadcaster while the state lock is held, so phase
// events reach observers in commit order.
type PhaseController struct {
	quizzes QuizRepository
	bus     *Broadcaster

	mu     sync.RWMutex
	states map[string]*quizState
}

type quizState struct {
	mu        sync.RWMutex
	name      string
	started   bool
	ended     bool
	current   int
	questions int
}

func NewPhaseController(quizzes QuizRepository, bus *Broadcaster) *PhaseController {
	return &PhaseController{
		quizzes: quizzes,
		bus:     bus,
		states:  make(map[string]*quizState),
	}
}

// Start moves a quiz to Live. Starting an already-live quiz is a no-op;
// starting an ended quiz is rejected.
func (c *PhaseController) Start(ctx context.Context, quizID string) (domain.Quiz, error) {
	state, err := c.state(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return domain.Quiz{}, domain.ErrQuizEnded
	}
	if state.started {
		return state.viewLocked(quizID), nil
	}
	state.started = true

	view := state.viewLocked(quizID)
	c.publishLocked(quizID, view)
	return view, nil
}

// Advance moves to the next question. Advancing past the last question is a
// silent no-op: no state change and no event.
func (c *PhaseController) Advance(ctx context.Context, quizID string) (domain.Quiz, error) {
	state, err := c.state(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if !state.started || state.ended {
		return domain.Quiz{}, domain.ErrQuizNotLive
	}
	if state.current >= state.questions-1 {
		return state.viewLocked(quizID), nil
	}
	state.current++

	view := state.viewLocked(quizID)
	c.publishLocked(quizID, view)
	return view, nil
}

// End moves a quiz to its terminal state. Ending twice is a no-op.
func (c *PhaseController) End(ctx context.Context, quizID string) (domain.Quiz, error) {
	state, err := c.state(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.ended {
		return state.viewLocked(quizID), nil
	}
	if !state.started {
		return domain.Quiz{}, domain.ErrQuizNotLive
	}
	state.ended = true

	view := state.viewLocked(quizID)
	c.publishLocked(quizID, view)
	return view, nil
}

// View returns the current phase state; submissions call this on every request.
func (c *PhaseController) View(ctx context.Context, quizID string) (domain.Quiz, error) {
	state, err := c.state(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.viewLocked(quizID), nil
}

func (s *quizState) viewLocked(quizID string) domain.Quiz {
	return domain.Quiz{
		ID:                   quizID,
		Name:                 s.name,
		Started:              s.started,
		Ended:                s.ended,
		CurrentQuestionIndex: s.current,
	}
}

func (c *PhaseController) publishLocked(quizID string, view domain.Quiz) {
	c.bus.Publish(quizID, domain.Event{
		Type: domain.EventPhaseChanged,
		Phase: &domain.PhaseEvent{
			Phase:                view.Phase(),
			CurrentQuestionIndex: view.CurrentQuestionIndex,
		},
	})
}

// state lazily creates the tracked state for a quiz, validating that the quiz
// exists and learning its question count.
func (c *PhaseController) state(ctx context.Context, quizID string) (*quizState, error) {
	c.mu.RLock()
	state, ok := c.states[quizID]
	c.mu.RUnlock()
	if ok {
		return state, nil
	}

	content, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if state, ok = c.states[quizID]; ok {
		return state, nil
	}
	state = &quizState{name: content.Name, questions: len(content.Questions)}
	c.states[quizID] = state
	return state, nil
}
