package domain

import "time"

// Phase is the lifecycle stage of a quiz. Transitions are linear:
// Scheduled -> Live -> Ended.
type Phase string

const (
	PhaseScheduled Phase = "scheduled"
	PhaseLive      Phase = "live"
	PhaseEnded     Phase = "ended"
)

// Quiz carries the live state of a running quiz.
type Quiz struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Started              bool   `json:"started"`
	Ended                bool   `json:"ended"`
	CurrentQuestionIndex int    `json:"currentQuestionIndex"`
}

// Phase derives the lifecycle stage from the started/ended flags.
func (q Quiz) Phase() Phase {
	switch {
	case q.Ended:
		return PhaseEnded
	case q.Started:
		return PhaseLive
	default:
		return PhaseScheduled
	}
}

// Question is an MCQ question. CorrectOption is the index into Options and
// must never reach clients; it is excluded from JSON on purpose.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quizId"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"-"`
	OrderIndex    int      `json:"orderIndex"`
}

// QuizContent is the immutable question set of a quiz, ordered by OrderIndex.
type QuizContent struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// QuestionByID finds a question within the quiz, reporting whether it exists.
func (c QuizContent) QuestionByID(questionID string) (Question, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == questionID {
			return c.Questions[i], true
		}
	}
	return Question{}, false
}

// Participant is a joined player. TotalScore only ever grows while the quiz
// is live; it is a cache derived from the answer ledger.
type Participant struct {
	ID         string    `json:"id"`
	QuizID     string    `json:"quizId"`
	Name       string    `json:"name"`
	TotalScore int       `json:"totalScore"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// Answer is one submission attempt. At most one exists per
// (participant, question). AnswerRank is nil for incorrect answers; for
// correct ones it is the 1-based arrival position among correct answers to
// the same question. Rank and points are immutable once set.
type Answer struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quizId"`
	ParticipantID  string    `json:"participantId"`
	QuestionID     string    `json:"questionId"`
	SelectedOption int       `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	AnswerRank     *int      `json:"answerRank"`
	PointsEarned   int       `json:"pointsEarned"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// SubmissionResult is what the submitter gets back.
type SubmissionResult struct {
	IsCorrect    bool `json:"isCorrect"`
	PointsEarned int  `json:"pointsEarned"`
	AnswerRank   *int `json:"answerRank"`
	TotalScore   int  `json:"totalScore"`
}

// LeaderboardEntry is a ranked view of a participant. Ties on score are
// broken by join order.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	TotalScore    int    `json:"totalScore"`
	Rank          int    `json:"rank"`
}

// Snapshot is the pull fallback for observers that missed feed events: the
// full current state, derived from the ledger and directory.
type Snapshot struct {
	QuizID               string             `json:"quizId"`
	Phase                Phase              `json:"phase"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	Leaderboard          []LeaderboardEntry `json:"leaderboard"`
	Answers              []Answer           `json:"answers"`
	TakenAt              time.Time          `json:"takenAt"`
}
