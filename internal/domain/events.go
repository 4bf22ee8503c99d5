package domain

// EventType discriminates feed events.
type EventType string

const (
	EventAnswerRecorded EventType = "answerRecorded"
	EventScoreUpdated   EventType = "scoreUpdated"
	EventPhaseChanged   EventType = "phaseChanged"
)

// Event is the envelope fanned out to quiz observers. Seq is assigned per
// quiz in publish order, so observers can detect gaps and fall back to a
// snapshot fetch. Exactly one payload field is set per event.
type Event struct {
	Type   EventType `json:"type"`
	QuizID string    `json:"quizId"`
	Seq    uint64    `json:"seq"`

	Answer *AnswerEvent `json:"answer,omitempty"`
	Score  *ScoreEvent  `json:"score,omitempty"`
	Phase  *PhaseEvent  `json:"phase,omitempty"`
}

// AnswerEvent reports one submission outcome.
type AnswerEvent struct {
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	AnswerRank    *int   `json:"answerRank"`
}

// ScoreEvent reports a participant's new running total.
type ScoreEvent struct {
	ParticipantID string `json:"participantId"`
	TotalScore    int    `json:"totalScore"`
	Delta         int    `json:"delta"`
}

// PhaseEvent reports a quiz lifecycle transition or question advancement.
type PhaseEvent struct {
	Phase                Phase `json:"phase"`
	CurrentQuestionIndex int   `json:"currentQuestionIndex"`
}
