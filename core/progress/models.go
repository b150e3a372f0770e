// Package progress records what learners complete week by week and decides which weeks they may open.
package progress

import (
	"time"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

var ErrRecordNotFound = core.NewNotFoundError("week progress")

// Status of a week for a learner. Only unlocked, in-progress and completed are ever stored;
// locked is derived from the previous week.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusUnlocked   Status = "unlocked"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func statusRank(s Status) int {
	switch s {
	case StatusUnlocked:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 0
	}
}

// Key identifies the progress record of a learner on a week.
type Key struct {
	UserID   string        `json:"user_id"`
	CourseID string        `json:"course_id"`
	Level    content.Level `json:"level"`
	Week     int           `json:"week"`
}

// Previous returns the key of the week before, if any.
func (k Key) Previous() (Key, bool) {
	if k.Week <= 1 {
		return Key{}, false
	}
	prev := k
	prev.Week--
	return prev, true
}

type QuizScore struct {
	QuizIndex   int           `json:"quiz_index"`
	Score       int           `json:"score"`
	Answers     []quiz.Answer `json:"answers"`
	CompletedAt time.Time     `json:"completed_at"`
}

type AssignmentSubmission struct {
	AssignmentIndex int       `json:"assignment_index"`
	Status          string    `json:"status"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Record is the progress of one learner on one week.
// Counts only grow and never exceed their totals; CompletedAt is set once.
type Record struct {
	Key
	Topic                 string                 `json:"topic"`
	AssignmentsCompleted  int                    `json:"assignments_completed"`
	TotalAssignments      int                    `json:"total_assignments"`
	QuizzesCompleted      int                    `json:"quizzes_completed"`
	TotalQuizzes          int                    `json:"total_quizzes"`
	Status                Status                 `json:"status"`
	QuizScores            []QuizScore            `json:"quiz_scores"`
	AssignmentSubmissions []AssignmentSubmission `json:"assignment_submissions"`
	UnlockedAt            *time.Time             `json:"unlocked_at"`
	StartedAt             *time.Time             `json:"started_at"`
	CompletedAt           *time.Time             `json:"completed_at"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// newRecord starts the progress of a freshly opened week. A week with nothing to complete is completed at once.
func newRecord(key Key, week content.Week, now time.Time) Record {
	rec := Record{
		Key:                   key,
		Topic:                 week.Topic,
		TotalAssignments:      len(week.Assignments),
		TotalQuizzes:          len(week.Quizzes),
		Status:                StatusUnlocked,
		QuizScores:            []QuizScore{},
		AssignmentSubmissions: []AssignmentSubmission{},
		UnlockedAt:            &now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	rec.recompute(now)
	return rec
}

func (r *Record) IsCompleted() bool { return r.Status == StatusCompleted }

func (r *Record) hasAssignment(idx int) bool {
	for _, s := range r.AssignmentSubmissions {
		if s.AssignmentIndex == idx {
			return true
		}
	}
	return false
}

func (r *Record) hasQuiz(idx int) bool {
	for _, s := range r.QuizScores {
		if s.QuizIndex == idx {
			return true
		}
	}
	return false
}

// QuizScore returns the recorded score of quiz idx.
func (r *Record) QuizScore(idx int) (QuizScore, bool) {
	for _, s := range r.QuizScores {
		if s.QuizIndex == idx {
			return s, true
		}
	}
	return QuizScore{}, false
}

// recompute derives the status from the counts. Status never moves backward.
func (r *Record) recompute(now time.Time) {
	if r.IsCompleted() {
		return
	}
	next := r.Status
	switch {
	case r.AssignmentsCompleted >= r.TotalAssignments && r.QuizzesCompleted >= r.TotalQuizzes:
		next = StatusCompleted
	case r.AssignmentsCompleted > 0 || r.QuizzesCompleted > 0:
		next = StatusInProgress
	}
	if statusRank(next) <= statusRank(r.Status) {
		return
	}

	if r.StartedAt == nil && next != StatusUnlocked && (r.AssignmentsCompleted > 0 || r.QuizzesCompleted > 0) {
		r.StartedAt = &now
	}
	if next == StatusCompleted && r.CompletedAt == nil {
		r.CompletedAt = &now
	}
	r.Status = next
}

// Learner is who a request acts for.
type Learner struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}

// WeekSummary is a week as listed for a learner.
type WeekSummary struct {
	Week                 int        `json:"week"`
	Topic                string     `json:"topic"`
	Status               Status     `json:"status"`
	AssignmentsCompleted int        `json:"assignments_completed"`
	TotalAssignments     int        `json:"total_assignments"`
	QuizzesCompleted     int        `json:"quizzes_completed"`
	TotalQuizzes         int        `json:"total_quizzes"`
	CompletedAt          *time.Time `json:"completed_at"`
}

// WeeklyContent is the list of weeks of a course level.
type WeeklyContent struct {
	Course content.Course `json:"course"`
	Level  content.Level  `json:"level"`
	Weeks  []WeekSummary  `json:"weeks"`
}

// WeekDetail is the content of an opened week with the learner's progress on it.
type WeekDetail struct {
	content.Week
	Progress Record `json:"progress"`
}

// Completion is the outcome of a completion event.
type Completion struct {
	WeekCompleted        bool   `json:"week_completed"`
	Status               Status `json:"status"`
	AssignmentsCompleted int    `json:"assignments_completed"`
	TotalAssignments     int    `json:"total_assignments"`
	QuizzesCompleted     int    `json:"quizzes_completed"`
	TotalQuizzes         int    `json:"total_quizzes"`
	Score                *int   `json:"score,omitempty"`
}

func newCompletion(rec Record) Completion {
	return Completion{
		WeekCompleted:        rec.IsCompleted(),
		Status:               rec.Status,
		AssignmentsCompleted: rec.AssignmentsCompleted,
		TotalAssignments:     rec.TotalAssignments,
		QuizzesCompleted:     rec.QuizzesCompleted,
		TotalQuizzes:         rec.TotalQuizzes,
	}
}
