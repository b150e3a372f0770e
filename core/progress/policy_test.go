package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
)

func TestCheckAccess(t *testing.T) {
	student := Learner{UserID: "u1"}
	admin := Learner{UserID: "u2", IsAdmin: true}
	rec := func(s Status) *Record { return &Record{Status: s} }

	tests := []struct {
		name    string
		week    int
		learner Learner
		prev    *Record
		wantErr bool
	}{
		{name: "week 1 without record", week: 1, learner: student},
		{name: "week 2 without previous record", week: 2, learner: student, wantErr: true},
		{name: "week 2, previous unlocked", week: 2, learner: student, prev: rec(StatusUnlocked), wantErr: true},
		{name: "week 2, previous in progress", week: 2, learner: student, prev: rec(StatusInProgress), wantErr: true},
		{name: "week 2, previous completed", week: 2, learner: student, prev: rec(StatusCompleted)},
		{name: "admin on a locked week", week: 7, learner: admin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAccess(tt.week, tt.learner, tt.prev)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsAccessDenied(err))
			denied, ok := err.(*AccessDeniedError)
			require.True(t, ok)
			assert.Equal(t, tt.week-1, denied.RequiredWeek)
		})
	}
}

func TestWeekStatus(t *testing.T) {
	student := Learner{UserID: "u1"}
	completed := &Record{Status: StatusCompleted}
	inProgress := &Record{Status: StatusInProgress}

	assert.Equal(t, StatusUnlocked, WeekStatus(1, student, nil, nil))
	assert.Equal(t, StatusInProgress, WeekStatus(1, student, inProgress, nil))
	assert.Equal(t, StatusLocked, WeekStatus(2, student, nil, inProgress))
	assert.Equal(t, StatusUnlocked, WeekStatus(2, student, nil, completed))
	assert.Equal(t, StatusCompleted, WeekStatus(2, student, completed, completed))
	assert.Equal(t, StatusUnlocked, WeekStatus(5, Learner{IsAdmin: true}, nil, nil))
}

func TestRecord_recompute(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	week := content.Week{
		Topic:       "Cells",
		Assignments: make([]content.Assignment, 2),
		Quizzes:     make([]content.Quiz, 2),
	}
	rec := newRecord(Key{UserID: "u1", CourseID: "biology", Level: content.LevelBeginner, Week: 1}, week, t0)
	assert.Equal(t, StatusUnlocked, rec.Status)
	assert.Equal(t, &t0, rec.UnlockedAt)
	assert.Nil(t, rec.StartedAt)

	rec.AssignmentsCompleted = 2
	rec.recompute(t1)
	assert.Equal(t, StatusInProgress, rec.Status)
	assert.Equal(t, &t1, rec.StartedAt)

	rec.QuizzesCompleted = 1
	rec.recompute(t2)
	assert.Equal(t, StatusInProgress, rec.Status, "1/2 quizzes")
	assert.Equal(t, &t1, rec.StartedAt, "set once")
	assert.Nil(t, rec.CompletedAt)

	rec.QuizzesCompleted = 2
	rec.recompute(t2)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, &t2, rec.CompletedAt)

	rec.recompute(t2.Add(time.Hour))
	assert.Equal(t, &t2, rec.CompletedAt, "never changed again")
}

func TestNewRecord_emptyWeek(t *testing.T) {
	now := time.Now().UTC()
	rec := newRecord(Key{UserID: "u1", CourseID: "biology", Level: content.LevelBeginner, Week: 3}, content.Week{Topic: "Evolution"}, now)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, &now, rec.CompletedAt)
	assert.Equal(t, "Evolution", rec.Topic)
}
