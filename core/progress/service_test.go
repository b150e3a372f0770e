package progress_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/email"
	"github.com/Damian-Sonwa/Academician-hub-sub001/storage/database/inmem"
	"github.com/Damian-Sonwa/Academician-hub-sub001/tests"
)

var (
	ctx      = context.Background()
	beginner = content.LevelBeginner
	student  = progress.Learner{UserID: "student-1", Name: "Hero", Email: "hero@test.cd"}
	admin    = progress.Learner{UserID: "admin-1", Name: "Admin", Email: "admin@test.cd", IsAdmin: true}

	// answers to quiz 0 of week 1
	allRight = []quiz.Answer{quiz.Choice(0), quiz.Truth(true), quiz.Text(" starch ")}
	allWrong = []quiz.Answer{quiz.Choice(1), quiz.Truth(false), quiz.Text("Glucose")}
)

func setup(t *testing.T) (*progress.Service, progress.Repository) {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	repo := inmemdb.NewProgressRepository(inmemdb.Open())
	svc := progress.NewService(repo, testutil.NewContentStore(t), emailsvc.NewConsoleServiceMock(conf, logger), logger)
	return svc, repo
}

func completeWeek1(t *testing.T, svc *progress.Service, learner progress.Learner) {
	for i := 0; i < 2; i++ {
		_, err := svc.CompleteAssignment(ctx, learner, "biology", beginner, 1, i)
		require.NoError(t, err)
	}
	_, err := svc.CompleteQuiz(ctx, learner, "biology", beginner, 1, 0, allRight, 100)
	require.NoError(t, err)
	res, err := svc.CompleteQuiz(ctx, learner, "biology", beginner, 1, 1, []quiz.Answer{quiz.Truth(false)}, 100)
	require.NoError(t, err)
	require.True(t, res.WeekCompleted)
}

func TestService_Weeks(t *testing.T) {
	svc, _ := setup(t)

	wc, err := svc.Weeks(ctx, student, "Biology", "Basic")
	require.NoError(t, err)
	assert.Equal(t, "Biology 101", wc.Course.Title)
	assert.Equal(t, beginner, wc.Level)
	require.Len(t, wc.Weeks, 3)
	assert.Equal(t, progress.WeekSummary{Week: 1, Topic: "Cells", Status: progress.StatusUnlocked, TotalAssignments: 2, TotalQuizzes: 2}, wc.Weeks[0])
	assert.Equal(t, progress.StatusLocked, wc.Weeks[1].Status)
	assert.Equal(t, progress.StatusLocked, wc.Weeks[2].Status)

	wc, err = svc.Weeks(ctx, admin, "biology", beginner)
	require.NoError(t, err)
	for _, w := range wc.Weeks {
		assert.Equal(t, progress.StatusUnlocked, w.Status, w.Week)
	}

	completeWeek1(t, svc, student)
	wc, err = svc.Weeks(ctx, student, "biology", beginner)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusCompleted, wc.Weeks[0].Status)
	assert.Equal(t, 2, wc.Weeks[0].AssignmentsCompleted)
	assert.NotNil(t, wc.Weeks[0].CompletedAt)
	assert.Equal(t, progress.StatusUnlocked, wc.Weeks[1].Status)
	assert.Equal(t, progress.StatusLocked, wc.Weeks[2].Status)

	_, err = svc.Weeks(ctx, student, "chemistry", beginner)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.Weeks(ctx, student, "biology", content.LevelIntermediate)
	assert.True(t, core.IsNotFound(err))
}

func TestService_OpenWeek(t *testing.T) {
	svc, repo := setup(t)

	detail, err := svc.OpenWeek(ctx, student, "biology", beginner, 1)
	require.NoError(t, err)
	assert.Equal(t, "Cells", detail.Topic)
	assert.Equal(t, progress.StatusUnlocked, detail.Progress.Status)
	assert.Equal(t, 2, detail.Progress.TotalAssignments)
	assert.Equal(t, 2, detail.Progress.TotalQuizzes)
	assert.NotNil(t, detail.Progress.UnlockedAt)

	// opening again keeps the record
	again, err := svc.OpenWeek(ctx, student, "biology", beginner, 1)
	require.NoError(t, err)
	assert.Equal(t, detail.Progress, again.Progress)

	_, err = svc.OpenWeek(ctx, student, "biology", beginner, 2)
	require.Error(t, err)
	assert.True(t, progress.IsAccessDenied(err))
	assert.Equal(t, 1, err.(*progress.AccessDeniedError).RequiredWeek)

	_, err = repo.GetRecord(ctx, progress.Key{UserID: student.UserID, CourseID: "biology", Level: beginner, Week: 2})
	assert.Equal(t, progress.ErrRecordNotFound, err, "denied access creates nothing")

	detail, err = svc.OpenWeek(ctx, admin, "biology", beginner, 3)
	require.NoError(t, err, "admins bypass the gates")
	assert.Equal(t, progress.StatusCompleted, detail.Progress.Status, "nothing to complete")

	_, err = svc.OpenWeek(ctx, student, "biology", beginner, 4)
	assert.Equal(t, content.ErrWeekNotFound, err)
}

func TestService_CompleteAssignment(t *testing.T) {
	svc, _ := setup(t)

	res, err := svc.CompleteAssignment(ctx, student, "biology", beginner, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, progress.Completion{
		Status:               progress.StatusInProgress,
		AssignmentsCompleted: 1,
		TotalAssignments:     2,
		TotalQuizzes:         2,
	}, res)

	// completing it again changes nothing
	res, err = svc.CompleteAssignment(ctx, student, "biology", beginner, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AssignmentsCompleted)

	res, err = svc.CompleteAssignment(ctx, student, "biology", beginner, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AssignmentsCompleted)
	assert.Equal(t, progress.StatusInProgress, res.Status, "2/2 assignments, 0/2 quizzes")
	assert.False(t, res.WeekCompleted)

	for _, idx := range []int{-1, 2} {
		_, err = svc.CompleteAssignment(ctx, student, "biology", beginner, 1, idx)
		assert.True(t, core.IsValidationError(err), idx)
	}

	_, err = svc.CompleteAssignment(ctx, student, "biology", beginner, 2, 0)
	assert.True(t, progress.IsAccessDenied(err), "checked before any mutation")
}

func TestService_CompleteQuiz(t *testing.T) {
	svc, _ := setup(t)

	for i := 0; i < 2; i++ {
		_, err := svc.CompleteAssignment(ctx, student, "biology", beginner, 1, i)
		require.NoError(t, err)
	}

	// the submitted score is compared, the computed one recorded
	res, err := svc.CompleteQuiz(ctx, student, "biology", beginner, 1, 0, allWrong, 100)
	require.NoError(t, err)
	require.NotNil(t, res.Score)
	assert.Equal(t, 0, *res.Score)
	assert.Equal(t, 1, res.QuizzesCompleted)
	assert.Equal(t, progress.StatusInProgress, res.Status, "2/2 assignments, 1/2 quizzes")
	assert.False(t, res.WeekCompleted)

	// retaking keeps the first attempt
	res, err = svc.CompleteQuiz(ctx, student, "biology", beginner, 1, 0, allRight, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, *res.Score)
	assert.Equal(t, 1, res.QuizzesCompleted)

	tests := []struct {
		name    string
		idx     int
		answers []quiz.Answer
		score   int
	}{
		{name: "negative index", idx: -1, score: 50},
		{name: "index out of range", idx: 2, score: 50},
		{name: "score above 100", idx: 1, score: 101},
		{name: "score below 0", idx: 1, score: -1},
		{name: "too many answers", idx: 1, answers: []quiz.Answer{quiz.Truth(true), quiz.Truth(true)}},
		{name: "wrong answer kind", idx: 1, answers: []quiz.Answer{quiz.Choice(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteQuiz(ctx, student, "biology", beginner, 1, tt.idx, tt.answers, tt.score)
			assert.True(t, core.IsValidationError(err), "%v", err)
		})
	}

	res, err = svc.CompleteQuiz(ctx, student, "biology", beginner, 1, 1, []quiz.Answer{quiz.Truth(false)}, 100)
	require.NoError(t, err)
	assert.True(t, res.WeekCompleted)
	assert.Equal(t, progress.StatusCompleted, res.Status)
	assert.Equal(t, 100, *res.Score)

	// week 2 is now open
	_, err = svc.OpenWeek(ctx, student, "biology", beginner, 2)
	assert.NoError(t, err)
}

func TestService_weekCompletedEmail(t *testing.T) {
	svc, _ := setup(t)

	completeWeek1(t, svc, student)
	sent := emailsvc.GetSentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, student.Email, msg.To[0].Address)
	assert.Equal(t, "Week 1 completed! Next week unlocked.", msg.Subject)
	assert.True(t, strings.Contains(msg.TextContent, "Hi Hero"), msg.TextContent)
	assert.True(t, strings.Contains(msg.TextContent, "Week 2 is now unlocked: Genetics."), msg.TextContent)
	assert.True(t, strings.Contains(msg.HTMLContent, "Biology 101"), msg.HTMLContent)

	// no second email once completed
	_, err := svc.CompleteAssignment(ctx, student, "biology", beginner, 1, 0)
	require.NoError(t, err)
	assert.Len(t, emailsvc.GetSentMessages(), 1)

	_, err = svc.OpenWeek(ctx, student, "biology", beginner, 2)
	require.NoError(t, err)
	res, err := svc.CompleteAssignment(ctx, student, "biology", beginner, 2, 0)
	require.NoError(t, err)
	require.True(t, res.WeekCompleted)
	sent = emailsvc.GetSentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "Week 2 completed! Next week unlocked.", sent[1].Subject)
}

func TestService_Progress(t *testing.T) {
	svc, _ := setup(t)

	recs, err := svc.Progress(ctx, student, "biology", beginner)
	require.NoError(t, err)
	assert.Empty(t, recs)

	completeWeek1(t, svc, student)
	_, err = svc.OpenWeek(ctx, student, "biology", beginner, 2)
	require.NoError(t, err)
	_, err = svc.OpenWeek(ctx, admin, "biology", beginner, 3)
	require.NoError(t, err)

	recs, err = svc.Progress(ctx, student, "biology", beginner)
	require.NoError(t, err)
	require.Len(t, recs, 2, "only the learner's records")
	assert.Equal(t, 1, recs[0].Week)
	assert.Equal(t, 2, recs[1].Week)
	assert.Len(t, recs[0].QuizScores, 2)
	assert.Len(t, recs[0].AssignmentSubmissions, 2)

	recs, err = svc.Progress(ctx, student, "biology", beginner, core.DBOrdering{Field: "week"})
	require.NoError(t, err)
	assert.Equal(t, 2, recs[0].Week)

	recs, err = svc.CourseProgress(ctx, "biology", beginner)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}
