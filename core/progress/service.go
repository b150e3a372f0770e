package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
)

// OrderingFields are the fields records can be ordered by.
var OrderingFields = []string{"week", "status", "updated_at", "completed_at"}

type (
	Filter struct {
		UserID   string
		CourseID string
		Level    content.Level
	}

	Repository interface {
		// GetRecord returns ErrRecordNotFound when the learner never opened the week.
		GetRecord(ctx context.Context, key Key) (Record, error)
		QueryRecords(ctx context.Context, filter Filter, orderings ...core.DBOrdering) ([]Record, error)
		// CreateRecord inserts rec, or returns the stored record when one already exists for its key.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		// UpdateRecord applies fn to the stored record and saves it, atomically.
		UpdateRecord(ctx context.Context, key Key, fn func(*Record) error) (Record, error)
	}

	// Catalog is the read side of the content store.
	Catalog interface {
		Course(id string) (content.Course, error)
		Weeks(courseID string, level content.Level) ([]content.Week, error)
		Week(courseID string, level content.Level, n int) (content.Week, error)
	}

	Service struct {
		repo    Repository
		content Catalog
		mailSvc core.EmailService
		logger  core.Logger
		nowFunc func() time.Time
	}
)

func NewService(repo Repository, catalog Catalog, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		content: catalog,
		mailSvc: mailSvc,
		logger:  logger,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func newKey(learner Learner, courseID string, level content.Level, week int) Key {
	return Key{
		UserID:   learner.UserID,
		CourseID: core.CleanString(courseID, true /* lower */),
		Level:    content.NormalizeLevel(string(level)),
		Week:     week,
	}
}

// Weeks lists the weeks of a course level with the learner's status on each.
func (svc *Service) Weeks(ctx context.Context, learner Learner, courseID string, level content.Level) (WeeklyContent, error) {
	key := newKey(learner, courseID, level, 0)
	course, err := svc.content.Course(key.CourseID)
	if err != nil {
		return WeeklyContent{}, err
	}
	weeks, err := svc.content.Weeks(key.CourseID, key.Level)
	if err != nil {
		return WeeklyContent{}, err
	}

	records, err := svc.repo.QueryRecords(ctx, Filter{UserID: learner.UserID, CourseID: key.CourseID, Level: key.Level})
	if err != nil {
		return WeeklyContent{}, errors.Wrap(err, "querying records")
	}
	byWeek := make(map[int]*Record, len(records))
	for i := range records {
		byWeek[records[i].Week] = &records[i]
	}

	summaries := make([]WeekSummary, 0, len(weeks))
	for _, w := range weeks {
		rec := byWeek[w.Number]
		summary := WeekSummary{
			Week:             w.Number,
			Topic:            w.Topic,
			Status:           WeekStatus(w.Number, learner, rec, byWeek[w.Number-1]),
			TotalAssignments: len(w.Assignments),
			TotalQuizzes:     len(w.Quizzes),
		}
		if rec != nil {
			summary.AssignmentsCompleted = rec.AssignmentsCompleted
			summary.TotalAssignments = rec.TotalAssignments
			summary.QuizzesCompleted = rec.QuizzesCompleted
			summary.TotalQuizzes = rec.TotalQuizzes
			summary.CompletedAt = rec.CompletedAt
		}
		summaries = append(summaries, summary)
	}
	return WeeklyContent{Course: course, Level: key.Level, Weeks: summaries}, nil
}

// OpenWeek returns the week content once the unlock policy allows it, starting the learner's record on first access.
func (svc *Service) OpenWeek(ctx context.Context, learner Learner, courseID string, level content.Level, n int) (WeekDetail, error) {
	key := newKey(learner, courseID, level, n)
	week, err := svc.content.Week(key.CourseID, key.Level, n)
	if err != nil {
		return WeekDetail{}, err
	}
	rec, err := svc.openRecord(ctx, learner, key, week)
	if err != nil {
		return WeekDetail{}, err
	}
	return WeekDetail{Week: week, Progress: rec}, nil
}

func (svc *Service) checkAccess(ctx context.Context, learner Learner, key Key) error {
	prevKey, ok := key.Previous()
	if !ok || learner.IsAdmin {
		return CheckAccess(key.Week, learner, nil)
	}
	prev, err := svc.repo.GetRecord(ctx, prevKey)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return CheckAccess(key.Week, learner, nil)
	case err != nil:
		return errors.Wrap(err, "getting previous week")
	}
	return CheckAccess(key.Week, learner, &prev)
}

func (svc *Service) openRecord(ctx context.Context, learner Learner, key Key, week content.Week) (Record, error) {
	if err := svc.checkAccess(ctx, learner, key); err != nil {
		return Record{}, err
	}
	rec, err := svc.repo.GetRecord(ctx, key)
	if errors.Is(err, ErrRecordNotFound) {
		rec, err = svc.repo.CreateRecord(ctx, newRecord(key, week, svc.nowFunc()))
		return rec, errors.Wrap(err, "creating record")
	}
	return rec, errors.Wrap(err, "getting record")
}

// CompleteAssignment counts assignment idx of the week as done. Completing it again changes nothing.
func (svc *Service) CompleteAssignment(ctx context.Context, learner Learner, courseID string, level content.Level, n, idx int) (Completion, error) {
	key := newKey(learner, courseID, level, n)
	week, err := svc.content.Week(key.CourseID, key.Level, n)
	if err != nil {
		return Completion{}, err
	}
	rec, err := svc.openRecord(ctx, learner, key, week)
	if err != nil {
		return Completion{}, err
	}
	if idx < 0 || idx >= len(week.Assignments) || idx >= rec.TotalAssignments {
		return Completion{}, core.NewFieldError("assignment_index", "out of range")
	}

	var completedNow bool
	rec, err = svc.repo.UpdateRecord(ctx, key, func(r *Record) error {
		if r.hasAssignment(idx) || r.AssignmentsCompleted >= r.TotalAssignments {
			return nil
		}
		now := svc.nowFunc()
		wasCompleted := r.IsCompleted()
		r.AssignmentSubmissions = append(r.AssignmentSubmissions, AssignmentSubmission{
			AssignmentIndex: idx,
			Status:          "submitted",
			SubmittedAt:     now,
		})
		r.AssignmentsCompleted++
		r.UpdatedAt = now
		r.recompute(now)
		completedNow = !wasCompleted && r.IsCompleted()
		return nil
	})
	if err != nil {
		return Completion{}, errors.Wrap(err, "updating record")
	}

	if completedNow {
		svc.notifyWeekCompleted(learner, week)
	}
	return newCompletion(rec), nil
}

// CompleteQuiz records the attempt at quiz idx. The score is recomputed from the answers;
// the submitted score must be a percentage and is otherwise only compared.
// Submitting the same quiz again keeps the first attempt.
func (svc *Service) CompleteQuiz(ctx context.Context, learner Learner, courseID string, level content.Level, n, idx int, answers []quiz.Answer, score int) (Completion, error) {
	if score < 0 || score > 100 {
		return Completion{}, core.NewFieldError("score", "must be between 0 and 100")
	}
	key := newKey(learner, courseID, level, n)
	week, err := svc.content.Week(key.CourseID, key.Level, n)
	if err != nil {
		return Completion{}, err
	}
	rec, err := svc.openRecord(ctx, learner, key, week)
	if err != nil {
		return Completion{}, err
	}
	if idx < 0 || idx >= len(week.Quizzes) || idx >= rec.TotalQuizzes {
		return Completion{}, core.NewFieldError("quiz_index", "out of range")
	}

	questions := week.Quizzes[idx].Questions
	if err := quiz.CheckAnswers(questions, answers); err != nil {
		return Completion{}, core.NewFieldError("answers", err.Error())
	}
	computed := quiz.Score(questions, answers)
	if computed != score {
		svc.logger.Warn(fmt.Sprintf("progress.CompleteQuiz: submitted score %d, computed %d", score, computed), map[string]interface{}{
			"user_id":   learner.UserID,
			"course_id": key.CourseID,
			"level":     key.Level,
			"week":      n,
			"quiz":      idx,
		})
	}

	var completedNow bool
	rec, err = svc.repo.UpdateRecord(ctx, key, func(r *Record) error {
		if r.hasQuiz(idx) || r.QuizzesCompleted >= r.TotalQuizzes {
			return nil
		}
		now := svc.nowFunc()
		wasCompleted := r.IsCompleted()
		r.QuizScores = append(r.QuizScores, QuizScore{
			QuizIndex:   idx,
			Score:       computed,
			Answers:     answers,
			CompletedAt: now,
		})
		r.QuizzesCompleted++
		r.UpdatedAt = now
		r.recompute(now)
		completedNow = !wasCompleted && r.IsCompleted()
		return nil
	})
	if err != nil {
		return Completion{}, errors.Wrap(err, "updating record")
	}

	if completedNow {
		svc.notifyWeekCompleted(learner, week)
	}
	res := newCompletion(rec)
	if qs, ok := rec.QuizScore(idx); ok {
		res.Score = &qs.Score
	}
	return res, nil
}

// Progress returns the stored records of the learner for a course level, by week unless orderings say otherwise.
func (svc *Service) Progress(ctx context.Context, learner Learner, courseID string, level content.Level, orderings ...core.DBOrdering) ([]Record, error) {
	key := newKey(learner, courseID, level, 0)
	if _, err := svc.content.Weeks(key.CourseID, key.Level); err != nil {
		return nil, err
	}
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "week", Ascending: true}}
	}
	return svc.repo.QueryRecords(ctx, Filter{UserID: learner.UserID, CourseID: key.CourseID, Level: key.Level}, orderings...)
}

// CourseProgress returns the records of every learner for a course level.
func (svc *Service) CourseProgress(ctx context.Context, courseID string, level content.Level) ([]Record, error) {
	key := newKey(Learner{}, courseID, level, 0)
	if _, err := svc.content.Weeks(key.CourseID, key.Level); err != nil {
		return nil, err
	}
	return svc.repo.QueryRecords(ctx, Filter{CourseID: key.CourseID, Level: key.Level},
		core.DBOrdering{Field: "user_id", Ascending: true},
		core.DBOrdering{Field: "week", Ascending: true},
	)
}
