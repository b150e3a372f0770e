package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
)

const progressColumns = `user_id, course_id, level, week, topic,
	assignments_completed, total_assignments, quizzes_completed, total_quizzes, status,
	quiz_scores, assignment_submissions, unlocked_at, started_at, completed_at, created_at, updated_at`

// columns records can be ordered by
var progressOrderingColumns = map[string]bool{
	"user_id":      true,
	"course_id":    true,
	"level":        true,
	"week":         true,
	"status":       true,
	"updated_at":   true,
	"completed_at": true,
}

type progressRow struct {
	UserID                string      `db:"user_id"`
	CourseID              string      `db:"course_id"`
	Level                 string      `db:"level"`
	Week                  int         `db:"week"`
	Topic                 string      `db:"topic"`
	AssignmentsCompleted  int         `db:"assignments_completed"`
	TotalAssignments      int         `db:"total_assignments"`
	QuizzesCompleted      int         `db:"quizzes_completed"`
	TotalQuizzes          int         `db:"total_quizzes"`
	Status                string      `db:"status"`
	QuizScores            null.String `db:"quiz_scores"`
	AssignmentSubmissions null.String `db:"assignment_submissions"`
	UnlockedAt            null.Time   `db:"unlocked_at"`
	StartedAt             null.Time   `db:"started_at"`
	CompletedAt           null.Time   `db:"completed_at"`
	CreatedAt             time.Time   `db:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at"`
}

func nullTime(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func newProgressRow(rec progress.Record) (progressRow, error) {
	scores, err := json.Marshal(rec.QuizScores)
	if err != nil {
		return progressRow{}, errors.Wrap(err, "encoding quiz scores")
	}
	submissions, err := json.Marshal(rec.AssignmentSubmissions)
	if err != nil {
		return progressRow{}, errors.Wrap(err, "encoding assignment submissions")
	}
	return progressRow{
		UserID:                rec.UserID,
		CourseID:              rec.CourseID,
		Level:                 string(rec.Level),
		Week:                  rec.Week,
		Topic:                 rec.Topic,
		AssignmentsCompleted:  rec.AssignmentsCompleted,
		TotalAssignments:      rec.TotalAssignments,
		QuizzesCompleted:      rec.QuizzesCompleted,
		TotalQuizzes:          rec.TotalQuizzes,
		Status:                string(rec.Status),
		QuizScores:            null.StringFrom(string(scores)),
		AssignmentSubmissions: null.StringFrom(string(submissions)),
		UnlockedAt:            nullTime(rec.UnlockedAt),
		StartedAt:             nullTime(rec.StartedAt),
		CompletedAt:           nullTime(rec.CompletedAt),
		CreatedAt:             rec.CreatedAt.UTC(),
		UpdatedAt:             rec.UpdatedAt.UTC(),
	}, nil
}

func (r progressRow) record() (progress.Record, error) {
	rec := progress.Record{
		Key: progress.Key{
			UserID:   r.UserID,
			CourseID: r.CourseID,
			Level:    content.Level(r.Level),
			Week:     r.Week,
		},
		Topic:                 r.Topic,
		AssignmentsCompleted:  r.AssignmentsCompleted,
		TotalAssignments:      r.TotalAssignments,
		QuizzesCompleted:      r.QuizzesCompleted,
		TotalQuizzes:          r.TotalQuizzes,
		Status:                progress.Status(r.Status),
		QuizScores:            []progress.QuizScore{},
		AssignmentSubmissions: []progress.AssignmentSubmission{},
		UnlockedAt:            timePtr(r.UnlockedAt),
		StartedAt:             timePtr(r.StartedAt),
		CompletedAt:           timePtr(r.CompletedAt),
		CreatedAt:             r.CreatedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
	if r.QuizScores.Valid && r.QuizScores.String != "" {
		if err := json.Unmarshal([]byte(r.QuizScores.String), &rec.QuizScores); err != nil {
			return progress.Record{}, errors.Wrap(err, "decoding quiz scores")
		}
	}
	if r.AssignmentSubmissions.Valid && r.AssignmentSubmissions.String != "" {
		if err := json.Unmarshal([]byte(r.AssignmentSubmissions.String), &rec.AssignmentSubmissions); err != nil {
			return progress.Record{}, errors.Wrap(err, "decoding assignment submissions")
		}
	}
	return rec, nil
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

const whereKey = `user_id = ? AND course_id = ? AND level = ? AND week = ?`

func keyArgs(key progress.Key) []interface{} {
	return []interface{}{key.UserID, key.CourseID, string(key.Level), key.Week}
}

func getRecord(ctx context.Context, q sqlx.QueryerContext, query string, key progress.Key) (progress.Record, error) {
	var row progressRow
	if err := sqlx.GetContext(ctx, q, &row, query, keyArgs(key)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return progress.Record{}, progress.ErrRecordNotFound
		}
		return progress.Record{}, errors.Wrap(err, "selecting record")
	}
	return row.record()
}

func (repo *progressRepository) GetRecord(ctx context.Context, key progress.Key) (progress.Record, error) {
	q := repo.db.Rebind(`SELECT ` + progressColumns + ` FROM weekly_progress WHERE ` + whereKey)
	return getRecord(ctx, repo.db, q, key)
}

func (repo *progressRepository) QueryRecords(ctx context.Context, filter progress.Filter, orderings ...core.DBOrdering) ([]progress.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.CourseID != "" {
		conds = append(conds, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, string(filter.Level))
	}
	for _, ord := range orderings {
		if !progressOrderingColumns[ord.Field] {
			return nil, errors.Errorf("invalid ordering field %q", ord.Field)
		}
	}

	q := `SELECT ` + progressColumns + ` FROM weekly_progress`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += core.OrderBy(orderings, "week ASC")

	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting records")
	}
	records := make([]progress.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *progressRepository) CreateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	row, err := newProgressRow(rec)
	if err != nil {
		return progress.Record{}, err
	}
	q := `INSERT INTO weekly_progress (` + progressColumns + `)
		VALUES (:user_id, :course_id, :level, :week, :topic,
			:assignments_completed, :total_assignments, :quizzes_completed, :total_quizzes, :status,
			:quiz_scores, :assignment_submissions, :unlocked_at, :started_at, :completed_at, :created_at, :updated_at)
		ON CONFLICT (user_id, course_id, level, week) DO NOTHING`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return progress.Record{}, errors.Wrap(err, "inserting record")
	}
	// the stored record wins when another request created it first
	return repo.GetRecord(ctx, rec.Key)
}

func (repo *progressRepository) UpdateRecord(ctx context.Context, key progress.Key, fn func(*progress.Record) error) (rec progress.Record, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `SELECT ` + progressColumns + ` FROM weekly_progress WHERE ` + whereKey
	if repo.db.DriverName() == "postgres" {
		q += " FOR UPDATE"
	}
	rec, err = getRecord(ctx, tx, tx.Rebind(q), key)
	if err != nil {
		return progress.Record{}, err
	}
	if err = fn(&rec); err != nil {
		return progress.Record{}, err
	}
	rec.Key = key

	row, err := newProgressRow(rec)
	if err != nil {
		return progress.Record{}, err
	}
	update := `UPDATE weekly_progress SET topic = :topic,
			assignments_completed = :assignments_completed, total_assignments = :total_assignments,
			quizzes_completed = :quizzes_completed, total_quizzes = :total_quizzes, status = :status,
			quiz_scores = :quiz_scores, assignment_submissions = :assignment_submissions,
			unlocked_at = :unlocked_at, started_at = :started_at, completed_at = :completed_at, updated_at = :updated_at
		WHERE user_id = :user_id AND course_id = :course_id AND level = :level AND week = :week`
	if _, err = tx.NamedExecContext(ctx, update, row); err != nil {
		return progress.Record{}, errors.Wrap(err, "updating record")
	}
	if err = tx.Commit(); err != nil {
		return progress.Record{}, errors.Wrap(err, "committing")
	}
	return rec, nil
}
