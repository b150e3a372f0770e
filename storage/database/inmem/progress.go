package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetRecord(_ context.Context, key progress.Key) (progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[key]; ok {
		return cloneRecord(*rec), nil
	}
	return progress.Record{}, progress.ErrRecordNotFound
}

func (repo *progressRepository) QueryRecords(_ context.Context, filter progress.Filter, orderings ...core.DBOrdering) ([]progress.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]progress.Record, 0)
	for key, rec := range repo.db.table {
		if (filter.UserID != "" && key.UserID != filter.UserID) ||
			(filter.CourseID != "" && key.CourseID != filter.CourseID) ||
			(filter.Level != "" && key.Level != filter.Level) {
			continue
		}
		records = append(records, cloneRecord(*rec))
	}

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "week", Ascending: true}}
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareRecords(records[i], records[j], ord.Field)
			if c == 0 {
				continue
			}
			return (c < 0) == ord.Ascending
		}
		return false
	})
	return records, nil
}

func (repo *progressRepository) CreateRecord(_ context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.table[rec.Key]; ok {
		return cloneRecord(*existing), nil
	}
	stored := cloneRecord(rec)
	repo.db.table[rec.Key] = &stored
	return rec, nil
}

func (repo *progressRepository) UpdateRecord(_ context.Context, key progress.Key, fn func(*progress.Record) error) (progress.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.table[key]
	if !ok {
		return progress.Record{}, progress.ErrRecordNotFound
	}
	rec := cloneRecord(*stored)
	if err := fn(&rec); err != nil {
		return progress.Record{}, err
	}
	rec.Key = key
	updated := cloneRecord(rec)
	repo.db.table[key] = &updated
	return rec, nil
}

func cloneRecord(rec progress.Record) progress.Record {
	rec.QuizScores = append([]progress.QuizScore{}, rec.QuizScores...)
	rec.AssignmentSubmissions = append([]progress.AssignmentSubmission{}, rec.AssignmentSubmissions...)
	return rec
}

func compareRecords(a, b progress.Record, field string) int {
	switch field {
	case "user_id":
		return strings.Compare(a.UserID, b.UserID)
	case "course_id":
		return strings.Compare(a.CourseID, b.CourseID)
	case "level":
		return strings.Compare(string(a.Level), string(b.Level))
	case "week":
		return a.Week - b.Week
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "updated_at":
		return compareTimes(&a.UpdatedAt, &b.UpdatedAt)
	case "completed_at":
		return compareTimes(a.CompletedAt, b.CompletedAt)
	}
	return 0
}

// nil times sort first
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}
