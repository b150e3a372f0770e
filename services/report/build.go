package reportsvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
)

type (
	Courses interface {
		Course(id string) (content.Course, error)
		Weeks(courseID string, level content.Level) ([]content.Week, error)
	}

	Progress interface {
		CourseProgress(ctx context.Context, courseID string, level content.Level) ([]progress.Record, error)
	}

	Users interface {
		QueryAll(ctx context.Context) ([]user.User, error)
	}
)

// BuildProgressReport gathers the report of a course level. Only students are listed.
func BuildProgressReport(ctx context.Context, courses Courses, prog Progress, users Users, courseID string, level content.Level) (ProgressReport, error) {
	courseID = core.CleanString(courseID, true /* lower */)
	level = content.NormalizeLevel(string(level))

	course, err := courses.Course(courseID)
	if err != nil {
		return ProgressReport{}, err
	}
	weeks, err := courses.Weeks(courseID, level)
	if err != nil {
		return ProgressReport{}, err
	}
	records, err := prog.CourseProgress(ctx, courseID, level)
	if err != nil {
		return ProgressReport{}, errors.Wrap(err, "querying course progress")
	}
	all, err := users.QueryAll(ctx)
	if err != nil {
		return ProgressReport{}, errors.Wrap(err, "querying users")
	}

	learners := make([]user.User, 0, len(all))
	for _, usr := range all {
		if usr.IsStudent() {
			learners = append(learners, usr)
		}
	}
	return ProgressReport{
		Course:   course,
		Level:    level,
		Weeks:    weeks,
		Learners: learners,
		Records:  records,
	}, nil
}
