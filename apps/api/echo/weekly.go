package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/progress"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/quiz"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type weeklyApi struct {
	svc      *progress.Service
	usrSvc   *user.Service
	store    *content.Store
	validate *validator.Validate
}

func registerWeeklyAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *progress.Service,
	usrSvc *user.Service,
	store *content.Store,
	validate *validator.Validate,
) {
	api := weeklyApi{
		svc:      svc,
		usrSvc:   usrSvc,
		store:    store,
		validate: validate,
	}

	wg := g.Group("/weekly", jwt)
	wg.GET("/progress/:courseId/:level", api.progress)
	wg.GET("/progress/:courseId/:level/all", api.courseProgress, adminMiddleware())
	wg.GET("/progress/:courseId/:level/report", api.report, adminMiddleware())

	wg.GET("/:courseId/:level/weeks", api.weeks)
	wg.GET("/:courseId/:level/week/:week", api.week)
	wg.POST("/:courseId/:level/week/:week/complete-assignment", api.completeAssignment)
	wg.POST("/:courseId/:level/week/:week/complete-quiz", api.completeQuiz)
}

// Handlers

func (api *weeklyApi) weeks(ctx echo.Context) error {
	wp, learner, err := bindWeekRequest(ctx)
	if err != nil {
		return err
	}
	weeks, err := api.svc.Weeks(ctx.Request().Context(), learner, wp.CourseID, wp.Level)
	if err != nil {
		return errors.Wrap(err, "listing weeks")
	}
	return ctx.JSON(http.StatusOK, weeks)
}

func (api *weeklyApi) week(ctx echo.Context) error {
	wp, learner, err := bindWeekRequest(ctx)
	if err != nil {
		return err
	}
	detail, err := api.svc.OpenWeek(ctx.Request().Context(), learner, wp.CourseID, wp.Level, wp.Week)
	if err != nil {
		return errors.Wrap(err, "opening week")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *weeklyApi) completeAssignment(ctx echo.Context) error {
	wp, learner, err := bindWeekRequest(ctx)
	if err != nil {
		return err
	}
	var data CompleteAssignmentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteAssignmentRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	res, err := api.svc.CompleteAssignment(ctx.Request().Context(), learner, wp.CourseID, wp.Level, wp.Week, *data.AssignmentIndex)
	if err != nil {
		return errors.Wrap(err, "completing assignment")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *weeklyApi) completeQuiz(ctx echo.Context) error {
	wp, learner, err := bindWeekRequest(ctx)
	if err != nil {
		return err
	}
	var data CompleteQuizRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteQuizRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	res, err := api.svc.CompleteQuiz(
		ctx.Request().Context(), learner, wp.CourseID, wp.Level, wp.Week,
		*data.QuizIndex, data.Answers, *data.Score,
	)
	if err != nil {
		return errors.Wrap(err, "completing quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *weeklyApi) progress(ctx echo.Context) error {
	wp, learner, err := bindWeekRequest(ctx)
	if err != nil {
		return err
	}
	orderings, err := bindOrderings(ctx, progress.OrderingFields...)
	if err != nil {
		return err
	}
	records, err := api.svc.Progress(ctx.Request().Context(), learner, wp.CourseID, wp.Level, orderings...)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *weeklyApi) courseProgress(ctx echo.Context) error {
	wp, err := bindWeekPath(ctx)
	if err != nil {
		return err
	}
	records, err := api.svc.CourseProgress(ctx.Request().Context(), wp.CourseID, wp.Level)
	if err != nil {
		return errors.Wrap(err, "querying course progress")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *weeklyApi) report(ctx echo.Context) error {
	wp, err := bindWeekPath(ctx)
	if err != nil {
		return err
	}
	rep, err := reportsvc.BuildProgressReport(ctx.Request().Context(), api.store, api.svc, api.usrSvc, wp.CourseID, wp.Level)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = rep.WriteXLSX(&buf); err != nil {
		return errors.Wrap(err, "writing report")
	}
	filename := fmt.Sprintf("%s-%s-progress.xlsx", wp.CourseID, wp.Level)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func bindWeekRequest(ctx echo.Context) (weekPath, progress.Learner, error) {
	learner, err := getContextLearner(ctx)
	if err != nil {
		return weekPath{}, progress.Learner{}, err
	}
	wp, err := bindWeekPath(ctx)
	if err != nil {
		return weekPath{}, progress.Learner{}, err
	}
	return wp, learner, nil
}

type (
	CompleteAssignmentRequest struct {
		AssignmentIndex *int `json:"assignment_index" validate:"required"`
	}

	CompleteQuizRequest struct {
		QuizIndex *int          `json:"quiz_index" validate:"required"`
		Answers   []quiz.Answer `json:"answers"`
		Score     *int          `json:"score" validate:"required"`
	}
)
