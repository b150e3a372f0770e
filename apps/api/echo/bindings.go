package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
)

const orderingParam = "ordering"

// bindOrderings reads the `ordering` query param, e.g. `?ordering=-week,status`.
func bindOrderings(ctx echo.Context, allowed ...string) ([]core.DBOrdering, error) {
	return core.ParseOrderings(ctx.QueryParam(orderingParam), allowed...)
}

// weekPath is the `/:courseId/:level[/week/:week]` part of weekly routes.
type weekPath struct {
	CourseID string
	Level    content.Level
	Week     int
}

func bindWeekPath(ctx echo.Context) (weekPath, error) {
	wp := weekPath{
		CourseID: core.CleanString(ctx.Param("courseId"), true /* lower */),
		Level:    content.NormalizeLevel(ctx.Param("level")),
	}
	if s := ctx.Param("week"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return weekPath{}, errHttpNotFound
		}
		wp.Week = n
	}
	return wp, nil
}
