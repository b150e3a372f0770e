package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
)

type courseApi struct {
	store *content.Store
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, store *content.Store) {
	api := courseApi{store: store}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.GET("/:courseId", api.retrieve)
}

func (api *courseApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.Courses())
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	course, err := api.store.Course(ctx.Param("courseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}
