package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, auth echo.MiddlewareFunc, api *schoolApi) {
	sg := g.Group("/schools", auth)

	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/my-schools", api.queryMine)
	sg.GET("/students", api.queryStudents)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *schoolApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data school.NewSchool
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr.InterviewerID)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return respond(ctx, http.StatusCreated, "School created successfully", sch)
}

func (api *schoolApi) query(ctx echo.Context) error {
	var filter school.QueryFilter
	var page core.Page
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	page.Clean()

	schools, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return respondPage(ctx, "Schools retrieved successfully", schools, page, total)
}

// queryMine is query pinned to the caller's own records.
func (api *schoolApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter school.QueryFilter
	var page core.Page
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err = ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	filter.InterviewerID = ctxUsr.InterviewerID
	page.Clean()

	schools, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return respondPage(ctx, "Schools retrieved successfully", schools, page, total)
}

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	var filter school.StudentFilter
	var page core.Page
	if err := ctx.Bind(&filter.School); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to StudentFilter")
	}
	if err := ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	filter.AgeRange = core.ParseAgeRange(ctx.QueryParam("ageRange"))
	page.Clean()

	rows, total, err := api.svc.FilterStudents(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return respondPage(ctx, "Students retrieved successfully", rows, page, total)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "School retrieved successfully", sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data school.UpdateSchool
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, &ctxUsr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "School updated successfully", sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), &ctxUsr); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "School deleted successfully", nil)
}
