package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
)

type beggarApi struct {
	svc      *beggar.Service
	validate *validator.Validate
}

func registerBeggarAPI(g *echo.Group, auth echo.MiddlewareFunc, api *beggarApi) {
	bg := g.Group("/beggars", auth)

	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/my-beggars", api.queryMine)
	bg.GET("/:id", api.retrieve)
	bg.PUT("/:id", api.update)
	bg.DELETE("/:id", api.destroy)
}

func (api *beggarApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data beggar.NewBeggar
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBeggar")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	bg, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr.InterviewerID)
	if err != nil {
		return errors.Wrap(err, "creating beggar")
	}
	return respond(ctx, http.StatusCreated, "Beggar record created successfully", bg)
}

func (api *beggarApi) bindFilter(ctx echo.Context) (beggar.QueryFilter, core.Page, error) {
	var filter beggar.QueryFilter
	var page core.Page
	if err := ctx.Bind(&filter); err != nil {
		return filter, page, errors.Wrap(err, "binding to QueryFilter")
	}
	if err := ctx.Bind(&page); err != nil {
		return filter, page, errors.Wrap(err, "binding to Page")
	}
	filter.AgeRange = core.ParseAgeRange(ctx.QueryParam("ageRange"))
	page.Clean()
	return filter, page, nil
}

func (api *beggarApi) query(ctx echo.Context) error {
	filter, page, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	beggars, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying beggars")
	}
	return respondPage(ctx, "Beggar records retrieved successfully", beggars, page, total)
}

// queryMine is query pinned to the caller's own records.
func (api *beggarApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	filter, page, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	filter.InterviewerID = ctxUsr.InterviewerID

	beggars, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying beggars")
	}
	return respondPage(ctx, "Beggar records retrieved successfully", beggars, page, total)
}

func (api *beggarApi) retrieve(ctx echo.Context) error {
	bg, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Beggar record retrieved successfully", bg)
}

func (api *beggarApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data beggar.UpdateBeggar
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBeggar")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	bg, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, &ctxUsr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Beggar record updated successfully", bg)
}

func (api *beggarApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), &ctxUsr); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Beggar record deleted successfully", nil)
}
