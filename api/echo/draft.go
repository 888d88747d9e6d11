package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/draft"
)

type draftApi struct {
	svc      *draft.Service
	validate *validator.Validate
}

func registerDraftAPI(g *echo.Group, auth echo.MiddlewareFunc, api *draftApi) {
	dg := g.Group("/drafts", auth)

	dg.POST("", api.create)
	dg.POST("/save", api.save)
	dg.GET("", api.query)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
}

func (api *draftApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data draft.NewDraft
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDraft")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr.InterviewerID)
	if err != nil {
		return errors.Wrap(err, "creating draft")
	}
	return respond(ctx, http.StatusCreated, "Draft created successfully", d)
}

// save is the autosave endpoint: an upsert keyed on (draftId, interviewer).
func (api *draftApi) save(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data draft.SaveDraft
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveDraft")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	d, created, err := api.svc.Save(ctx.Request().Context(), data, ctxUsr.InterviewerID)
	if err != nil {
		return errors.Wrap(err, "saving draft")
	}
	if created {
		return respond(ctx, http.StatusCreated, "Draft saved successfully", d)
	}
	return respond(ctx, http.StatusOK, "Draft saved successfully", d)
}

func (api *draftApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter draft.QueryFilter
	var page core.Page
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err = ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	page.Clean()

	drafts, total, err := api.svc.Filter(ctx.Request().Context(), ctxUsr.InterviewerID, filter, page)
	if err != nil {
		return errors.Wrap(err, "querying drafts")
	}
	return respondPage(ctx, "Drafts retrieved successfully", drafts, page, total)
}

func (api *draftApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	d, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), ctxUsr.InterviewerID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Draft retrieved successfully", d)
}

func (api *draftApi) update(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data draft.UpdateDraft
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDraft")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	d, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), ctxUsr.InterviewerID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Draft updated successfully", d)
}

func (api *draftApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), ctxUsr.InterviewerID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Draft deleted successfully", nil)
}
