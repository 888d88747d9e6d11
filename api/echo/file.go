package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/file"
)

type fileApi struct {
	svc *file.Service
}

func registerFileAPI(g *echo.Group, auth echo.MiddlewareFunc, api *fileApi) {
	fg := g.Group("/files", auth)

	fg.POST("/upload", api.upload)
	fg.GET("", api.query)
	fg.GET("/my-files", api.queryMine)
	fg.GET("/:id", api.retrieve)
	fg.GET("/:id/download", api.download)
	fg.DELETE("/:id", api.destroy)
}

func (api *fileApi) upload(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("No file uploaded"),
			core.FieldError{Field: "file", Error: "No file uploaded"})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	up := file.Upload{
		OriginalName:  fh.Filename,
		MimeType:      fh.Header.Get(echo.HeaderContentType),
		Size:          fh.Size,
		RelatedToKind: ctx.FormValue("relatedToType"),
		RelatedToID:   ctx.FormValue("relatedToId"),
	}
	f, err := api.svc.Upload(ctx.Request().Context(), up, src, ctxUsr.InterviewerID)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "File uploaded successfully", f)
}

func (api *fileApi) query(ctx echo.Context) error {
	var filter file.QueryFilter
	var page core.Page
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	page.Clean()

	files, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying files")
	}
	return respondPage(ctx, "Files retrieved successfully", files, page, total)
}

// queryMine is query pinned to the caller's own uploads.
func (api *fileApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var filter file.QueryFilter
	var page core.Page
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err = ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	filter.UploadedBy = ctxUsr.InterviewerID
	page.Clean()

	files, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying files")
	}
	return respondPage(ctx, "Files retrieved successfully", files, page, total)
}

func (api *fileApi) retrieve(ctx echo.Context) error {
	f, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "File retrieved successfully", f)
}

func (api *fileApi) download(ctx echo.Context) error {
	f, rc, err := api.svc.Download(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	defer rc.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+f.OriginalName+`"`)
	return ctx.Stream(http.StatusOK, f.MimeType, rc)
}

func (api *fileApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), &ctxUsr); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "File deleted successfully", nil)
}
