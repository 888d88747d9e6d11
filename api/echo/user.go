package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/user"
)

type userApi struct {
	svc      *user.Service
	tokens   *user.TokenService
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, api *userApi) {
	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/admin-login", api.adminLogin)
	ag.POST("/refresh", api.refresh)

	// authed endpoints
	ag.GET("/me", api.me, auth)
	ag.POST("/change-password", api.changePassword, auth)
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, api *userApi) {
	ug := g.Group("/users", auth, adminMiddleware())

	ug.POST("", api.create)
	ug.GET("", api.query)
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.PATCH("/:id/toggle-status", api.toggleStatus)
	ug.DELETE("/:id", api.destroy)
}

// authPayload bundles the user with a fresh token pair.
type authPayload struct {
	User         user.User `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

func (api *userApi) authPayload(usr user.User) (authPayload, error) {
	pair, err := api.tokens.GeneratePair(usr)
	if err != nil {
		return authPayload{}, errors.Wrap(err, "generating tokens")
	}
	return authPayload{User: usr, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.RegisterUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	payload, err := api.authPayload(usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, "User registered successfully", payload)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.InterviewerID, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	payload, err := api.authPayload(usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Login successful", payload)
}

func (api *userApi) adminLogin(ctx echo.Context) error {
	var data AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.AuthenticateAdmin(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating admin")
	}
	payload, err := api.authPayload(usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Login successful", payload)
}

func (api *userApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.tokens.VerifyRefresh(data.RefreshToken)
	if err != nil {
		return err
	}
	usr, err := api.svc.Refresh(ctx.Request().Context(), claims)
	if err != nil {
		return err
	}
	payload, err := api.authPayload(usr)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Token refreshed successfully", payload)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "User retrieved successfully", usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "Password changed successfully", nil)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, "User created successfully", usr)
}

func (api *userApi) query(ctx echo.Context) error {
	var filter user.QueryFilter
	var page core.Page
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err := ctx.Bind(&page); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	filter.Clean()
	page.Clean()

	users, total, err := api.svc.Filter(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return respondPage(ctx, "Users retrieved successfully", users, page, total)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "User retrieved successfully", usr)
}

func (api *userApi) update(ctx echo.Context) error {
	origUsr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(origUsr, api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), origUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return respond(ctx, http.StatusOK, "User updated successfully", usr)
}

func (api *userApi) toggleStatus(ctx echo.Context) error {
	// Say No to Suicide! ctxUser cannot deactivate themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") == ctxUsr.ID {
		return errForbidden
	}

	usr, err := api.svc.ToggleActive(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "User status updated successfully", usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	// ctxUser cannot delete themselves either
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") == ctxUsr.ID {
		return errForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "User deleted successfully", nil)
}

type (
	LoginRequest struct {
		InterviewerID string `json:"interviewerId" validate:"required"`
		Password      string `json:"password" validate:"required"`
	}

	AdminLoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.InterviewerID = core.CleanString(lr.InterviewerID)
	return validate.Struct(lr)
}

func (ar *AdminLoginRequest) Validate(validate *validator.Validate) error {
	ar.Email = core.CleanString(ar.Email, true /* lower */)
	return validate.Struct(ar)
}

func (rr *RefreshRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
