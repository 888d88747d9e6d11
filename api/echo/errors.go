package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
	"github.com/almajirisurvey/backend/core/beggar"
	"github.com/almajirisurvey/backend/core/draft"
	"github.com/almajirisurvey/backend/core/file"
	"github.com/almajirisurvey/backend/core/school"
	"github.com/almajirisurvey/backend/core/user"
)

var (
	errTokenRequired = echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	errInvalidToken  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	errInactiveUser  = echo.NewHTTPError(http.StatusUnauthorized, "Invalid or inactive user")
	errForbidden     = echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps
// domain errors onto the response envelope. signalShutdown is called whenever
// a core.shutdown error is caught so the server can stop gracefully.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(http.StatusInternalServerError)
		var fldErrs interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message, _ = origErr.Message.(string)
			if message == "" {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			flds := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				flds[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = "Validation failed"
			fldErrs = flds
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = "Validation failed"
			if msg := origErr.Error(); msg != "" {
				message = msg
			}
			if origErr.Fields != nil {
				flds := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					flds[fErr.Field] = fErr.Error
				}
				fldErrs = flds
			}
		case *core.PermissionError:
			code = http.StatusForbidden
			message = origErr.Error()
		default:
			switch cause {
			case user.ErrNotFound, school.ErrNotFound, beggar.ErrNotFound, draft.ErrNotFound, file.ErrNotFound:
				code = http.StatusNotFound
				message = cause.Error()
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				message = cause.Error()
			case user.ErrAccountDeactivated:
				code = http.StatusForbidden
				message = cause.Error()
			case user.ErrInvalidToken:
				code = http.StatusUnauthorized
				message = "Invalid token"
			default: // any other error is a server error
				var usr user.User
				if ctxUsr, ok := ctx.Get(ctxUserKey).(user.User); ok {
					usr = ctxUsr
				}
				logger.Error(message, errors.Wrap(err, message), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if !ctx.Response().Committed {
			var werr error
			if ctx.Request().Method == http.MethodHead {
				werr = ctx.NoContent(code)
			} else {
				werr = ctx.JSON(code, Response{Success: false, Message: message, Errors: fldErrs})
			}
			if werr != nil {
				ctx.Echo().Logger.Error(werr)
			}
		}
	}
}
