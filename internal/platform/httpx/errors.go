package httpx

import (
	"errors"
	"net/http"

	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// RespondError maps a typed application error to an RFC7807 response. The
// message is localized against the request's Accept-Language header and the
// correlation id is preserved so a support ticket can be traced to logs.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	key := shared.KeyInternal
	correlation := ""

	var app *shared.AppError
	if errors.As(err, &app) {
		key = app.Key
		correlation = app.CorrelationID
		status = statusForKind(app.Kind)
	}

	accept := ""
	if r != nil {
		accept = r.Header.Get("Accept-Language")
	}

	JSON(w, status, ProblemDetail{
		Title:         http.StatusText(status),
		Status:        status,
		Detail:        shared.Localize(accept, key),
		CorrelationID: correlation,
	})
}

func statusForKind(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindConflict:
		return http.StatusConflict
	case shared.KindPermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
