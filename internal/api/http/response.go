package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jekabolt/creator-analytics/internal/form"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrResponse renders an error as JSON with the HTTP status derived from its
// gRPC status code.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string            `json:"status"`
	Code       string            `json:"code,omitempty"`
	ErrorText  string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// errRenderer maps err to a response. Errors without a status are internal
// and their text is not exposed.
func errRenderer(r *http.Request, err error) render.Renderer {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.Unknown || st.Code() == codes.Internal {
		slog.Default().ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusInternalServerError,
			StatusText:     http.StatusText(http.StatusInternalServerError),
		}
	}
	code := runtime.HTTPStatusFromCode(st.Code())
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		Code:           st.Code().String(),
		ErrorText:      err.Error(),
		Fields:         form.Violations(st.Err()),
	}
}

func errInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		Code:           codes.InvalidArgument.String(),
		ErrorText:      err.Error(),
		Fields:         form.Violations(err),
	}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	code     int
}

func (h *healthResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, h.code)
	return nil
}
