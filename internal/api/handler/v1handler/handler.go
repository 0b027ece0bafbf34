// Package v1handler implements the v1 JSON API on top of scanner.Scanner.
package v1handler

import (
	"context"
	"errors"
	"net/http"
	"primes/internal/scanner"
	"primes/pkg/logger"
	"primes/pkg/primality"
	"primes/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps are the services the handlers call into.
type Deps struct {
	Scanner scanner.Scanner
	// DefaultRange is scanned by GET /v1/primes when no upper bound is given.
	DefaultRange primality.Range
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Register adds every v1 route to mux. Scan routes require authentication by sec.
func (h *Handler) Register(mux *http.ServeMux, sec *SecHandler) {
	mux.HandleFunc("GET /v1/primes/{n}", h.CheckPrime)
	mux.HandleFunc("GET /v1/primes", h.ScanPrimes)

	mux.Handle("POST /v1/scans", sec.Middleware(h, http.HandlerFunc(h.CreateScan)))
	mux.Handle("GET /v1/scans", sec.Middleware(h, http.HandlerFunc(h.ListScans)))
	mux.Handle("GET /v1/scans/{id}", sec.Middleware(h, http.HandlerFunc(h.GetScan)))
	mux.Handle("DELETE /v1/scans/{id}", sec.Middleware(h, http.HandlerFunc(h.DeleteScan)))
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string
	Message string
}

// Encode writes the response as a JSON object.
func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("message")
	e.Str(r.Message)
	e.ObjEnd()
}

// ErrorStatusCode pairs an ErrorResponse with its HTTP status.
type ErrorStatusCode struct {
	StatusCode int
	Response   ErrorResponse
}

var defaultMessages = map[serrors.Kind]string{ //nolint: gochecknoglobals
	serrors.ErrNotFound:     "resource not found",
	serrors.ErrUnauthorized: "unauthorized",
	serrors.ErrBadRequest:   "bad request",
	serrors.ErrConflict:     "conflict",
	serrors.ErrTimeout:      "request timed out",
	serrors.ErrInternal:     "internal error",
}

// NewError maps err to a response. Messages of internal errors are never
// exposed to clients.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatusCode {
	kind := serrors.KindOf(err)
	msg := defaultMessages[kind]

	var sErr *serrors.Error
	if kind != serrors.ErrInternal && errors.As(err, &sErr) && sErr.Message() != "" {
		msg = sErr.Message()
	}

	if kind == serrors.ErrInternal {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err))
	}

	return &ErrorStatusCode{
		StatusCode: serrors.HTTPStatus(kind),
		Response: ErrorResponse{
			Code:    kind.Error(),
			Message: msg,
		},
	}
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, res.Response.Encode)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		logger.Debug(ctx, "could not write response", zap.Error(err))
	}
}
