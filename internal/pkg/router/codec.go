package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otplogin/internal/pkg/validator"
)

type errorResponse struct {
	Error  string            `json:"error" example:"Invalid OTP"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message" example:"OTP Login API is running"`
}

func errorCodec(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled error type", "error", err)
		writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Error: gerr.Msg()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		resp.Fields = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		resp.Fields = gerr.Fields()
	}

	if ra := gerr.RetryAfter(); ra > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(clock.CeilSeconds(ra)))
	}

	writeJSON(w, resp, gerr.StatusCode())
}

func okCodec(_ context.Context, w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
