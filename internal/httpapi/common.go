package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/go-chi/chi/v5"
)

type errStatus int

func (e errStatus) Error() string { return http.StatusText(int(e)) }

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeAppErr translates err into an HTTP response using the shared
// error taxonomy, matching the original's IntoResponse impl for ApiError.
func writeAppErr(w http.ResponseWriter, err error) {
	code := apperr.ClassifyOf(err)
	writeError(w, apperr.HTTPStatus(code), err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.Wrap(apperr.ErrValidation, "request body", errors.New("empty body"))
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.ErrValidation, "decode request body", err)
	}
	return nil
}

func profileIDParam(r *http.Request) string {
	return chi.URLParam(r, "profileID")
}
