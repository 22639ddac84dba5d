package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shadazls/assignment-backend/internal/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into out. An empty body leaves out
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	response.Error(w, http.StatusBadRequest, "invalid request body", err)
	return false
}

func assignmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid assignment id", nil)
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for absent or non-numeric values so that pagination
// falls back to its defaults.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
