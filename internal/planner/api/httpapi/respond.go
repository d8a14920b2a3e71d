package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps a planner error onto the JSON error envelope. Internal
// failures get a generic message; the cause is logged server-side only.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		code = apperrors.CodeInternal
		message = "internal error"
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    string(code),
		Message: message,
	}})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeMalformedRequest, "request body is not valid JSON", err)
	}
	return nil
}
