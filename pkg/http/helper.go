package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "airseat/pkg/errors"
)

// DecodeJSON decodes the request body into v, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("Request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		case errors.As(err, &maxBytesErr):
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		default:
			return apperrors.InvalidInput("Invalid request body").WithDetails(map[string]any{"error": err.Error()})
		}
	}

	if decoder.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object")
	}
	return nil
}

// RequiredQuery returns the trimmed query parameter or an INVALID_INPUT error
// naming the missing parameters.
func RequiredQuery(r *http.Request, names ...string) (map[string]string, error) {
	query := r.URL.Query()
	values := make(map[string]string, len(names))
	var missing []string

	for _, name := range names {
		v := strings.TrimSpace(query.Get(name))
		if v == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = v
	}

	if len(missing) > 0 {
		return nil, apperrors.InvalidInput("Missing required query parameters: " + strings.Join(missing, ", ")).
			WithDetails(map[string]any{"missing": missing})
	}
	return values, nil
}
