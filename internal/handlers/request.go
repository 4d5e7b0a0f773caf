package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/wallet-api/internal/errs"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into v. Malformed or unknown input
// becomes a ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewValidationError("request body is required")
		}
		return errs.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func queryInt64(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.NewFieldError(name, name+" must be an integer amount in cents")
	}
	return &v, nil
}

func queryBool(q url.Values, name string) (*bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.NewFieldError(name, name+" must be true or false")
	}
	return &v, nil
}

// queryDate accepts YYYY-MM-DD in loc or a full RFC 3339 timestamp.
func queryDate(q url.Values, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.NewFieldError(name, name+" must be a YYYY-MM-DD date")
	}
	return &t, nil
}
