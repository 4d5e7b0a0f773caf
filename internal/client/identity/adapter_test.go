package identityclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"github.com/GregMSThompson/wallet-api/internal/errs"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewAdapter(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	return a
}

func TestSignInSuccess(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@example.com" || body["returnSecureToken"] != true {
			t.Errorf("unexpected request body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"localId":"u1","email":"ana@example.com","idToken":"id","refreshToken":"rt","expiresIn":"3600"}`))
	})

	res, err := a.SignIn(context.Background(), "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.UID != "u1" || res.IDToken != "id" || res.ExpiresIn != 3600 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSignInMapsProviderErrors(t *testing.T) {
	tests := []struct {
		message string
		code    string
	}{
		{"INVALID_PASSWORD", CodeWrongPassword},
		{"EMAIL_NOT_FOUND", CodeUserNotFound},
		{"INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled", CodeTooManyRequests},
		{"SOMETHING_NEW", CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"` + tt.message + `"}}`))
			})

			_, err := a.SignIn(context.Background(), "ana@example.com", "x")
			var authErr *errs.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if authErr.Code != tt.code {
				t.Fatalf("code = %q, want %q", authErr.Code, tt.code)
			}
		})
	}
}

func TestSignInServerErrorIsTransient(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := a.SignIn(context.Background(), "ana@example.com", "x")
	var extErr *errs.ExternalServiceError
	if !errors.As(err, &extErr) || !extErr.Transient {
		t.Fatalf("expected transient ExternalServiceError, got %v", err)
	}
}
