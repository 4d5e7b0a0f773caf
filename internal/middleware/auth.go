package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/response"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	Verifier        tokenVerifier
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(verifier tokenVerifier, rh response.ResponseHandler) *Middleware {
	return &Middleware{Verifier: verifier, ResponseHandler: rh}
}

type contextKey string

const UIDKey contextKey = "uid"

// FirebaseAuth requires a valid Firebase ID token and puts its uid on the
// context and the request logger.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.ResponseHandler.HandleError(w, r, errs.NewAuthError("missing-token", "missing Authorization header"))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.HandleError(w, r, errs.NewAuthError("invalid-token", "invalid Authorization header"))
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			m.ResponseHandler.HandleError(w, r, errs.NewAuthError("invalid-token", "invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UIDKey, token.UID)
		_, ctx = logger.With(ctx, "uid", token.UID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}
