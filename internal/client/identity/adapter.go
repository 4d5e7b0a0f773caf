package identityclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
)

// Provider error codes, named after the client SDK codes.
const (
	CodeInvalidCredential = "invalid-credential"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeEmailInUse        = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeUserDisabled      = "user-disabled"
	CodeTooManyRequests   = "too-many-requests"
	CodeUnknown           = "unknown"
)

// Adapter signs users in with email and password through the Identity
// Toolkit REST API. Account creation goes through the Admin SDK instead.
type Adapter struct {
	svc *identitytoolkit.Service
}

func NewAdapter(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Adapter, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{svc: svc}, nil
}

func (a *Adapter) SignIn(ctx context.Context, email, password string) (*dto.SignInResult, error) {
	resp, err := a.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}

	return &dto.SignInResult{
		UID:   resp.LocalId,
		Email: resp.Email,
		Tokens: dto.Tokens{
			IDToken:      resp.IdToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
		},
	}, nil
}

// translateError maps REST error messages such as "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : ..." to AuthError codes.
func translateError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return errs.NewExternalServiceError("identitytoolkit", "authentication service unavailable", true, err)
	}
	if gerr.Code >= http.StatusInternalServerError {
		return errs.NewExternalServiceError("identitytoolkit", "authentication service unavailable", true, err)
	}

	reason, _, _ := strings.Cut(gerr.Message, " ")
	return errs.NewAuthError(codeFor(reason), gerr.Message)
}

func codeFor(reason string) string {
	switch reason {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return CodeInvalidCredential
	case "EMAIL_NOT_FOUND":
		return CodeUserNotFound
	case "INVALID_PASSWORD":
		return CodeWrongPassword
	case "EMAIL_EXISTS":
		return CodeEmailInUse
	case "WEAK_PASSWORD":
		return CodeWeakPassword
	case "USER_DISABLED":
		return CodeUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return CodeTooManyRequests
	default:
		return CodeUnknown
	}
}
