package dto

import "github.com/GregMSThompson/wallet-api/internal/models"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Tokens are issued by the identity provider on password sign-in.
type Tokens struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type SessionResponse struct {
	User   *models.User `json:"user"`
	Tokens *Tokens      `json:"tokens,omitempty"`
}

// SignInResult is a successful password sign-in.
type SignInResult struct {
	UID   string
	Email string
	Tokens
}
