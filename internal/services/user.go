package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	identityclient "github.com/GregMSThompson/wallet-api/internal/client/identity"
	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
	"github.com/GregMSThompson/wallet-api/pkg/logger"
)

const minPasswordLength = 6

var authMessages = map[string]string{
	identityclient.CodeInvalidCredential: "Email ou senha inválidos",
	identityclient.CodeUserNotFound:      "Usuário não encontrado",
	identityclient.CodeWrongPassword:     "Senha incorreta",
	identityclient.CodeEmailInUse:        "Email já está em uso",
	identityclient.CodeWeakPassword:      "Senha muito fraca",
}

const (
	loginFallbackMessage  = "Erro ao fazer login"
	signUpFallbackMessage = "Erro ao criar conta"
)

type authAdmin interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type passwordSignIn interface {
	SignIn(ctx context.Context, email, password string) (*dto.SignInResult, error)
}

type userDocStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpsertUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, uid string, patch *models.UserPatch) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

type userService struct {
	auth     authAdmin
	signIn   passwordSignIn
	store    userDocStore
	clockNow func() time.Time
}

func NewUserService(admin authAdmin, signIn passwordSignIn, store userDocStore) *userService {
	return &userService{
		auth:     admin,
		signIn:   signIn,
		store:    store,
		clockNow: time.Now,
	}
}

// SignUp creates the auth account, mirrors it into the users collection and
// signs the new user in.
func (s *userService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SessionResponse, error) {
	log := logger.FromContext(ctx)

	user := &models.User{
		Email:       strings.TrimSpace(req.Email),
		DisplayName: strings.TrimSpace(req.Name),
	}
	if user.Email == "" {
		return nil, errs.NewFieldError("email", "email is required")
	}
	if user.DisplayName == "" {
		return nil, errs.NewFieldError("displayName", "name must be between 2 and 100 characters")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, errs.NewAuthError(identityclient.CodeWeakPassword, authMessages[identityclient.CodeWeakPassword])
	}

	record, err := s.auth.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(user.Email).
		Password(req.Password).
		DisplayName(user.DisplayName))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, errs.NewAuthError(identityclient.CodeEmailInUse, authMessages[identityclient.CodeEmailInUse])
		}
		log.Error("failed to create auth user", "error", err)
		return nil, errs.NewAuthError(identityclient.CodeUnknown, signUpFallbackMessage)
	}

	user.UID = record.UID
	if err := s.store.CreateUser(ctx, user); err != nil {
		log.Error("failed to mirror user", "uid", user.UID, "error", err)
		return nil, err
	}
	log.Info("user signed up", "uid", user.UID)

	res, err := s.signIn.SignIn(ctx, user.Email, req.Password)
	if err != nil {
		return nil, loginError(err)
	}
	return &dto.SessionResponse{User: user, Tokens: &res.Tokens}, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionResponse, error) {
	log := logger.FromContext(ctx)

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, errs.NewAuthError(identityclient.CodeInvalidCredential, authMessages[identityclient.CodeInvalidCredential])
	}

	res, err := s.signIn.SignIn(ctx, email, req.Password)
	if err != nil {
		log.Warn("login failed", "error", err)
		return nil, loginError(err)
	}

	user, err := s.profile(ctx, res.UID)
	if err != nil {
		return nil, err
	}
	log.Info("user logged in", "uid", res.UID)
	return &dto.SessionResponse{User: user, Tokens: &res.Tokens}, nil
}

// loginError replaces provider messages with the user-facing ones.
func loginError(err error) error {
	var authErr *errs.AuthError
	if !errors.As(err, &authErr) {
		return err
	}
	msg, ok := authMessages[authErr.Code]
	if !ok {
		msg = loginFallbackMessage
	}
	return errs.NewAuthError(authErr.Code, msg)
}

// Logout revokes every refresh token of the user.
func (s *userService) Logout(ctx context.Context, uid string) error {
	if err := s.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		logger.FromContext(ctx).Error("failed to revoke tokens", "error", err)
		return errs.NewExternalServiceError("auth", "failed to log out", true, err)
	}
	logger.FromContext(ctx).Info("user logged out")
	return nil
}

func (s *userService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	return s.profile(ctx, uid)
}

// profile reads the mirrored user document. Accounts created outside the
// API have no document yet; one is written from the auth record.
func (s *userService) profile(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	record, err := s.auth.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, errs.NewNotFoundError("user not found")
		}
		return nil, errs.NewExternalServiceError("auth", "failed to load user", true, err)
	}

	user = fromRecord(record)
	if err := s.store.UpsertUser(ctx, user); err != nil {
		logger.FromContext(ctx).Warn("failed to backfill user document", "error", err)
	}
	return user, nil
}

func fromRecord(r *auth.UserRecord) *models.User {
	u := &models.User{}
	if r.UserInfo != nil {
		u.UID = r.UID
		u.Email = r.Email
		u.DisplayName = r.DisplayName
		u.PhotoURL = r.PhotoURL
		u.PhoneNumber = r.PhoneNumber
	}
	if r.UserMetadata != nil && r.UserMetadata.CreationTimestamp > 0 {
		u.CreatedAt = time.UnixMilli(r.UserMetadata.CreationTimestamp)
	}
	return u
}

// UpdateProfile writes the auth profile first, then the mirrored document.
// The two writes are not atomic.
func (s *userService) UpdateProfile(ctx context.Context, uid string, patch *models.UserPatch) (*models.User, error) {
	log := logger.FromContext(ctx)

	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		patch.DisplayName = &name
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.DisplayName == nil && patch.PhotoURL == nil && patch.PhoneNumber == nil {
		return nil, errs.NewValidationError("nothing to update")
	}

	update := &auth.UserToUpdate{}
	if patch.DisplayName != nil {
		update.DisplayName(*patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		update.PhotoURL(*patch.PhotoURL)
	}
	if patch.PhoneNumber != nil {
		update.PhoneNumber(*patch.PhoneNumber)
	}

	if _, err := s.auth.UpdateUser(ctx, uid, update); err != nil {
		log.Error("failed to update auth profile", "error", err)
		if auth.IsUserNotFound(err) {
			return nil, errs.NewNotFoundError("user not found")
		}
		return nil, errs.NewExternalServiceError("auth", "failed to update profile", false, err)
	}
	if err := s.store.UpdateUser(ctx, uid, patch); err != nil {
		log.Error("failed to update user document", "error", err)
		return nil, err
	}

	log.Info("profile updated")
	return s.profile(ctx, uid)
}

// SetPhotoURL points the profile photo at an uploaded avatar.
func (s *userService) SetPhotoURL(ctx context.Context, uid, url string) error {
	_, err := s.UpdateProfile(ctx, uid, &models.UserPatch{PhotoURL: &url})
	return err
}
