package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/wallet-api/internal/dto"
	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

type stubUserService struct {
	signUpReq dto.SignUpRequest
	loginErr  error
	loggedOut string
	patch     *models.UserPatch
}

func (s *stubUserService) SignUp(_ context.Context, req dto.SignUpRequest) (*dto.SessionResponse, error) {
	s.signUpReq = req
	return &dto.SessionResponse{User: &models.User{UID: "u1", Email: req.Email}, Tokens: &dto.Tokens{IDToken: "id"}}, nil
}

func (s *stubUserService) Login(context.Context, dto.LoginRequest) (*dto.SessionResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &dto.SessionResponse{User: &models.User{UID: "u1"}}, nil
}

func (s *stubUserService) Logout(_ context.Context, uid string) error {
	s.loggedOut = uid
	return nil
}

func (s *stubUserService) GetProfile(_ context.Context, uid string) (*models.User, error) {
	return &models.User{UID: uid, DisplayName: "Ana"}, nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, uid string, patch *models.UserPatch) (*models.User, error) {
	s.patch = patch
	return &models.User{UID: uid}, nil
}

func TestSignUpCreated(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandlers(&Deps{ResponseHandler: realResponses(), UserSvc: svc})

	body := `{"email":"ana@example.com","password":"secret1","name":"Ana"}`
	rr := httptest.NewRecorder()
	h.SignUp(rr, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if svc.signUpReq.Name != "Ana" || !strings.Contains(rr.Body.String(), `"idToken":"id"`) {
		t.Fatalf("req=%+v body=%s", svc.signUpReq, rr.Body.String())
	}
}

func TestLoginFailureIsUnauthorized(t *testing.T) {
	svc := &stubUserService{loginErr: errs.NewAuthError("wrong-password", "Senha incorreta")}
	h := NewUserHandlers(&Deps{ResponseHandler: realResponses(), UserSvc: svc})

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.com","password":"x"}`)))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if body := decodeError(t, rr.Body.Bytes()); body.Message != "Senha incorreta" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestLogoutUsesCallerUID(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandlers(&Deps{ResponseHandler: realResponses(), UserSvc: svc})

	rr := httptest.NewRecorder()
	h.Logout(rr, withUID(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), "u9"))

	if rr.Code != http.StatusNoContent || svc.loggedOut != "u9" {
		t.Fatalf("status=%d uid=%q", rr.Code, svc.loggedOut)
	}
}

func TestUpdateProfileDecodesPatch(t *testing.T) {
	svc := &stubUserService{}
	h := NewUserHandlers(&Deps{ResponseHandler: realResponses(), UserSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"displayName":"Ana Maria"}`)), "u1")
	rr := httptest.NewRecorder()
	h.UpdateProfile(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if svc.patch == nil || svc.patch.DisplayName == nil || *svc.patch.DisplayName != "Ana Maria" || svc.patch.PhotoURL != nil {
		t.Fatalf("patch = %+v", svc.patch)
	}
}
