package authflow

import (
	"context"
	"time"

	"github.com/jrsteele09/go-elearn-client/endpoints"
	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
	"github.com/jrsteele09/go-elearn-client/models"
	"github.com/jrsteele09/go-elearn-client/sessions"
	"github.com/jrsteele09/go-elearn-client/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Service runs the authentication flows. Apart from token refresh it is the
// only writer of the session store.
type Service struct {
	executor *endpoints.Executor
	store    *sessions.Store
	logger   zerolog.Logger
	nowFunc  func() time.Time
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func New(executor *endpoints.Executor, options ...Option) *Service {
	s := &Service{
		executor: executor,
		store:    executor.Client().Store(),
		logger:   zerolog.Nop(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) Signup(ctx context.Context, req models.SignupRequest) error {
	if _, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpSignup, Body: req}, nil); err != nil {
		return err
	}
	s.executor.Client().Notifier().Success("Account created, check your email for the verification code")
	return nil
}

// Login starts a user session from email and password
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	return s.userSession(ctx, endpoints.OpLogin, req)
}

// VerifyEmail confirms the signup OTP; the backend logs the user in on success
func (s *Service) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (*models.User, error) {
	return s.userSession(ctx, endpoints.OpVerifyEmail, req)
}

func (s *Service) ResendOTP(ctx context.Context, email string) error {
	_, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpResendOTP, Body: models.ResendOTPRequest{Email: email}}, nil)
	return err
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpForgotPassword, Body: models.ForgotPasswordRequest{Email: email}}, nil)
	return err
}

func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	_, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpResetPassword, Body: req}, nil)
	return err
}

// AdminLogin checks admin credentials; the backend then emails a one-time code
func (s *Service) AdminLogin(ctx context.Context, req models.AdminLoginRequest) error {
	_, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpAdminLogin, Body: req}, nil)
	return err
}

// AdminVerifyOTP completes the admin login and starts an admin session
func (s *Service) AdminVerifyOTP(ctx context.Context, req models.AdminVerifyOTPRequest) (*models.Admin, error) {
	var resp models.AdminAuthResponse
	if _, err := s.executor.Execute(ctx, endpoints.Call{Op: endpoints.OpAdminVerifyOTP, Body: req}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, apperrors.Wrapf(apperrors.ErrBadResponse, "admin login returned no token")
	}
	if err := s.store.SetAdmin(ctx, resp.Admin, resp.Token); err != nil {
		return nil, errors.Wrap(err, "Service.AdminVerifyOTP SetAdmin")
	}
	s.executor.Cache().Clear()
	s.logger.Info().Str("admin", resp.Admin.Email).Msg("admin session started")
	return &resp.Admin, nil
}

// Logout tells the backend (best effort) and destroys the local session
func (s *Service) Logout(ctx context.Context) error {
	session := s.store.Snapshot()
	op := endpoints.OpLogout
	if session.IsAdmin() {
		op = endpoints.OpAdminLogout
	}
	if !session.IsAnonymous() {
		if _, err := s.executor.Execute(ctx, endpoints.Call{Op: op}, nil); err != nil {
			s.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}

	s.executor.Cache().Clear()
	if err := s.store.Clear(ctx); err != nil {
		return errors.Wrap(err, "Service.Logout Clear")
	}
	return nil
}

func (s *Service) userSession(ctx context.Context, op endpoints.Operation, body any) (*models.User, error) {
	var resp models.UserAuthResponse
	if _, err := s.executor.Execute(ctx, endpoints.Call{Op: op, Body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, apperrors.Wrapf(apperrors.ErrBadResponse, "%s returned no access token", op)
	}
	if err := s.store.SetUser(ctx, resp.User, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "Service.userSession SetUser")
	}
	s.executor.Cache().Clear()
	s.logger.Info().Str("user", resp.User.Email).Msg("user session started")
	return &resp.User, nil
}

// Identity summarises the current session for display
type Identity struct {
	Mode      sessions.Mode
	ID        string
	Name      string
	Email     string
	Role      string
	ExpiresAt time.Time
	Expired   bool
}

// WhoAmI describes the session, reading expiry from the bearer token when it is a JWT
func (s *Service) WhoAmI() Identity {
	session := s.store.Snapshot()
	id := Identity{Mode: session.Mode}
	switch {
	case session.IsUser() && session.User != nil:
		id.ID, id.Name, id.Email, id.Role = session.User.ID, session.User.Name, session.User.Email, string(session.User.Role)
	case session.IsAdmin() && session.Admin != nil:
		id.ID, id.Name, id.Email, id.Role = session.Admin.ID, session.Admin.Name, session.Admin.Email, string(session.Admin.Role)
	}

	if claims, err := token.Inspect(session.BearerToken()); err == nil {
		id.ExpiresAt = claims.ExpiresAt
		id.Expired = claims.Expired(s.nowFunc())
		if id.Role == "" {
			id.Role = claims.Role
		}
	}
	return id
}
