package authflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-elearn-client/authflow"
	"github.com/jrsteele09/go-elearn-client/client"
	"github.com/jrsteele09/go-elearn-client/endpoints"
	"github.com/jrsteele09/go-elearn-client/internal/apitest"
	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
	"github.com/jrsteele09/go-elearn-client/models"
	"github.com/jrsteele09/go-elearn-client/notify"
	"github.com/jrsteele09/go-elearn-client/sessions"
	sessionrepofakes "github.com/jrsteele09/go-elearn-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "Password123"
	testOTP      = "123456"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type testFixture struct {
	server   *apitest.Server
	repo     *sessionrepofakes.FakeSessionRepo
	store    *sessions.Store
	notifier *notify.Recorder
	executor *endpoints.Executor
	service  *authflow.Service
	access   string
}

func signedAccess(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"id":   "u-1",
		"role": "student",
		"exp":  exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return raw
}

func decode(t *testing.T, r *http.Request, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(out))
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		server:   apitest.New(t),
		repo:     sessionrepofakes.NewFakeSessionRepo(),
		notifier: &notify.Recorder{},
	}
	f.access = signedAccess(t, testNow.Add(15*time.Minute))

	store, err := sessions.Load(context.Background(), f.repo)
	require.NoError(t, err)
	f.store = store

	user := models.User{ID: "u-1", Name: "Ada", Email: testEmail, Role: models.RoleStudent}
	r := f.server.Router
	r.Post("/user/signup", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteData(w, http.StatusCreated, nil)
	})
	r.Post("/user/login", func(w http.ResponseWriter, req *http.Request) {
		var body models.LoginRequest
		decode(t, req, &body)
		if body.Password != testPassword {
			apitest.WriteError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		apitest.WriteData(w, http.StatusOK, models.UserAuthResponse{User: user, AccessToken: f.access, RefreshToken: "refresh-1"})
	})
	r.Post("/user/verify-email", func(w http.ResponseWriter, req *http.Request) {
		var body models.VerifyEmailRequest
		decode(t, req, &body)
		if body.OTP != testOTP {
			apitest.WriteError(w, http.StatusBadRequest, "Invalid OTP")
			return
		}
		apitest.WriteData(w, http.StatusOK, models.UserAuthResponse{User: user, AccessToken: f.access, RefreshToken: "refresh-1"})
	})
	r.Post("/user/forgot-password", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteData(w, http.StatusOK, nil)
	})
	r.Post("/user/logout", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteError(w, http.StatusInternalServerError, "logout unavailable")
	})
	r.Post("/admin/login", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteData(w, http.StatusOK, nil)
	})
	r.Post("/admin/verify-otp", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteData(w, http.StatusOK, models.AdminAuthResponse{
			Admin: models.Admin{ID: "a-1", Email: "root@example.com", Role: models.RoleAdmin},
			Token: "admin-token",
		})
	})
	r.Post("/admin/logout", func(w http.ResponseWriter, req *http.Request) {
		apitest.WriteData(w, http.StatusOK, nil)
	})

	c := client.New(f.server.URL, f.store,
		client.WithNotifier(f.notifier),
		client.WithAdminScopeHeader(apitest.AdminScopeHeader),
	)
	f.executor = endpoints.NewExecutor(c)
	f.service = authflow.New(f.executor, authflow.WithNowFunc(func() time.Time { return testNow }))
	return f
}

func TestLoginStartsUserSession(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.Login(context.Background(), models.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)

	s := f.store.Snapshot()
	require.Equal(t, sessions.ModeUser, s.Mode)
	require.Equal(t, f.access, s.AccessToken)
	require.Equal(t, "refresh-1", s.RefreshToken)

	id := f.service.WhoAmI()
	require.Equal(t, sessions.ModeUser, id.Mode)
	require.Equal(t, testEmail, id.Email)
	require.Equal(t, testNow.Add(15*time.Minute).Unix(), id.ExpiresAt.Unix())
	require.False(t, id.Expired)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), models.LoginRequest{Email: testEmail, Password: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.True(t, f.store.Snapshot().IsAnonymous())
	require.Equal(t, []string{"Invalid email or password"}, f.notifier.Errors())
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	require.Empty(t, f.server.Requests())
}

func TestSignupThenVerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	require.NoError(t, f.service.Signup(ctx, models.SignupRequest{Name: "Ada", Email: testEmail, Password: testPassword}))
	require.True(t, f.store.Snapshot().IsAnonymous())
	require.Len(t, f.notifier.Successes(), 1)

	_, err := f.service.VerifyEmail(ctx, models.VerifyEmailRequest{Email: testEmail, OTP: "000000"})
	require.Error(t, err)

	user, err := f.service.VerifyEmail(ctx, models.VerifyEmailRequest{Email: testEmail, OTP: testOTP})
	require.NoError(t, err)
	require.Equal(t, testEmail, user.Email)
	require.True(t, f.store.Snapshot().IsUser())
}

func TestAdminOTPLoginReplacesUserSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, models.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.service.AdminLogin(ctx, models.AdminLoginRequest{Email: "root@example.com", Password: "x"}))
	require.True(t, f.store.Snapshot().IsUser(), "password step alone does not switch sessions")

	admin, err := f.service.AdminVerifyOTP(ctx, models.AdminVerifyOTPRequest{Email: "root@example.com", OTP: testOTP})
	require.NoError(t, err)
	require.Equal(t, "a-1", admin.ID)

	s := f.store.Snapshot()
	require.True(t, s.IsAdmin())
	require.Empty(t, s.AccessToken)
	for _, key := range []string{sessions.KeyUser, sessions.KeyAccessToken, sessions.KeyRefreshToken} {
		require.False(t, f.repo.Has(key), key)
	}
	require.Equal(t, "admin", f.service.WhoAmI().Role)
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.Login(ctx, models.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx))
	require.True(t, f.store.Snapshot().IsAnonymous())
	require.Equal(t, 0, f.repo.Len())
	require.Equal(t, 1, f.server.Count(http.MethodPost, "/user/logout"))
}

func TestAdminLogoutUsesAdminEndpoint(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.AdminVerifyOTP(ctx, models.AdminVerifyOTPRequest{Email: "root@example.com", OTP: testOTP})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx))
	reqs := f.server.Matching(http.MethodPost, "/admin/logout")
	require.Len(t, reqs, 1)
	require.Equal(t, "true", reqs[0].AdminScope)
	require.Equal(t, "admin-token", reqs[0].Bearer())
	require.True(t, f.store.Snapshot().IsAnonymous())
}

func TestAnonymousLogoutSkipsBackend(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.service.Logout(context.Background()))
	require.Empty(t, f.server.Requests())
	require.Equal(t, sessions.ModeAnonymous, f.service.WhoAmI().Mode)
}

func TestForgotPassword(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.service.ForgotPassword(context.Background(), testEmail))
	require.JSONEq(t, `{"email":"ada@example.com"}`, f.server.Requests()[0].Body)
}
