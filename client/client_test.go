package client_test

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-elearn-client/api"
	"github.com/jrsteele09/go-elearn-client/client"
	"github.com/jrsteele09/go-elearn-client/diag"
	"github.com/jrsteele09/go-elearn-client/internal/apitest"
	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
	"github.com/jrsteele09/go-elearn-client/models"
	"github.com/jrsteele09/go-elearn-client/notify"
	"github.com/jrsteele09/go-elearn-client/sessions"
	sessionrepofakes "github.com/jrsteele09/go-elearn-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	coursesPath = "/course"
	refreshPath = "/user/refresh-token"
)

type testFixture struct {
	server   *apitest.Server
	tokens   *apitest.Tokens
	repo     *sessionrepofakes.FakeSessionRepo
	store    *sessions.Store
	notifier *notify.Recorder
	sink     *diag.Memory
	client   *client.Client

	traceLock sync.Mutex
	trace     []client.State
}

func setupTestFixture(t *testing.T, options ...client.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		server:   apitest.New(t),
		tokens:   apitest.NewTokens(),
		repo:     sessionrepofakes.NewFakeSessionRepo(),
		notifier: &notify.Recorder{},
		sink:     &diag.Memory{},
	}

	store, err := sessions.Load(context.Background(), f.repo)
	require.NoError(t, err)
	f.store = store

	f.server.Router.Get(refreshPath, f.tokens.RefreshHandler())
	f.server.Router.With(f.tokens.RequireUser).Get("/user/courses", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, http.StatusOK, []models.Course{{ID: "c-1", Title: "Go 101"}})
	})
	f.server.Router.With(f.tokens.RequireAdmin).Get("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, http.StatusOK, []models.User{{ID: "u-1"}})
	})

	opts := append([]client.Option{
		client.WithNotifier(f.notifier),
		client.WithDiagnostics(f.sink),
		client.WithAdminScopeHeader(apitest.AdminScopeHeader),
		client.WithTrace(func(_ string, s client.State) {
			f.traceLock.Lock()
			f.trace = append(f.trace, s)
			f.traceLock.Unlock()
		}),
	}, options...)
	f.client = client.New(f.server.URL, f.store, opts...)
	return f
}

func (f *testFixture) states() []client.State {
	f.traceLock.Lock()
	defer f.traceLock.Unlock()
	return append([]client.State(nil), f.trace...)
}

func (f *testFixture) loginUser(t *testing.T) (access, refresh string) {
	t.Helper()
	access, refresh = f.tokens.IssueUser()
	require.NoError(t, f.store.SetUser(context.Background(), models.User{ID: "u-1", Email: "ada@example.com"}, access, refresh))
	return access, refresh
}

func (f *testFixture) loginAdmin(t *testing.T) string {
	t.Helper()
	tok := f.tokens.IssueAdmin()
	require.NoError(t, f.store.SetAdmin(context.Background(), models.Admin{ID: "a-1"}, tok))
	return tok
}

func getCourses() client.Request {
	return client.Request{Method: http.MethodGet, Path: "/user/courses"}
}

func TestAnonymousRequestHasNoCredential(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Router.Get(coursesPath, func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, http.StatusOK, []models.Course{})
	})

	result := f.client.Do(context.Background(), client.Request{Path: coursesPath})
	require.True(t, result.OK())

	reqs := f.server.Matching(http.MethodGet, coursesPath)
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].Authorization)
	require.Empty(t, reqs[0].AdminScope)
	require.NotEmpty(t, reqs[0].RequestID)
}

func TestUserRequestCarriesAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	access, refresh := f.loginUser(t)

	result := f.client.Do(context.Background(), getCourses())
	require.True(t, result.OK())

	var courses []models.Course
	require.NoError(t, result.Decode(&courses))
	require.Equal(t, "Go 101", courses[0].Title)

	reqs := f.server.Matching(http.MethodGet, "/user/courses")
	require.Len(t, reqs, 1)
	require.Equal(t, access, reqs[0].Bearer())
	require.NotEqual(t, refresh, reqs[0].Bearer())
	require.Empty(t, reqs[0].AdminScope)
	require.Equal(t, []client.State{client.StateInit, client.StateSending, client.StateSucceeded}, f.states())
}

func TestAdminRequestCarriesScopeHeader(t *testing.T) {
	f := setupTestFixture(t)
	f.loginUser(t)
	adminToken := f.loginAdmin(t)

	result := f.client.Do(context.Background(), client.Request{Path: "/admin/users"})
	require.True(t, result.OK())

	reqs := f.server.Matching(http.MethodGet, "/admin/users")
	require.Len(t, reqs, 1)
	require.Equal(t, "true", reqs[0].AdminScope)
	require.Equal(t, adminToken, reqs[0].Bearer())
	require.False(t, f.repo.Has(sessions.KeyAccessToken))
	require.False(t, f.repo.Has(sessions.KeyRefreshToken))
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	f := setupTestFixture(t)
	oldAccess, refresh := f.loginUser(t)
	f.tokens.Expire(oldAccess)

	result := f.client.Do(context.Background(), getCourses())
	require.True(t, result.OK())

	var courses []models.Course
	require.NoError(t, result.Decode(&courses))
	require.Len(t, courses, 1)

	require.Equal(t, 1, f.server.Count(http.MethodGet, refreshPath))
	refreshReq := f.server.Matching(http.MethodGet, refreshPath)[0]
	require.Equal(t, refresh, refreshReq.Bearer())

	calls := f.server.Matching(http.MethodGet, "/user/courses")
	require.Len(t, calls, 2)
	require.Equal(t, oldAccess, calls[0].Bearer())

	s := f.store.Snapshot()
	require.NotEqual(t, oldAccess, s.AccessToken)
	require.Equal(t, s.AccessToken, calls[1].Bearer())
	require.Equal(t, refresh, s.RefreshToken)
	require.Equal(t, "u-1", s.User.ID)

	require.Equal(t, []client.State{
		client.StateInit,
		client.StateSending,
		client.StateFailedExpiry,
		client.StateRefreshSending,
		client.StateRefreshSucceeded,
		client.StateRetrySending,
		client.StateSucceeded,
	}, f.states())
	require.Empty(t, f.notifier.Errors())
}

func TestRetryFailureIsNotRefreshedAgain(t *testing.T) {
	f := setupTestFixture(t)
	f.loginUser(t)
	f.server.Router.Get("/always-expired", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, api.TokenExpiredMessage)
	})

	result := f.client.Do(context.Background(), client.Request{Path: "/always-expired"})
	require.False(t, result.OK())
	require.Equal(t, api.KindFailure, result.Kind)
	require.Equal(t, api.FailureExpired, result.FailureKind)
	require.Equal(t, http.StatusUnauthorized, result.StatusCode)

	require.Equal(t, 1, f.server.Count(http.MethodGet, refreshPath))
	require.Equal(t, 2, f.server.Count(http.MethodGet, "/always-expired"))
	require.Equal(t, sessions.ModeUser, f.store.Mode())

	states := f.states()
	require.Equal(t, client.StateFailed, states[len(states)-1])
}

func TestFailedRefreshDestroysSession(t *testing.T) {
	f := setupTestFixture(t)
	access, refresh := f.loginUser(t)
	f.tokens.Expire(access)
	f.tokens.RevokeRefresh(refresh)

	result := f.client.Do(context.Background(), getCourses())
	require.Equal(t, api.KindSessionExpired, result.Kind)
	require.True(t, result.Terminal())
	require.Equal(t, api.SessionExpiredMessage, result.Message)
	require.ErrorIs(t, result.Err(), apperrors.ErrSessionExpired)

	require.True(t, f.store.Snapshot().IsAnonymous())
	for _, key := range sessions.AllKeys {
		require.False(t, f.repo.Has(key), key)
	}
	require.Equal(t, 1, f.server.Count(http.MethodGet, "/user/courses"))
	require.Equal(t, []string{api.SessionExpiredMessage}, f.notifier.Errors())

	states := f.states()
	require.Equal(t, []client.State{client.StateRefreshFailed, client.StateSessionDestroyed}, states[len(states)-2:])
}

func TestRefreshResponseWithoutTokenDestroysSession(t *testing.T) {
	f := setupTestFixture(t)
	f.loginUser(t)
	f.server.Router.Get("/user/refresh-token-empty", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteData(w, http.StatusOK, map[string]string{})
	})
	f.server.Router.Get("/expired", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, api.TokenExpiredMessage)
	})
	c := client.New(f.server.URL, f.store, client.WithRefreshPath("/user/refresh-token-empty"))

	result := c.Do(context.Background(), client.Request{Path: "/expired"})
	require.Equal(t, api.KindSessionExpired, result.Kind)
	require.True(t, f.store.Snapshot().IsAnonymous())
}

func TestAdminExpiryIsPassedThrough(t *testing.T) {
	f := setupTestFixture(t)
	f.loginAdmin(t)
	f.server.Router.Get("/admin/expired", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, api.TokenExpiredMessage)
	})

	result := f.client.Do(context.Background(), client.Request{Path: "/admin/expired"})
	require.Equal(t, api.KindFailure, result.Kind)
	require.Equal(t, http.StatusUnauthorized, result.StatusCode)
	require.Equal(t, api.TokenExpiredMessage, result.Envelope.Message)
	require.Equal(t, 0, f.server.Count(http.MethodGet, refreshPath))
	require.True(t, f.store.Snapshot().IsAdmin())
	require.Equal(t, []string{api.TokenExpiredMessage}, f.notifier.Errors())
}

func TestOtherUnauthorizedMessageDoesNotRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.loginUser(t)
	f.server.Router.Get("/denied", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusUnauthorized, "Invalid token")
	})

	result := f.client.Do(context.Background(), client.Request{Path: "/denied"})
	require.Equal(t, api.FailureBusiness, result.FailureKind)
	require.Equal(t, 0, f.server.Count(http.MethodGet, refreshPath))
	require.Equal(t, sessions.ModeUser, f.store.Mode())
}

func TestBusinessErrorPassesThroughWithNotification(t *testing.T) {
	f := setupTestFixture(t)
	f.loginUser(t)
	f.server.Router.Post(coursesPath, func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusConflict, "Course title already exists")
	})
	f.server.Router.Delete(coursesPath+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		apitest.WriteError(w, http.StatusForbidden, "Insufficient role")
	})

	result := f.client.Do(context.Background(), client.Request{Method: http.MethodPost, Path: coursesPath, Body: models.CourseRequest{Title: "Go"}})
	require.Equal(t, api.FailureBusiness, result.FailureKind)
	require.Equal(t, "Course title already exists", result.Message)
	require.JSONEq(t, `{"code":409}`, string(result.Envelope.Error))
	require.ErrorIs(t, result.Err(), apperrors.ErrConflict)

	result = f.client.Do(context.Background(), client.Request{Method: http.MethodDelete, Path: coursesPath + "/c-1"})
	require.Equal(t, api.FailureForbidden, result.FailureKind)

	require.Equal(t, []string{"Course title already exists", "Insufficient role"}, f.notifier.Errors())
	require.Equal(t, []client.State{client.StateInit, client.StateSending, client.StateFailedNonExpiry}, f.states()[:3])
}

func TestSuccessStatusWithFailureEnvelope(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Router.Get("/soft-fail", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":false,"message":"Course not available"}`))
	})

	result := f.client.Do(context.Background(), client.Request{Path: "/soft-fail"})
	require.False(t, result.OK())
	require.Equal(t, "Course not available", result.Message)
}

func TestTransportFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Close()

	result := f.client.Do(context.Background(), getCourses())
	require.Equal(t, api.FailureTransport, result.FailureKind)
	require.ErrorIs(t, result.Err(), apperrors.ErrTransport)
	require.Len(t, f.notifier.Errors(), 1)
}

func TestEveryOutcomeIsMirroredToDiagnostics(t *testing.T) {
	f := setupTestFixture(t)
	access, _ := f.loginUser(t)
	f.tokens.Expire(access)

	require.True(t, f.client.Do(context.Background(), getCourses()).OK())

	var outcomes []diag.Outcome
	for _, e := range f.sink.Events() {
		outcomes = append(outcomes, e.Outcome)
	}
	require.Equal(t, []diag.Outcome{diag.OutcomeFailure, diag.OutcomeRefresh, diag.OutcomeSuccess}, outcomes)
	require.Equal(t, 2, f.sink.Events()[2].Attempt)
}

// gatedRefresh serves the refresh endpoint only once n requests have entered
// the refresh state, so that all of them are in flight together.
func gatedRefresh(f *testFixture, n int32) (client.Option, string) {
	gate := make(chan struct{})
	var waiting atomic.Int32
	refresh := f.tokens.RefreshHandler()
	f.server.Router.Get("/user/refresh-token-gated", func(w http.ResponseWriter, r *http.Request) {
		<-gate
		time.Sleep(50 * time.Millisecond)
		refresh(w, r)
	})
	trace := client.WithTrace(func(_ string, s client.State) {
		if s == client.StateRefreshSending && waiting.Add(1) == n {
			close(gate)
		}
	})
	return trace, "/user/refresh-token-gated"
}

func runConcurrently(c *client.Client, n int) []api.Result {
	var wg sync.WaitGroup
	results := make([]api.Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Do(context.Background(), getCourses())
		}(i)
	}
	wg.Wait()
	return results
}

func TestConcurrentExpiryCoalescesRefresh(t *testing.T) {
	const n = 5
	f := setupTestFixture(t)
	trace, path := gatedRefresh(f, n)
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path), trace)

	access, _ := f.loginUser(t)
	f.tokens.Expire(access)

	results := runConcurrently(c, n)

	require.Equal(t, 1, f.server.Count(http.MethodGet, path))
	require.Equal(t, 2*n, f.server.Count(http.MethodGet, "/user/courses"))
	for _, r := range results {
		require.True(t, r.OK())
	}
}

func TestIndependentRefreshPerRequest(t *testing.T) {
	const n = 3
	f := setupTestFixture(t)
	trace, path := gatedRefresh(f, n)
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path), client.WithIndependentRefresh(), trace)

	access, _ := f.loginUser(t)
	f.tokens.Expire(access)

	runConcurrently(c, n)

	require.Equal(t, n, f.server.Count(http.MethodGet, path))
	require.Equal(t, 2*n, f.server.Count(http.MethodGet, "/user/courses"))
	require.Equal(t, sessions.ModeUser, f.store.Mode())
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1/api/")
	f := setupTestFixture(t)
	c := client.NewFromConfig(configFixture(), f.store)
	require.Same(t, f.store, c.Store())
}

// blockingRefresh serves the refresh endpoint only after release is called.
// arrived receives once per refresh call as it reaches the backend.
func blockingRefresh(t *testing.T, f *testFixture) (path string, arrived <-chan struct{}, release func()) {
	t.Helper()
	hits := make(chan struct{}, 16)
	gate := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)

	refresh := f.tokens.RefreshHandler()
	path = "/user/refresh-token-blocking"
	f.server.Router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		<-gate
		refresh(w, r)
	})
	return path, hits, release
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func TestCancelledCallerLeavesSharedRefreshRunning(t *testing.T) {
	f := setupTestFixture(t)
	path, arrived, release := blockingRefresh(t, f)

	var entered atomic.Int32
	bothRefreshing := make(chan struct{})
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path), client.WithTrace(func(_ string, s client.State) {
		if s == client.StateRefreshSending && entered.Add(1) == 2 {
			close(bothRefreshing)
		}
	}))

	access, refresh := f.loginUser(t)
	f.tokens.Expire(access)

	cancelCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelled := make(chan api.Result, 1)
	live := make(chan api.Result, 1)
	go func() { cancelled <- c.Do(cancelCtx, getCourses()) }()
	go func() { live <- c.Do(context.Background(), getCourses()) }()

	waitFor(t, bothRefreshing)
	waitFor(t, arrived)
	time.Sleep(50 * time.Millisecond)

	cancel()
	first := <-cancelled
	require.Equal(t, api.KindFailure, first.Kind)
	require.Equal(t, api.FailureTransport, first.FailureKind)
	require.ErrorIs(t, first.Err(), apperrors.ErrTransport)
	require.True(t, f.store.Snapshot().IsUser())

	release()
	second := <-live
	require.True(t, second.OK())

	s := f.store.Snapshot()
	require.True(t, s.IsUser())
	require.NotEqual(t, access, s.AccessToken)
	require.Equal(t, refresh, s.RefreshToken)
	require.Equal(t, 1, f.server.Count(http.MethodGet, path))
	require.NotContains(t, f.notifier.Errors(), api.SessionExpiredMessage)
}

func TestCancelledIndependentRefreshKeepsSession(t *testing.T) {
	f := setupTestFixture(t)
	path, arrived, _ := blockingRefresh(t, f)
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path), client.WithIndependentRefresh())

	access, _ := f.loginUser(t)
	f.tokens.Expire(access)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan api.Result, 1)
	go func() { done <- c.Do(ctx, getCourses()) }()

	waitFor(t, arrived)
	cancel()
	result := <-done

	require.Equal(t, api.FailureTransport, result.FailureKind)
	s := f.store.Snapshot()
	require.True(t, s.IsUser())
	require.Equal(t, access, s.AccessToken)
}

func TestLateRefreshDoesNotTouchNewerSession(t *testing.T) {
	f := setupTestFixture(t)
	path, arrived, release := blockingRefresh(t, f)
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path))

	oldAccess, _ := f.loginUser(t)
	f.tokens.Expire(oldAccess)

	done := make(chan api.Result, 1)
	go func() { done <- c.Do(context.Background(), getCourses()) }()
	waitFor(t, arrived)

	require.NoError(t, f.store.Clear(context.Background()))
	newAccess, newRefresh := f.loginUser(t)
	release()
	result := <-done

	require.Equal(t, api.KindFailure, result.Kind)
	require.Equal(t, api.FailureExpired, result.FailureKind)
	s := f.store.Snapshot()
	require.Equal(t, newAccess, s.AccessToken)
	require.Equal(t, newRefresh, s.RefreshToken)
	v, err := f.repo.Get(context.Background(), sessions.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, newAccess, v)
}

func TestLateFailedRefreshDoesNotClearNewerSession(t *testing.T) {
	f := setupTestFixture(t)
	path, arrived, release := blockingRefresh(t, f)
	c := client.New(f.server.URL, f.store, client.WithRefreshPath(path))

	oldAccess, oldRefresh := f.loginUser(t)
	f.tokens.Expire(oldAccess)
	f.tokens.RevokeRefresh(oldRefresh)

	done := make(chan api.Result, 1)
	go func() { done <- c.Do(context.Background(), getCourses()) }()
	waitFor(t, arrived)

	require.NoError(t, f.store.Clear(context.Background()))
	newAccess, _ := f.loginUser(t)
	release()
	result := <-done

	require.Equal(t, api.KindFailure, result.Kind)
	require.NotEqual(t, api.KindSessionExpired, result.Kind)
	s := f.store.Snapshot()
	require.True(t, s.IsUser())
	require.Equal(t, newAccess, s.AccessToken)
	require.True(t, f.repo.Has(sessions.KeyRefreshToken))
}
