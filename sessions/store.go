package sessions

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
	"github.com/jrsteele09/go-elearn-client/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store owns the session. Readers take snapshots; only login/logout flows and
// the token refresh path write to it.
type Store struct {
	repo    Repo
	current Session
	lock    sync.RWMutex
}

// Load rehydrates the session from repo. A repo holding both user and admin
// credentials violates mutual exclusivity and is reset to anonymous.
func Load(ctx context.Context, repo Repo) (*Store, error) {
	s := &Store{repo: repo, current: anonymous()}

	values := make(map[string]string, len(AllKeys))
	for _, key := range AllKeys {
		v, err := repo.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}
			return nil, errors.Wrap(err, "sessions.Load Get "+key)
		}
		values[key] = v
	}

	hasUser := values[KeyAccessToken] != ""
	hasAdmin := values[KeyAdminToken] != ""

	switch {
	case hasUser && hasAdmin:
		log.Warn().Msg("stored session holds both user and admin credentials, clearing")
		if err := repo.Delete(ctx, AllKeys...); err != nil {
			return nil, errors.Wrap(err, "sessions.Load Delete")
		}
	case hasAdmin:
		admin := &models.Admin{}
		if raw := values[KeyAdmin]; raw != "" {
			if err := json.Unmarshal([]byte(raw), admin); err != nil {
				return nil, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode admin profile: %v", err)
			}
		}
		s.current = Session{Mode: ModeAdmin, Admin: admin, AdminToken: values[KeyAdminToken]}
	case hasUser:
		user := &models.User{}
		if raw := values[KeyUser]; raw != "" {
			if err := json.Unmarshal([]byte(raw), user); err != nil {
				return nil, apperrors.Wrapf(apperrors.ErrInvalidSession, "decode user profile: %v", err)
			}
		}
		s.current = Session{
			Mode:         ModeUser,
			User:         user,
			AccessToken:  values[KeyAccessToken],
			RefreshToken: values[KeyRefreshToken],
		}
	}
	return s, nil
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() Session {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copySession(s.current)
}

func (s *Store) Mode() Mode {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.Mode
}

// SetUser starts a user session and clears any admin credentials
func (s *Store) SetUser(ctx context.Context, user models.User, accessToken, refreshToken string) error {
	if accessToken == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "empty access token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "Store.SetUser Marshal")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repo.Delete(ctx, KeyAdmin, KeyAdminToken); err != nil {
		return errors.Wrap(err, "Store.SetUser Delete")
	}
	for key, value := range map[string]string{
		KeyUser:         string(raw),
		KeyAccessToken:  accessToken,
		KeyRefreshToken: refreshToken,
	} {
		if err := s.repo.Set(ctx, key, value); err != nil {
			return errors.Wrap(err, "Store.SetUser Set "+key)
		}
	}
	s.current = Session{Mode: ModeUser, User: &user, AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

// SetAdmin starts an admin session and clears any user credentials
func (s *Store) SetAdmin(ctx context.Context, admin models.Admin, adminToken string) error {
	if adminToken == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "empty admin token")
	}
	raw, err := json.Marshal(admin)
	if err != nil {
		return errors.Wrap(err, "Store.SetAdmin Marshal")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.repo.Delete(ctx, KeyUser, KeyAccessToken, KeyRefreshToken); err != nil {
		return errors.Wrap(err, "Store.SetAdmin Delete")
	}
	if err := s.repo.Set(ctx, KeyAdmin, string(raw)); err != nil {
		return errors.Wrap(err, "Store.SetAdmin Set admin")
	}
	if err := s.repo.Set(ctx, KeyAdminToken, adminToken); err != nil {
		return errors.Wrap(err, "Store.SetAdmin Set adminToken")
	}
	s.current = Session{Mode: ModeAdmin, Admin: &admin, AdminToken: adminToken}
	return nil
}

// SetAccessToken replaces the access token of the user session holding
// refreshToken. The refresh token and identity are left untouched. When the
// session ended or was replaced meanwhile nothing is written and
// ErrSessionChanged is returned.
func (s *Store) SetAccessToken(ctx context.Context, refreshToken, accessToken string) error {
	if accessToken == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "empty access token")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.holdsLocked(refreshToken) {
		return apperrors.ErrSessionChanged
	}
	if err := s.repo.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return errors.Wrap(err, "Store.SetAccessToken Set")
	}
	s.current.AccessToken = accessToken
	return nil
}

// Clear destroys the session, reverting to anonymous. The in-memory session is
// reset even when the repo delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.clearLocked(ctx)
}

// ClearIfCurrent destroys the session only while it is still the user session
// holding refreshToken, reporting whether it did.
func (s *Store) ClearIfCurrent(ctx context.Context, refreshToken string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.holdsLocked(refreshToken) {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Store) holdsLocked(refreshToken string) bool {
	return s.current.Mode == ModeUser && s.current.RefreshToken == refreshToken
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.current = anonymous()
	if err := s.repo.Delete(ctx, AllKeys...); err != nil {
		return errors.Wrap(err, "Store.Clear Delete")
	}
	return nil
}

func copySession(in Session) Session {
	out := in
	if in.User != nil {
		u := *in.User
		u.EnrolledCourses = append([]string(nil), in.User.EnrolledCourses...)
		out.User = &u
	}
	if in.Admin != nil {
		a := *in.Admin
		out.Admin = &a
	}
	return out
}
