package sessions

import (
	"github.com/jrsteele09/go-elearn-client/models"
)

type Mode string

const (
	ModeAnonymous Mode = "anonymous"
	ModeUser      Mode = "user"
	ModeAdmin     Mode = "admin"
)

// Persisted keys. Absence of both token keys means anonymous.
const (
	KeyUser         = "user"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyAdmin        = "admin"
	KeyAdminToken   = "adminToken"
)

// AllKeys lists every key the store owns
var AllKeys = []string{KeyUser, KeyAccessToken, KeyRefreshToken, KeyAdmin, KeyAdminToken}

// Session is a value snapshot of the current credentials.
// In user mode only User/AccessToken/RefreshToken are set, in admin mode only
// Admin/AdminToken are set, and in anonymous mode nothing is.
type Session struct {
	Mode         Mode
	User         *models.User
	AccessToken  string
	RefreshToken string
	Admin        *models.Admin
	AdminToken   string
}

func (s Session) IsUser() bool {
	return s.Mode == ModeUser
}

func (s Session) IsAdmin() bool {
	return s.Mode == ModeAdmin
}

func (s Session) IsAnonymous() bool {
	return s.Mode == ModeAnonymous || s.Mode == ""
}

// BearerToken returns the credential a normal request should carry
func (s Session) BearerToken() string {
	switch s.Mode {
	case ModeAdmin:
		return s.AdminToken
	case ModeUser:
		return s.AccessToken
	}
	return ""
}

func anonymous() Session {
	return Session{Mode: ModeAnonymous}
}
