package token

import (
	"net/http"

	"golang.org/x/oauth2"
)

// Bearer wraps a raw token as an oauth2.Token. The expiry is filled from the
// JWT exp claim when the token is a readable JWT; opaque tokens have no expiry.
func Bearer(rawToken string) *oauth2.Token {
	t := &oauth2.Token{AccessToken: rawToken, TokenType: "Bearer"}
	if claims, err := Inspect(rawToken); err == nil {
		t.Expiry = claims.ExpiresAt
	}
	return t
}

// Attach sets the Authorization header for rawToken, doing nothing when it is empty
func Attach(r *http.Request, rawToken string) {
	if rawToken == "" {
		return
	}
	Bearer(rawToken).SetAuthHeader(r)
}
