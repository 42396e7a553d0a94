package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the response of the authorization endpoint for an implicit grant.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	AuthAt      int64  `json:"auth_at,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// OAuth2 converts the token for use with an oauth2 token source.
func (t *Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
	}
	if tok.TokenType == "" {
		tok.TokenType = "bearer"
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// Client is a registered OAuth client.
type Client struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
	ImageURI    string `json:"image_uri,omitempty"`
	Secret      string `json:"secret,omitempty"`
	Whitelisted *bool  `json:"whitelisted,omitempty"`
	CanGrant    *bool  `json:"can_grant,omitempty"`
}

type clientList struct {
	Clients []Client `json:"clients"`
}

type authorizationRequest struct {
	Assertion    string `json:"assertion"`
	Scope        string `json:"scope"`
	ResponseType string `json:"response_type"`
	State        string `json:"state"`
	ClientID     string `json:"client_id"`
}
