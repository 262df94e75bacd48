package auth

import "github.com/smkpro/smkpro-backend/pkg/db/models"

// RegisterInput carries the signup form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginInput carries the login form plus the anonymous session the caller
// was browsing under, which is what gets merged into the user's cart.
type LoginInput struct {
	Email     string
	Password  string
	SessionID string
	IP        string
}

// TokenPair is the credential set issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is the authenticated user plus their tokens.
type LoginResult struct {
	User   models.User `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}
