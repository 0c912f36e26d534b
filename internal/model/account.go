package model

import (
	"errors"
	"strings"
	"time"
)

var ErrIncompleteAccount = errors.New("model: credential token is missing required fields")

// Account is the credential record parsed from the portal's token XML. All
// seven fields must be present before it may be persisted; there is no
// partial-credential state.
type Account struct {
	Secret    string    `json:"secret"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	GUID      string    `json:"guid"`
	Role      string    `json:"role"`
	TokenDate time.Time `json:"tokenDate"`
}

func (a Account) Validate() error {
	required := []string{a.Secret, a.Username, a.FullName, a.Email, a.GUID, a.Role}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteAccount
		}
	}
	if a.TokenDate.IsZero() {
		return ErrIncompleteAccount
	}
	return nil
}

// Session is everything the client needs to issue authenticated calls.
// Account stays nil until the credential bootstrap completes; DeviceID and
// InstanceURL survive logout.
type Session struct {
	InstanceURL string
	DeviceID    string
	Account     *Account
}

// Authenticated reports whether the session can sign portal requests.
func (s Session) Authenticated() bool {
	return s.InstanceURL != "" && s.DeviceID != "" && s.Account != nil && s.Account.Secret != ""
}
