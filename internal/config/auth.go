package config

import (
	"fmt"
	"strings"
)

// AuthenticationType selects how requests to the Jira server authenticate.
type AuthenticationType string

const (
	// AuthOpen sends anonymous requests.
	AuthOpen AuthenticationType = "OPEN"
	// AuthBasic uses HTTP basic authentication with Username and Password.
	AuthBasic AuthenticationType = "BASIC"
	// AuthBearerToken sends BearerToken as an OAuth2 bearer token.
	AuthBearerToken AuthenticationType = "BEARER_TOKEN"
)

// AuthenticationTypes lists the supported modes in display order.
func AuthenticationTypes() []AuthenticationType {
	return []AuthenticationType{AuthOpen, AuthBasic, AuthBearerToken}
}

// Description returns the label shown to users.
func (a AuthenticationType) Description() string {
	switch a {
	case AuthOpen:
		return "Open"
	case AuthBasic:
		return "Basic Authentication"
	case AuthBearerToken:
		return "Bearer Token"
	default:
		return string(a)
	}
}

// Valid reports whether a is a supported mode.
func (a AuthenticationType) Valid() bool {
	switch a {
	case AuthOpen, AuthBasic, AuthBearerToken:
		return true
	default:
		return false
	}
}

// ParseAuthenticationType accepts a mode name case-insensitively, with
// dashes or underscores ("bearer-token").
func ParseAuthenticationType(s string) (AuthenticationType, error) {
	normalized := AuthenticationType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !normalized.Valid() {
		return "", fmt.Errorf("%w: %q (expected one of OPEN, BASIC, BEARER_TOKEN)", ErrInvalidAuthType, s)
	}
	return normalized, nil
}
