package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/jirafocus/internal/duration"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	ttl, err := s.TTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Settings)
		wantKeys []string
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{
			name:     "missing host",
			mutate:   func(s *Settings) { s.Host = "" },
			wantKeys: []string{KeyHost},
		},
		{
			name:     "host not a url",
			mutate:   func(s *Settings) { s.Host = "not a url" },
			wantKeys: []string{KeyHost},
		},
		{
			name:     "unknown auth type",
			mutate:   func(s *Settings) { s.AuthenticationType = "KERBEROS" },
			wantKeys: []string{KeyAuthenticationType},
		},
		{
			name:     "basic needs username",
			mutate:   func(s *Settings) { s.AuthenticationType = AuthBasic },
			wantKeys: []string{KeyUsername},
		},
		{
			name: "basic with username",
			mutate: func(s *Settings) {
				s.AuthenticationType = AuthBasic
				s.Username = "alice"
			},
		},
		{
			name:     "bearer needs token",
			mutate:   func(s *Settings) { s.AuthenticationType = AuthBearerToken },
			wantKeys: []string{KeyBearerToken},
		},
		{
			name: "open ignores credentials",
			mutate: func(s *Settings) {
				s.Username = ""
				s.BearerToken = ""
			},
		},
		{
			name:     "relative api path",
			mutate:   func(s *Settings) { s.APIBasePath = "rest/api/2" },
			wantKeys: []string{KeyAPIBasePath},
		},
		{
			name:     "bad cache time",
			mutate:   func(s *Settings) { s.CacheTime = "bad" },
			wantKeys: []string{KeyCacheTime},
		},
		{
			name:     "zero cache time",
			mutate:   func(s *Settings) { s.CacheTime = "0s" },
			wantKeys: []string{KeyCacheTime},
		},
		{
			name: "several failures",
			mutate: func(s *Settings) {
				s.Host = ""
				s.CacheTime = ""
			},
			wantKeys: []string{KeyHost, KeyCacheTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()

			if len(tt.wantKeys) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSettings)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			for _, key := range tt.wantKeys {
				assert.Contains(t, vErr.Fields, key)
			}
			assert.Len(t, vErr.Fields, len(tt.wantKeys))
		})
	}
}

func TestSettings_ValidateCacheTimeCarriesParseError(t *testing.T) {
	s := Default()
	s.CacheTime = "fortnightly"
	err := s.Validate()
	assert.ErrorIs(t, err, duration.ErrInvalidDuration)
}

func TestSettings_GetSet(t *testing.T) {
	s := Default()

	require.NoError(t, s.Set(KeyAuthenticationType, "bearer-token"))
	assert.Equal(t, AuthBearerToken, s.AuthenticationType)

	require.NoError(t, s.Set(KeyDarkMode, "true"))
	assert.True(t, s.DarkMode)

	require.NoError(t, s.Set(KeyHost, "  https://jira.example.com "))
	assert.Equal(t, "https://jira.example.com", s.Host)

	assert.ErrorIs(t, s.Set(KeyAuthenticationType, "ntlm"), ErrInvalidAuthType)
	assert.Error(t, s.Set(KeyDarkMode, "sometimes"))
	assert.ErrorIs(t, s.Set("colour", "x"), ErrUnknownKey)

	for _, key := range Keys() {
		_, err := s.Get(key)
		require.NoError(t, err, key)
	}
	_, err := s.Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSettings_Masked(t *testing.T) {
	s := Default()
	s.Password = "hunter2"
	s.BearerToken = ""

	masked := s.Masked()
	assert.Equal(t, "********", masked[KeyPassword])
	assert.Equal(t, "", masked[KeyBearerToken])
	assert.Equal(t, DefaultHost, masked[KeyHost])
	assert.Len(t, masked, len(Keys()))
}

func TestSettings_APIURL(t *testing.T) {
	s := Default()
	s.Host = "https://jira.example.com/"
	s.APIBasePath = "/rest/api/2/"
	assert.Equal(t, "https://jira.example.com/rest/api/2/issue/PROJ-1", s.APIURL("/issue/PROJ-1"))
}

func TestSamePersisted(t *testing.T) {
	a := Default()
	b := Default()
	b.StatusColorCache["Done"] = "green"
	assert.True(t, samePersisted(a, b))

	b.DarkMode = true
	assert.False(t, samePersisted(a, b))
}

func TestAuthenticationType(t *testing.T) {
	assert.Equal(t, "Basic Authentication", AuthBasic.Description())
	assert.Equal(t, "Open", AuthOpen.Description())
	assert.Equal(t, "Bearer Token", AuthBearerToken.Description())
	assert.Len(t, AuthenticationTypes(), 3)

	got, err := ParseAuthenticationType(" basic ")
	require.NoError(t, err)
	assert.Equal(t, AuthBasic, got)
}
