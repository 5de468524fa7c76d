package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/jirafocus/internal/config"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, config.Settings) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	settings := config.Default()
	settings.Host = srv.URL
	settings.APIBasePath = "/rest/api/2"
	return srv, settings
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_GetIssue(t *testing.T) {
	_, settings := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"key": "PROJ-1",
			"fields": map[string]any{
				"summary": "Fix the thing",
				"status": map[string]any{
					"name":           "In Progress",
					"statusCategory": map[string]any{"key": "indeterminate", "colorName": "yellow"},
				},
			},
		})
	})

	issue, err := NewClient(settings).GetIssue(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "Fix the thing", issue.Fields.Summary)
	assert.Equal(t, "In Progress", issue.StatusName())
	assert.Equal(t, "yellow", issue.StatusColor())
}

func TestClient_APIError(t *testing.T) {
	_, settings := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
	})

	_, err := NewClient(settings).GetIssue(context.Background(), "NOPE-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "Issue does not exist")
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	_, settings := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewClient(settings).ServerInfo(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "jira request failed with status 502", apiErr.Error())
}

func TestClient_Authentication(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
		check  func(t *testing.T, r *http.Request)
	}{
		{
			name:   "open",
			mutate: func(*config.Settings) {},
			check: func(t *testing.T, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
		{
			name: "basic",
			mutate: func(s *config.Settings) {
				s.AuthenticationType = config.AuthBasic
				s.Username = "alice"
				s.Password = "s3cret"
			},
			check: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "alice", user)
				assert.Equal(t, "s3cret", pass)
			},
		},
		{
			name: "bearer token",
			mutate: func(s *config.Settings) {
				s.AuthenticationType = config.AuthBearerToken
				s.BearerToken = "tok-123"
				s.Username = "ignored"
			},
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, settings := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				tt.check(t, r)
				writeJSON(t, w, http.StatusOK, map[string]any{"version": "9.12.2"})
			})
			tt.mutate(&settings)

			_, err := NewClient(settings).ServerInfo(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestClient_Configure(t *testing.T) {
	var gotAuth string
	_, settings := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, map[string]any{"version": "9.0.0"})
	})

	client := NewClient(settings)
	_, err := client.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	settings.AuthenticationType = config.AuthBearerToken
	settings.BearerToken = "new-token"
	client.Configure(settings)

	_, err = client.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer new-token", gotAuth)
}

func TestClient_Search(t *testing.T) {
	_, settings := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, "project = PROJ", r.URL.Query().Get("jql"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"total":  2,
			"issues": []map[string]any{{"key": "PROJ-1"}, {"key": "PROJ-2"}},
		})
	})

	results, err := NewClient(settings).Search(context.Background(), "project = PROJ", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, results.Total)
	require.Len(t, results.Issues, 2)
	assert.Equal(t, "PROJ-2", results.Issues[1].Key)
}

func TestClient_DependentCaches(t *testing.T) {
	_, settings := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/field":
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"id": "summary", "name": "Summary", "custom": false},
				{"id": "customfield_10002", "name": "Story Points", "custom": true},
			})
		case "/rest/api/2/jql/autocompletedata":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"visibleFieldNames": []map[string]any{{"value": "project", "displayName": "project"}},
				"jqlReservedWords":  []string{"and", "or"},
			})
		default:
			http.NotFound(w, r)
		}
	})
	client := NewClient(settings)
	ctx := context.Background()

	assert.Empty(t, client.CustomFields())
	assert.Nil(t, client.AutocompleteData())

	require.NoError(t, client.UpdateCustomFieldsCache(ctx))
	require.NoError(t, client.UpdateJQLAutoCompleteCache(ctx))

	assert.Equal(t, map[string]string{"Story Points": "customfield_10002"}, client.CustomFields())
	require.NotNil(t, client.AutocompleteData())
	assert.Equal(t, []string{"and", "or"}, client.AutocompleteData().JQLReservedWords)
}

func TestCheckCompatibility(t *testing.T) {
	require.NoError(t, CheckCompatibility(&ServerInfo{Version: "9.12.2"}))
	require.NoError(t, CheckCompatibility(&ServerInfo{Version: "7.0.0"}))
	assert.ErrorIs(t, CheckCompatibility(&ServerInfo{Version: "6.4.14"}), ErrIncompatibleServer)
	assert.ErrorIs(t, CheckCompatibility(&ServerInfo{Version: "banana"}), ErrIncompatibleServer)
}
