package jira

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleServer is returned when the server version is below MinServerVersion.
var ErrIncompatibleServer = errors.New("incompatible Jira server version")

// Issue is the subset of a Jira issue the renderers use.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the standard fields plus any custom ones.
type IssueFields struct {
	Summary   string     `json:"summary"`
	Status    *Status    `json:"status,omitempty"`
	IssueType *IssueType `json:"issuetype,omitempty"`
	Priority  *Priority  `json:"priority,omitempty"`
	Assignee  *User      `json:"assignee,omitempty"`
	Reporter  *User      `json:"reporter,omitempty"`
	Created   string     `json:"created,omitempty"`
	Updated   string     `json:"updated,omitempty"`
}

// Status is an issue workflow status.
type Status struct {
	Name           string          `json:"name"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory groups statuses; ColorName drives status badges.
type StatusCategory struct {
	Key       string `json:"key"`
	ColorName string `json:"colorName"`
	Name      string `json:"name"`
}

// IssueType is the issue type.
type IssueType struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Priority is the issue priority.
type Priority struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// User is an assignee or reporter.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// StatusName returns the status name or an empty string.
func (i *Issue) StatusName() string {
	if i == nil || i.Fields.Status == nil {
		return ""
	}
	return i.Fields.Status.Name
}

// StatusColor returns the status category color or an empty string.
func (i *Issue) StatusColor() string {
	if i == nil || i.Fields.Status == nil || i.Fields.Status.StatusCategory == nil {
		return ""
	}
	return i.Fields.Status.StatusCategory.ColorName
}

// SearchResults is a page of a JQL search.
type SearchResults struct {
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Total      int      `json:"total"`
	Issues     []*Issue `json:"issues"`
}

// Field is a field definition from the /field endpoint.
type Field struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Custom      bool     `json:"custom"`
	ClauseNames []string `json:"clauseNames"`
}

// AutocompleteData is the payload of /jql/autocompletedata.
type AutocompleteData struct {
	VisibleFieldNames    []AutocompleteField    `json:"visibleFieldNames"`
	VisibleFunctionNames []AutocompleteFunction `json:"visibleFunctionNames"`
	JQLReservedWords     []string               `json:"jqlReservedWords"`
}

// AutocompleteField is a JQL field suggestion.
type AutocompleteField struct {
	Value       string   `json:"value"`
	DisplayName string   `json:"displayName"`
	Operators   []string `json:"operators"`
	Types       []string `json:"types"`
}

// AutocompleteFunction is a JQL function suggestion.
type AutocompleteFunction struct {
	Value       string   `json:"value"`
	DisplayName string   `json:"displayName"`
	Types       []string `json:"types"`
}

// ServerInfo is the payload of /serverInfo.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"`
	ServerTitle    string `json:"serverTitle"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Messages   []string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	msgs := append([]string{}, e.Messages...)
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("jira request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("jira request failed with status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// errorBody is Jira's error response envelope.
type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
