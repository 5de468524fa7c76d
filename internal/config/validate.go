package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/rshade/jirafocus/internal/duration"
)

// ValidationError lists the settings fields that failed validation, keyed
// by settings key. It unwraps to ErrInvalidSettings and to every field
// error, so errors.Is(err, duration.ErrInvalidDuration) identifies a bad
// cache time.
type ValidationError struct {
	Fields map[string]error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Fields[k]))
	}
	return fmt.Sprintf("%v: %s", ErrInvalidSettings, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrInvalidSettings}
	for _, err := range e.Fields {
		errs = append(errs, err)
	}
	return errs
}

// Validate checks the record. Credentials are only required for the
// active authentication mode.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Host, validation.Required, is.URL),
		validation.Field(&s.AuthenticationType,
			validation.Required,
			validation.In(AuthOpen, AuthBasic, AuthBearerToken).Error("must be one of OPEN, BASIC, BEARER_TOKEN"),
		),
		validation.Field(&s.Username,
			validation.When(s.AuthenticationType == AuthBasic, validation.Required.Error("is required for BASIC authentication")),
		),
		validation.Field(&s.BearerToken,
			validation.When(s.AuthenticationType == AuthBearerToken, validation.Required.Error("is required for BEARER_TOKEN authentication")),
		),
		validation.Field(&s.APIBasePath, validation.Required, validation.By(absolutePath)),
		validation.Field(&s.CacheTime, validation.Required, validation.By(positiveDuration)),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: fieldErrs}
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
}

func absolutePath(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, "/") {
		return errors.New("must start with /")
	}
	return nil
}

func positiveDuration(value interface{}) error {
	s, _ := value.(string)
	_, err := duration.ParsePositive(s)
	return err
}
