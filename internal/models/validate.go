package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ErrNameRequired is returned when locking a profile without a name.
var ErrNameRequired = errors.New("name is required")

// Validate checks a save record's field ranges. Used on imported backups,
// where the document did not come from this engine.
func (s *SaveState) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("invalid save: %s", describe(err))
	}
	if s.ProfileLocked && s.Profile.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateForLock checks that a profile can be locked.
func (p *Profile) ValidateForLock() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if err := validatorInstance().Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %s", describe(err))
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs so internal
// struct names don't leak to API clients.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(e.Field()), e.Tag()))
	}
	return strings.Join(parts, ", ")
}
