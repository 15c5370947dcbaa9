package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field ranges and the relations between fields.
// All failures are reported together in an AggregateError.
func (c *Config) Validate() error {
	var errs []error

	if err := validatorInstance().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{
				Key:    fe.Namespace(),
				Reason: "failed " + fe.Tag() + ruleParam(fe.Param()),
				Value:  fe.Value(),
			})
		}
	}

	errs = append(errs, c.crossCheck()...)

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func ruleParam(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

func (c *Config) crossCheck() []error {
	var errs []error
	if c.Goals > 0 && c.Rooms == 0 {
		errs = append(errs, &ValidationError{Key: "goals", Reason: "goals need at least one room", Value: c.Goals})
	}
	if n := len(c.InstanceFrequencies); n > 0 && n != len(c.InstanceSeeds) {
		errs = append(errs, &ValidationError{
			Key:    "instance_frequencies",
			Reason: fmt.Sprintf("expected %d entries, one per instance seed", len(c.InstanceSeeds)),
			Value:  n,
		})
	}
	if len(c.InstanceSeeds) > 0 && c.InstanceIndex >= len(c.InstanceSeeds) {
		errs = append(errs, &ValidationError{Key: "instance_index", Reason: "out of range", Value: c.InstanceIndex})
	}
	if len(c.InstanceSeeds) == 0 && c.InstanceIndex != 0 {
		errs = append(errs, &ValidationError{Key: "instance_index", Reason: "set without instance seeds", Value: c.InstanceIndex})
	}
	if len(c.InstanceSeeds) > 1 && c.MapType != "" && c.MapType != "meta" {
		errs = append(errs, &ValidationError{Key: "map_type", Reason: "several instances need a meta map", Value: c.MapType})
	}
	return errs
}
