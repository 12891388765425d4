package domain

import "errors"

// Validation errors returned by the calculation pipeline.
var (
	ErrProgramNotSelected         = errors.New("choose credit program")
	ErrMultipleProgramsSelected   = errors.New("choose only 1 credit program")
	ErrInsufficientInitialPayment = errors.New("the initial payment should be more")
	ErrInvalidParameters          = errors.New("invalid loan parameters")
)

// Registry and cache errors.
var (
	ErrEmptyRegistry = errors.New("empty cache")
	ErrRegistryFull  = errors.New("registry is full")
	ErrCacheMiss     = errors.New("mortgage not found")
)

// Code returns a stable machine readable code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProgramNotSelected):
		return "program_not_selected"
	case errors.Is(err, ErrMultipleProgramsSelected):
		return "multiple_programs_selected"
	case errors.Is(err, ErrInsufficientInitialPayment):
		return "insufficient_initial_payment"
	case errors.Is(err, ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, ErrEmptyRegistry):
		return "empty_registry"
	case errors.Is(err, ErrRegistryFull):
		return "registry_full"
	case errors.Is(err, ErrCacheMiss):
		return "not_found"
	}
	return "internal"
}
