package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mortgage-service/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go ones
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	ObjectCost     *float64                `json:"object_cost" validate:"required,gte=0"`
	InitialPayment *float64                `json:"initial_payment" validate:"required,gte=0"`
	Months         uint8                   `json:"months" validate:"required,gte=1"`
	Program        domain.ProgramSelection `json:"program"`
}

// Parse checks the request and converts it to domain values. The program
// flags are checked first so a bad selection is always reported as such.
func (r ExecuteRequest) Parse() (domain.LoanParameters, domain.ProgramSelection, error) {
	if _, err := r.Program.Resolve(); err != nil {
		return domain.LoanParameters{}, domain.ProgramSelection{}, err
	}
	if err := validate.Struct(r); err != nil {
		return domain.LoanParameters{}, domain.ProgramSelection{}, &requestError{err: describe(err)}
	}

	params := domain.LoanParameters{
		ObjectCost:     *r.ObjectCost,
		InitialPayment: *r.InitialPayment,
		Months:         r.Months,
	}
	return params, r.Program, nil
}

// requestError is a malformed or invalid request body.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
