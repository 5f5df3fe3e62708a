package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"loan-predictor/domain"
)

// ErrInvalidApplicant wraps every rejection made by ApplicantValidator.
var ErrInvalidApplicant = errors.New("invalid applicant")

// ApplicantValidator rejects applicants whose values fall outside the form's domains.
// The encoder itself stays lenient; this is only used when strict validation is on.
type ApplicantValidator struct {
	validate *validator.Validate
}

func NewApplicantValidator() *ApplicantValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("loanterm", floatOneOf(domain.LoanTermOptions))
	_ = v.RegisterValidation("credithistory", floatOneOf(domain.CreditHistoryOptions))

	return &ApplicantValidator{validate: v}
}

func (a *ApplicantValidator) Validate(input domain.ApplicantInput) error {
	err := a.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidApplicant, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s=%v", fe.Field(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidApplicant, strings.Join(fields, ", "))
}

func floatOneOf(allowed []float64) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().Float()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}
