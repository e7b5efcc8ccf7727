package contact

import "github.com/srdpartners/site/pkg/cl/validation"

// Validate checks every field of in and reports all failures together.
// Company and phone are optional and never fail.
func Validate(in FormInput) ValidationErrors {
	var errs validation.ValidationErrors
	errs.Check(validation.RequiredString(string(FieldName), in.Name))
	errs.Check(validation.Email(string(FieldEmail), in.Email))
	errs.Check(validation.RequiredString(string(FieldSubject), string(in.Subject)))
	errs.Check(validation.RequiredString(string(FieldMessage), in.Message))

	out := make(ValidationErrors, len(errs))
	for _, e := range errs {
		out[Field(e.Field)] = ErrorKind(e.Rule)
	}
	return out
}
