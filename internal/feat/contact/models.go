package contact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnknownField is returned for a field name outside the form's field set.
	ErrUnknownField = errors.New("unknown contact form field")

	// ErrLocked is returned when the form is not editable (sending or success).
	ErrLocked = errors.New("contact form is locked")

	// ErrInvalid is returned by Submit when validation fails.
	ErrInvalid = errors.New("contact form has validation errors")

	// ErrNotSuccess is returned by ResetToIdle outside the success and error views.
	ErrNotSuccess = errors.New("contact form has nothing to reset")

	// ErrClosed is returned by every operation after teardown.
	ErrClosed = errors.New("contact form is closed")
)

// Field identifies one input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldCompany Field = "company"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Fields lists every field in display order.
var Fields = []Field{FieldName, FieldCompany, FieldEmail, FieldPhone, FieldSubject, FieldMessage}

// ParseField maps a posted field name onto a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Subject is the inquiry topic. The zero value means no topic selected.
type Subject string

const (
	SubjectNone       Subject = ""
	SubjectAccounting Subject = "accounting"
	SubjectConsulting Subject = "consulting"
	SubjectAudit      Subject = "audit"
	SubjectPatrimony  Subject = "patrimony"
	SubjectCreation   Subject = "creation"
	SubjectHR         Subject = "hr"
	SubjectOther      Subject = "other"
)

// Subjects lists the selectable topics in display order.
var Subjects = []Subject{
	SubjectAccounting,
	SubjectConsulting,
	SubjectAudit,
	SubjectPatrimony,
	SubjectCreation,
	SubjectHR,
	SubjectOther,
}

// subjectAliases are the French slugs older pages post.
var subjectAliases = map[string]Subject{
	"comptabilite": SubjectAccounting,
	"conseil":      SubjectConsulting,
	"patrimoine":   SubjectPatrimony,
	"rh":           SubjectHR,
	"autre":        SubjectOther,
}

// ParseSubject maps a posted value onto a Subject. Unrecognised values,
// including the empty string, yield SubjectNone.
func ParseSubject(value string) Subject {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, s := range Subjects {
		if string(s) == value {
			return s
		}
	}
	if s, ok := subjectAliases[value]; ok {
		return s
	}
	return SubjectNone
}

// FormInput holds everything the visitor typed.
type FormInput struct {
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Subject Subject `json:"subject"`
	Message string  `json:"message"`
}

// Value returns the current value of field.
func (in FormInput) Value(field Field) string {
	switch field {
	case FieldName:
		return in.Name
	case FieldCompany:
		return in.Company
	case FieldEmail:
		return in.Email
	case FieldPhone:
		return in.Phone
	case FieldSubject:
		return string(in.Subject)
	case FieldMessage:
		return in.Message
	}
	return ""
}

func (in *FormInput) set(field Field, value string) {
	switch field {
	case FieldName:
		in.Name = value
	case FieldCompany:
		in.Company = value
	case FieldEmail:
		in.Email = value
	case FieldPhone:
		in.Phone = value
	case FieldSubject:
		in.Subject = ParseSubject(value)
	case FieldMessage:
		in.Message = value
	}
}

// IsEmpty reports whether every field is blank.
func (in FormInput) IsEmpty() bool {
	return in == FormInput{}
}

// ErrorKind is the reason a field failed validation.
type ErrorKind string

const (
	KindRequired      ErrorKind = "required"
	KindInvalidFormat ErrorKind = "invalid-format"
)

// ValidationErrors holds one entry per failing field.
type ValidationErrors map[Field]ErrorKind

func (e ValidationErrors) clone() ValidationErrors {
	out := make(ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// State is the submission lifecycle of a form.
type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Editable reports whether fields may change in this state.
func (s State) Editable() bool {
	return s == StateIdle || s == StateError
}

// Snapshot is a copy of a form's state, safe to hand to other goroutines.
type Snapshot struct {
	State   State            `json:"state"`
	Input   FormInput        `json:"input"`
	Errors  ValidationErrors `json:"errors"`
	Failure string           `json:"failure,omitempty"`
}

// Error returns the error kind for field, or "" when the field is valid.
func (s Snapshot) Error(field Field) ErrorKind {
	return s.Errors[field]
}

// Result is the outcome of one submission.
type Result struct {
	Ref uuid.UUID
	Err error
}

// OK reports whether the submission was accepted.
func (r Result) OK() bool {
	return r.Err == nil
}
