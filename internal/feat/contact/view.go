package contact

import "github.com/srdpartners/site/pkg/cl/i18n"

const (
	// VariantPremium is the full card on the contact page.
	VariantPremium = "premium"
	// VariantCompact is the lighter card at the bottom of service pages.
	VariantCompact = "compact"

	msgPrefix = "contact.form."
)

// FieldView is one input as the template draws it.
type FieldView struct {
	Name         string
	Label        string
	Type         string
	AutoComplete string
	Placeholder  string
	Value        string
	Error        string
}

// Invalid reports whether the field shows an error.
func (f FieldView) Invalid() bool {
	return f.Error != ""
}

// SubjectOption is one entry of the subject select.
type SubjectOption struct {
	Value    string
	Label    string
	Selected bool
}

// FormView is the render model of the contact form partial.
type FormView struct {
	Msg         i18n.Translator
	Variant     string
	Action      string
	ResetAction string
	StateURL    string
	StreamURL   string
	State       State

	Name     FieldView
	Company  FieldView
	Email    FieldView
	Phone    FieldView
	Subject  FieldView
	Subjects []SubjectOption
	Message  FieldView
}

// Sending reports whether the submit control is disabled.
func (v FormView) Sending() bool { return v.State == StateSending }

// Success reports whether the confirmation panel replaces the form.
func (v FormView) Success() bool { return v.State == StateSuccess }

// Failed reports whether the last submission failed.
func (v FormView) Failed() bool { return v.State == StateError }

// NewFormView maps a snapshot onto display strings for msg's locale.
// base is the locale-prefixed contact path, e.g. "/fr/contact".
func NewFormView(snap Snapshot, msg i18n.Translator, base, variant string) FormView {
	if variant != VariantCompact {
		variant = VariantPremium
	}

	field := func(f Field, label, typ, auto string) FieldView {
		return FieldView{
			Name:         string(f),
			Label:        msg.T(msgPrefix + label),
			Type:         typ,
			AutoComplete: auto,
			Placeholder:  msg.T(msgPrefix + "placeholders." + string(f)),
			Value:        snap.Input.Value(f),
			Error:        errorMessage(msg, f, snap.Error(f)),
		}
	}

	v := FormView{
		Msg:         msg,
		Variant:     variant,
		Action:      base,
		ResetAction: base + "/reset",
		StateURL:    base + "/state",
		StreamURL:   base + "/ws",
		State:       snap.State,
		Name:        field(FieldName, "fullName", "text", "name"),
		Company:     field(FieldCompany, "company", "text", "organization"),
		Email:       field(FieldEmail, "email", "email", "email"),
		Phone:       field(FieldPhone, "phone", "tel", "tel"),
		Message:     field(FieldMessage, "message", "", ""),
		Subject: FieldView{
			Name:  string(FieldSubject),
			Label: msg.T(msgPrefix + "subject"),
			Value: string(snap.Input.Subject),
			Error: errorMessage(msg, FieldSubject, snap.Error(FieldSubject)),
		},
	}

	v.Subjects = make([]SubjectOption, 0, len(Subjects))
	for _, s := range Subjects {
		v.Subjects = append(v.Subjects, SubjectOption{
			Value:    string(s),
			Label:    msg.T(msgPrefix + "subjects." + string(s)),
			Selected: s == snap.Input.Subject,
		})
	}
	return v
}

// errorMessage maps a field error onto its localized message.
func errorMessage(msg i18n.Translator, f Field, kind ErrorKind) string {
	switch kind {
	case "":
		return ""
	case KindInvalidFormat:
		if f == FieldEmail {
			return msg.T(msgPrefix + "errors.emailInvalid")
		}
	}
	return msg.T(msgPrefix + "errors." + string(f))
}
