// Package entity defines the subjects of a risk assessment: persons,
// companies, and the logical entity list derived from an assessment request.
package entity

import (
	"strings"

	"github.com/turtacn/risknet/pkg/errors"
)

// InputType identifies which subjects an assessment request carries.
type InputType string

const (
	InputTypePerson  InputType = "person"
	InputTypeCompany InputType = "company"
	InputTypeBoth    InputType = "both"
)

// IsValid reports whether t is one of the recognized input types.
func (t InputType) IsValid() bool {
	switch t {
	case InputTypePerson, InputTypeCompany, InputTypeBoth:
		return true
	}
	return false
}

// Kind distinguishes the two concrete subject shapes.
type Kind string

const (
	KindPerson  Kind = "person"
	KindCompany Kind = "company"
)

// Person is the natural-person subject of an assessment.
type Person struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
}

// Company is the legal-entity subject of an assessment.
type Company struct {
	Name               string   `json:"name"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	Country            string   `json:"country,omitempty"`
	Directors          []string `json:"directors,omitempty"`
}

// Input is a validated assessment request: the input type plus the subjects
// it requires. Person must be set for "person" and "both"; Company for
// "company" and "both".
type Input struct {
	Type    InputType `json:"input_type"`
	Person  *Person   `json:"person,omitempty"`
	Company *Company  `json:"company,omitempty"`
}

// Validate checks structural consistency between Type and the populated
// subjects. It returns an ErrCodeValidation AppError describing the first
// violation found.
func (in Input) Validate() error {
	if !in.Type.IsValid() {
		return errors.Newf(errors.ErrCodeValidation, "unknown input type %q", in.Type)
	}
	needPerson := in.Type == InputTypePerson || in.Type == InputTypeBoth
	needCompany := in.Type == InputTypeCompany || in.Type == InputTypeBoth

	if needPerson {
		if in.Person == nil {
			return errors.New(errors.ErrCodeValidation, "person is required for this input type")
		}
		if strings.TrimSpace(in.Person.Name) == "" {
			return errors.New(errors.ErrCodeValidation, "person.name must not be empty")
		}
	}
	if needCompany {
		if in.Company == nil {
			return errors.New(errors.ErrCodeValidation, "company is required for this input type")
		}
		if strings.TrimSpace(in.Company.Name) == "" {
			return errors.New(errors.ErrCodeValidation, "company.name must not be empty")
		}
	}
	return nil
}

// Logical is one subject to be screened against the intelligence sources.
// A "both" request yields two logical entities; "person" and "company" yield
// one each.
type Logical struct {
	Kind               Kind     `json:"kind"`
	Name               string   `json:"name"`
	Email              string   `json:"email,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Country            string   `json:"country,omitempty"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	Directors          []string `json:"directors,omitempty"`
}

// Entities derives the logical entity list from the input. The order is
// stable: person first, then company.
func (in Input) Entities() []Logical {
	var out []Logical
	if (in.Type == InputTypePerson || in.Type == InputTypeBoth) && in.Person != nil {
		out = append(out, Logical{
			Kind:    KindPerson,
			Name:    in.Person.Name,
			Email:   in.Person.Email,
			Phone:   in.Person.Phone,
			Country: in.Person.Country,
		})
	}
	if (in.Type == InputTypeCompany || in.Type == InputTypeBoth) && in.Company != nil {
		out = append(out, Logical{
			Kind:               KindCompany,
			Name:               in.Company.Name,
			RegistrationNumber: in.Company.RegistrationNumber,
			Country:            in.Company.Country,
			Directors:          in.Company.Directors,
		})
	}
	return out
}
