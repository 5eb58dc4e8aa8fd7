package workflow

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ruteri/legal-document-registry/interfaces"
	"github.com/ruteri/legal-document-registry/storage"
)

// PublishForm holds the fields of a document being prepared for publishing.
type PublishForm struct {
	Title          string   `json:"title" validate:"notblank"`
	DocType        string   `json:"docType" validate:"notblank"`
	Jurisdiction   string   `json:"jurisdiction"`
	Author         string   `json:"author"`
	EffectiveDate  string   `json:"effectiveDate" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate string   `json:"expirationDate" validate:"omitempty,datetime=2006-01-02"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`

	File *interfaces.FileUpload `json:"-"`
}

// FormPatch is a partial form update. Nil fields are left unchanged.
type FormPatch struct {
	Title          *string  `json:"title,omitempty"`
	DocType        *string  `json:"docType,omitempty"`
	Jurisdiction   *string  `json:"jurisdiction,omitempty"`
	Author         *string  `json:"author,omitempty"`
	EffectiveDate  *string  `json:"effectiveDate,omitempty"`
	ExpirationDate *string  `json:"expirationDate,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// apply copies every set field of p into f.
func (p *FormPatch) apply(f *PublishForm) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Title, p.Title)
	set(&f.DocType, p.DocType)
	set(&f.Jurisdiction, p.Jurisdiction)
	set(&f.Author, p.Author)
	set(&f.EffectiveDate, p.EffectiveDate)
	set(&f.ExpirationDate, p.ExpirationDate)
	set(&f.Description, p.Description)
	set(&f.Category, p.Category)
	if p.Tags != nil {
		f.Tags = append([]string(nil), p.Tags...)
	}
}

// clone returns a copy that shares no slices with f.
func (f PublishForm) clone() PublishForm {
	out := f
	out.Tags = append([]string(nil), f.Tags...)
	if f.File != nil {
		file := *f.File
		out.File = &file
	}
	return out
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

var fieldMessages = map[string]string{
	"notblank": "is required",
	"datetime": "must be a date in YYYY-MM-DD format",
}

// Validate checks the form fields and the attached file against policy.
// It returns nil or a *interfaces.ValidationError keyed by JSON field name.
func (f *PublishForm) Validate(policy *storage.FilePolicy) error {
	verr := interfaces.NewValidationError()

	if err := formValidator().Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			msg, ok := fieldMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			verr.Add(fe.Field(), msg)
		}
	}

	if f.EffectiveDate != "" && f.ExpirationDate != "" && f.ExpirationDate < f.EffectiveDate {
		verr.Add("expirationDate", "must not be before the effective date")
	}

	if msg := policy.Check(f.File); msg != "" {
		verr.Add(storage.FileField, msg)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
