// Package validation checks form input before it reaches a data adapter.
// Every check is pure and synchronous; invalid input yields a Result carrying
// one message per offending field.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"munidenuncia/internal/models"
)

const MaxPhotoBytes = 10 * 1024 * 1024

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages is keyed by "<field path>.<tag>".
var messages = map[string]string{
	"email.email":          "Invalid email address",
	"password.min":         "Password must be at least 6 characters",
	"title.min":            "Title must be at least 3 characters",
	"title.max":            "Title too long",
	"description.max":      "Description too long",
	"photoFile.required":   "Photo is required",
	"photoFile.Data.max":   "Photo must be less than 10MB",
	"photoFile.type.oneof": "Only JPEG, PNG, and WebP images are allowed",
	"location.lat.min":     "Latitude must be between -90 and 90",
	"location.lat.max":     "Latitude must be between -90 and 90",
	"location.lng.min":     "Longitude must be between -180 and 180",
	"location.lng.max":     "Longitude must be between -180 and 180",
	"urgency.required":     "Please select the urgency level",
	"urgency.oneof":        "Please select the urgency level",
	"text.min":             "Message cannot be empty",
	"text.max":             "Message too long",
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Fields: r.Errors}
}

// Error is returned to callers when input fails a declared rule.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func Login(in models.Credentials) Result { return check(in) }

func Report(in models.CreateReportInput) Result { return check(in) }

func Message(in models.SendMessageInput) Result { return check(in) }

type photoForm struct {
	Photo *models.Photo `json:"photoFile" validate:"required"`
}

// Photo validates a standalone upload.
func Photo(p *models.Photo) Result { return check(photoForm{Photo: p}) }

// PhotoTooLarge is the failure for an upload cut off before it could be read whole.
func PhotoTooLarge() *Error {
	return &Error{Fields: map[string]string{"photoFile": messages["photoFile.Data.max"]}}
}

// check panics on programmer misuse (non-struct input); invalid data is
// reported through the Result.
func check(v any) Result {
	err := validate.Struct(v)
	if err == nil {
		return Result{Valid: true}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(err)
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		key := path
		if strings.HasPrefix(key, "photoFile.") {
			key = "photoFile"
		}
		if _, seen := out[key]; seen {
			continue
		}
		msg, ok := messages[path+"."+fe.Tag()]
		if !ok {
			msg = key + " is invalid"
		}
		out[key] = msg
	}
	return Result{Valid: false, Errors: out}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
