// Package validation checks user submissions before they reach the content
// store. Failures are returned as field-level VALIDATION_ERRORs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"inkwell/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// PostSubmission is the create/edit post form.
type PostSubmission struct {
	Text    string `json:"text" form:"text" validate:"notblank"`
	GroupID *uint  `json:"group" form:"group"`
}

// CommentSubmission is the add comment form.
type CommentSubmission struct {
	Text string `json:"text" form:"text" validate:"notblank"`
}

// GroupSubmission is the admin create group form.
type GroupSubmission struct {
	Title       string `json:"title" form:"title" validate:"notblank,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"required,max=50,slug"`
	Description string `json:"description" form:"description"`
}

// SignupSubmission is the registration form.
type SignupSubmission struct {
	Username        string `json:"username" form:"username" validate:"required,max=150,username"`
	Email           string `json:"email" form:"email" validate:"required,max=254,email"`
	FirstName       string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" form:"last_name" validate:"max=150"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"eqfield=Password"`
}

// ValidatePostSubmission requires non-blank text. Whether the referenced
// group exists is checked by the caller against the store.
func ValidatePostSubmission(s PostSubmission) error {
	return check(s)
}

// ValidateCommentSubmission requires non-blank text.
func ValidateCommentSubmission(s CommentSubmission) error {
	return check(s)
}

// ValidateGroup checks the title length and that the slug is URL-safe.
func ValidateGroup(s GroupSubmission) error {
	return check(s)
}

// ValidateSignup checks the username, email and matching passwords.
func ValidateSignup(s SignupSubmission) error {
	return check(s)
}

// check reports the first failing field.
func check(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	fe := fieldErrs[0]
	return models.NewFieldError(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "notblank", "required":
		return field + " required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "slug":
		return "slug may only contain letters, numbers, hyphens and underscores"
	case "username":
		return "username may only contain letters, numbers and @/./+/-/_"
	case "email":
		return "enter a valid email address"
	case "eqfield":
		return "passwords do not match"
	default:
		return field + " is invalid"
	}
}
