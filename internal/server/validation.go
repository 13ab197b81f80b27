package server

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	passwordMinLength = 8
	// bcrypt only looks at the first 72 bytes and rejects longer input.
	passwordMaxLength = 72
	passwordSymbols   = "@$!%*?&"
)

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// StrongPassword requires at least eight characters drawn from letters,
// digits and @$!%*?&, with at least one lowercase letter, uppercase letter,
// digit and symbol.
func StrongPassword(s string) bool {
	if len(s) < passwordMinLength || len(s) > passwordMaxLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

type credentialFields struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials decodes email and password from the JSON body. The body is
// cached on the context, so handlers can bind it again afterwards. A body
// that is not JSON yields empty fields.
func readCredentials(ctx *gin.Context) credentialFields {
	var fields credentialFields
	_ = ctx.ShouldBindBodyWith(&fields, binding.JSON)
	return fields
}

// ValidateEmail rejects requests whose body carries a missing or malformed
// email before any handler runs.
func ValidateEmail() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		email := readCredentials(ctx).Email
		switch {
		case email == "":
			abort(ctx, invalid(msgEmailRequired))
		case !ValidEmail(email):
			abort(ctx, invalid(msgEmailInvalid))
		default:
			ctx.Next()
		}
	}
}

// ValidatePassword rejects requests whose body carries a missing or weak
// password before any handler runs.
func ValidatePassword() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		password := readCredentials(ctx).Password
		switch {
		case password == "":
			abort(ctx, invalid(msgPasswordRequired))
		case !StrongPassword(password):
			abort(ctx, invalid(msgPasswordInvalid))
		default:
			ctx.Next()
		}
	}
}

// validationMessage turns the first validator failure into a client message.
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return msgValidationFailed
	}

	verr := verrs[0]
	switch verr.Field() {
	case "Name":
		if verr.Tag() == "min" {
			return msgNameTooShort
		}
		return msgNameRequired
	case "Email":
		if verr.Tag() == "required" {
			return msgEmailRequired
		}
		return msgEmailInvalid
	case "Password":
		if verr.Tag() == "required" {
			return msgPasswordRequired
		}
		return msgPasswordInvalid
	case "Title":
		return msgTaskNameRequired
	case "Description":
		return msgDescriptionRequired
	case "Priority":
		return msgPriorityRequired
	}
	return msgValidationFailed
}
