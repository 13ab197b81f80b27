package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response messages. Clients match on some of these, keep them stable.
const (
	msgInternal            = "Internal server error"
	msgInvalidBody         = "Invalid request body"
	msgAccessDenied        = "Access denied"
	msgInvalidToken        = "Invalid token"
	msgUserNotFound        = "User not found"
	msgInvalidCredentials  = "Invalid credentials"
	msgEmailInUse          = "Email already in use"
	msgEmailRequired       = "Email is required"
	msgEmailInvalid        = "Please enter a valid email"
	msgPasswordRequired    = "Password is required"
	msgPasswordInvalid     = "Invalid password format."
	msgNameRequired        = "Name is required"
	msgNameTooShort        = "Name is too short"
	msgTaskNameRequired    = "Task name is required"
	msgDescriptionRequired = "Description is required"
	msgPriorityRequired    = "Priority is required"
	msgInvalidTaskID       = "Invalid Task ID format"
	msgTaskNotFound        = "Task not found"
	msgValidationFailed    = "Validation failed"
	msgRouteNotFound       = "Route not found"
	msgMethodNotAllowed    = "Method not allowed"
)

type resultKind int

const (
	kindOK resultKind = iota
	kindValidation
	kindUnauthenticated
	kindInvalidToken
	kindNotFound
	kindInternal
)

func (k resultKind) String() string {
	switch k {
	case kindOK:
		return "ok"
	case kindValidation:
		return "validation"
	case kindUnauthenticated:
		return "unauthenticated"
	case kindInvalidToken:
		return "invalid_token"
	case kindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// result is what every handler and guard produces: the outcome class, the
// status and body to send, and for failures the underlying cause that is
// only ever logged.
type result struct {
	kind    resultKind
	status  int
	message string
	body    gin.H
	cause   error
}

func success(status int, body gin.H) result {
	return result{kind: kindOK, status: status, body: body}
}

func invalid(message string) result {
	return result{kind: kindValidation, status: http.StatusBadRequest, message: message}
}

func unauthenticated() result {
	return result{kind: kindUnauthenticated, status: http.StatusForbidden, message: msgAccessDenied}
}

func invalidToken(cause error) result {
	return result{kind: kindInvalidToken, status: http.StatusBadRequest, message: msgInvalidToken, cause: cause}
}

func notFound(message string) result {
	return result{kind: kindNotFound, status: http.StatusNotFound, message: message}
}

func internalError(cause error) result {
	return result{kind: kindInternal, status: http.StatusInternalServerError, message: msgInternal, cause: cause}
}

// withStatus overrides the status while keeping the outcome class, for
// routes whose contract reports not-found as 400.
func (r result) withStatus(status int) result {
	r.status = status
	return r
}

func (r result) payload() gin.H {
	if r.kind == kindOK {
		if r.body == nil {
			return gin.H{}
		}
		return r.body
	}
	return gin.H{"message": r.message}
}
