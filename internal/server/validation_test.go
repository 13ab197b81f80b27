package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskboard/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ann@x.com", true},
		{"first.last+tag@mail.example.org", true},
		{"ann@x", false},
		{"ann.x.com", false},
		{"ann @x.com", false},
		{"@x.com", false},
		{"ann@@x.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes present", "Secret1!", true},
		{"every allowed symbol", "Aa1@$!%*?&", true},
		{"too short", "Sec1!", false},
		{"no uppercase", "secret1!", false},
		{"no lowercase", "SECRET1!", false},
		{"no digit", "Secret!!", false},
		{"no symbol", "Secret12", false},
		{"symbol outside set", "Secret1#", false},
		{"space", "Secret 1!", false},
		{"non ascii letter", "Sécret1!", false},
		{"longer than bcrypt accepts", "Aa1!" + strings.Repeat("a", 69), false},
		{"at bcrypt limit", "Aa1!" + strings.Repeat("a", 68), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword(tt.password))
		})
	}
}

func TestValidationMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/check", ValidateEmail(), ValidatePassword(), func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": req.Email})
	})

	tests := []struct {
		name string
		body string
		want struct {
			statusCode int
			contains   string
		}
	}{
		{
			name: "valid body reaches handler",
			body: `{"email":"ann@x.com","password":"Secret1!"}`,
			want: struct {
				statusCode int
				contains   string
			}{
				statusCode: http.StatusOK,
				contains:   "ann@x.com",
			},
		},
		{
			name: "not json",
			body: `email=ann@x.com`,
			want: struct {
				statusCode int
				contains   string
			}{
				statusCode: http.StatusBadRequest,
				contains:   msgEmailRequired,
			},
		},
		{
			name: "email checked before password",
			body: `{"email":"bad","password":"weak"}`,
			want: struct {
				statusCode int
				contains   string
			}{
				statusCode: http.StatusBadRequest,
				contains:   msgEmailInvalid,
			},
		},
		{
			name: "weak password",
			body: `{"email":"ann@x.com","password":"weak"}`,
			want: struct {
				statusCode int
				contains   string
			}{
				statusCode: http.StatusBadRequest,
				contains:   msgPasswordInvalid,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/check", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want.statusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.want.contains)
		})
	}
}

func TestValidationMessage(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name string
		req  any
		want string
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.co", Password: "Secret1!"}, msgNameRequired},
		{"short name", models.RegisterRequest{Name: "Al", Email: "a@b.co", Password: "Secret1!"}, msgNameTooShort},
		{"weak password", models.RegisterRequest{Name: "Ann", Email: "a@b.co", Password: "weak"}, msgPasswordInvalid},
		{"missing task name", models.TaskRequest{Description: "d", Priority: "low"}, msgTaskNameRequired},
		{"missing priority", models.TaskRequest{Title: "t", Description: "d"}, msgPriorityRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			assert.Error(t, err)
			assert.Equal(t, tt.want, validationMessage(err))
		})
	}

	assert.Equal(t, msgValidationFailed, validationMessage(assert.AnError))
}
