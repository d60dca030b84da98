package backend

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Uploaded file must be a .zip file"}`, "Uploaded file must be a .zip file"},
		{"message", `{"message":"not found file"}`, "not found file"},
		{"validation list", `{"detail":[{"loc":["body","file"],"msg":"field required"}]}`, ""},
		{"plain text", "Internal Server Error", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &StatusError{Endpoint: UploadPath, StatusCode: http.StatusBadRequest, Body: tt.body}
			assert.Equal(t, tt.want, err.Detail())
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{Endpoint: ExamplePath, StatusCode: http.StatusInternalServerError}
	assert.Equal(t, "/zip_example_handle returned status 500", err.Error())
	assert.True(t, err.IsServerError())

	err.Body = "boom"
	assert.Equal(t, "/zip_example_handle returned status 500: boom", err.Error())
}
