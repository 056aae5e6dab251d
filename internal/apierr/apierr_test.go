package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category Category
		action   string
	}{
		{"unauthorized", &HTTPError{StatusCode: 401}, CategoryAuth, ActionLogin},
		{"forbidden", &HTTPError{StatusCode: 403, Message: "forbidden"}, CategoryAuth, ActionLogin},
		{"bad request", &HTTPError{StatusCode: 400, Message: "invalid input: title"}, CategoryValidation, ""},
		{"not found", &HTTPError{StatusCode: 404}, CategoryValidation, ""},
		{"conflict", &HTTPError{StatusCode: 409}, CategoryValidation, ""},
		{"unprocessable", &HTTPError{StatusCode: 422}, CategoryValidation, ""},
		{"server", &HTTPError{StatusCode: 503}, CategoryServer, ""},
		{"teapot", &HTTPError{StatusCode: 418}, CategoryUnknown, ""},
		{"wrapped", fmt.Errorf("list jobs: %w", &HTTPError{StatusCode: 500}), CategoryServer, ""},
		{"refused", &url.Error{Op: "Get", URL: "http://localhost", Err: syscall.ECONNREFUSED}, CategoryNetwork, ""},
		{"timeout", fmt.Errorf("do: %w", context.DeadlineExceeded), CategoryNetwork, ""},
		{"other", errors.New("boom"), CategoryUnknown, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := Classify(tc.err)
			assert.Equal(t, tc.category, n.Category)
			assert.Equal(t, tc.action, n.Action)
			assert.NotEmpty(t, n.Title)
			assert.NotEmpty(t, n.Message)
		})
	}
}

func TestValidationKeepsServerMessage(t *testing.T) {
	n := Classify(&HTTPError{StatusCode: 400, Message: "invalid input: unknown sort column"})
	assert.Equal(t, "invalid input: unknown sort column", n.Message)
	assert.Equal(t, "Invalid request: invalid input: unknown sort column", n.String())
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, Notice{}, Classify(nil))
}
