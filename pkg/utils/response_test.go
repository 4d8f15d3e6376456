package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/service/completion"
)

func TestRespondChatError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{completion.NewError(completion.CodeMissingField, "message is required", nil), http.StatusBadRequest, "MISSING_FIELD"},
		{completion.NewError(completion.CodeMethodNotAllowed, "method not allowed", nil), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{completion.NewError(completion.CodeProvider, "no provider", nil), http.StatusInternalServerError, "PROVIDER_ERROR"},
		{errors.New("boom"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondChatError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body completion.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, tc.code, body.Code)
		assert.NotEmpty(t, body.Error)
	}
}
