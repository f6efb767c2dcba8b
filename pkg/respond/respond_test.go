package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     interface{}
		wantCode int
		wantBody map[string]interface{}
	}{
		{
			name:     "health response",
			code:     http.StatusOK,
			data:     map[string]string{"status": "ok"},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{"status": "ok"},
		},
		{
			name:     "created response",
			code:     http.StatusCreated,
			data:     map[string]map[string]string{"task": {"id": "abc"}},
			wantCode: http.StatusCreated,
			wantBody: map[string]interface{}{"task": map[string]interface{}{"id": "abc"}},
		},
		{
			name:     "empty list stays an array",
			code:     http.StatusOK,
			data:     map[string][]string{"tasks": {}},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{"tasks": []interface{}{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got map[string]interface{}
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		message  string
		wantCode int
		wantErr  string
	}{
		{
			name:     "bad request",
			code:     http.StatusBadRequest,
			message:  "Title is required",
			wantCode: http.StatusBadRequest,
			wantErr:  "Title is required",
		},
		{
			name:     "not found",
			code:     http.StatusNotFound,
			message:  "Task not found",
			wantCode: http.StatusNotFound,
			wantErr:  "Task not found",
		},
		{
			name:     "internal error",
			code:     http.StatusInternalServerError,
			message:  "Failed to list tasks: connection refused",
			wantCode: http.StatusInternalServerError,
			wantErr:  "Failed to list tasks: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(w, r, tt.code, tt.message)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got map[string]string
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, got["message"])
			assert.Len(t, got, 1)
		})
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodDelete, "/tasks/1", nil)

	NoContent(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Type"))
}
