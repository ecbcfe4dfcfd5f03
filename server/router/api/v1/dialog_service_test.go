package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestDialogMessageValidation(t *testing.T) {
	service := &DialogService{}

	t.Run("missing userId", func(t *testing.T) {
		rec := postJSON(t, service.HandleMessage, "/api/v1/dialog/message", `{"text":"in 2 weeks"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "userId and text are required")
	})

	t.Run("missing text", func(t *testing.T) {
		rec := postJSON(t, service.HandleMessage, "/api/v1/dialog/message", `{"userId":"u1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := postJSON(t, service.HandleMessage, "/api/v1/dialog/message", `{"userId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDialogCallbackValidation(t *testing.T) {
	service := &DialogService{}

	t.Run("unrecognized callback data", func(t *testing.T) {
		rec := postJSON(t, service.HandleCallback, "/api/v1/dialog/callback", `{"userId":"u1","data":"bogus:token"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unrecognized callback data")
	})

	t.Run("missing data", func(t *testing.T) {
		rec := postJSON(t, service.HandleCallback, "/api/v1/dialog/callback", `{"userId":"u1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGoalCreatedValidation(t *testing.T) {
	service := &DialogService{}

	rec := postJSON(t, service.HandleGoalCreated, "/api/v1/dialog/goal-created", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "userId and goalId are required")
}
