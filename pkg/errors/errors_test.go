package errors

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/haierkeys/menu-tree-service/internal/middleware"
	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*AppError, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/link", nil)
	c.Set(middleware.TraceIDKey, "trace-1")

	ErrorResponse(c, err)

	var out AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return &out, c
}

func TestErrorResponse_Code(t *testing.T) {
	err := fmt.Errorf("move: %w", code.ErrorCycleDetected.WithDetails("a"))
	out, c := respond(t, err)

	assert.Equal(t, code.ErrorCycleDetected.Code(), out.Code)
	assert.False(t, out.Status)
	assert.Equal(t, []string{"a"}, out.Details)
	assert.Equal(t, "trace-1", out.TraceID)
	assert.Empty(t, c.Errors)
}

func TestErrorResponse_Unknown(t *testing.T) {
	out, c := respond(t, fmt.Errorf("disk on fire"))

	assert.Equal(t, 500, out.Code)
	assert.Equal(t, "trace-1", out.TraceID)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "disk on fire")
}

func TestAppErrorChain(t *testing.T) {
	cause := fmt.Errorf("root")
	appErr := NewAppError(code.ErrorLinkNotFound, cause).WithDetails("x")
	wrapped := fmt.Errorf("outer: %w", appErr)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, appErr, GetAppError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Nil(t, GetAppError(cause))
}
