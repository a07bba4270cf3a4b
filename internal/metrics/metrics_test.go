package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/haierkeys/menu-tree-service/pkg/code"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "1104", Result(code.ErrorDepthExceeded.WithDetails("x")))
	assert.Equal(t, "1101", Result(fmt.Errorf("wrapped: %w", code.ErrorLinkNotFound)))
	assert.Equal(t, "error", Result(errors.New("boom")))
}
