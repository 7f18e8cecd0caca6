package packguard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packguard/packguard/internal/types"
)

func TestValidateFailOn(t *testing.T) {
	for _, v := range []string{"info", "warning", "critical", "never"} {
		assert.NoError(t, validateFailOn(v), v)
	}
	for _, v := range []string{"", "crtical", "high", "CRITICAL"} {
		assert.Error(t, validateFailOn(v), v)
	}
}

func TestShouldFail(t *testing.T) {
	mixed := types.Summary{Critical: 1, Warning: 2, Info: 3, Total: 6}
	infoOnly := types.Summary{Info: 2, Total: 2}

	assert.True(t, shouldFail(mixed, "critical"))
	assert.True(t, shouldFail(mixed, "warning"))
	assert.True(t, shouldFail(mixed, "info"))
	assert.False(t, shouldFail(mixed, "never"))

	assert.False(t, shouldFail(infoOnly, "critical"))
	assert.False(t, shouldFail(infoOnly, "warning"))
	assert.True(t, shouldFail(infoOnly, "info"))
}
