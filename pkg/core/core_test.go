package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRuleNames_RoundTrip(t *testing.T) {
	first, err := ContentRuleNames("standard")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// reloading with the same preset yields the same compiled rule-name set
	second, err := ContentRuleNames("standard")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnabledExtensions(t *testing.T) {
	exts, err := EnabledExtensions("nativeOnly")
	require.NoError(t, err)
	assert.Equal(t, []string{"dll", "dylib", "so"}, exts)
}

func TestUnknownPreset(t *testing.T) {
	_, err := ContentRuleNames("bogus")
	assert.Error(t, err)
}
