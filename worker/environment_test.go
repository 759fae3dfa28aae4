package worker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEnvironment(t *testing.T) {
	t.Setenv("FUNCWORKER_TEST_KEEP", "original")
	require.NoError(t, applyEnvironment(map[string]string{
		"FUNCWORKER_TEST_A": "1",
		"FUNCWORKER_TEST_B": "two",
	}))
	require.Equal(t, "1", os.Getenv("FUNCWORKER_TEST_A"))
	require.Equal(t, "two", os.Getenv("FUNCWORKER_TEST_B"))
	// Variables not named in the request keep their values.
	require.Equal(t, "original", os.Getenv("FUNCWORKER_TEST_KEEP"))

	t.Cleanup(func() {
		os.Unsetenv("FUNCWORKER_TEST_A")
		os.Unsetenv("FUNCWORKER_TEST_B")
	})
}

func TestApplyEnvironment_InvalidNameWritesNothing(t *testing.T) {
	err := applyEnvironment(map[string]string{
		"FUNCWORKER_TEST_VALID": "1",
		"BAD=NAME":              "2",
	})
	require.ErrorContains(t, err, "invalid environment variable name")
	require.Empty(t, os.Getenv("FUNCWORKER_TEST_VALID"))

	err = applyEnvironment(map[string]string{"": "1"})
	require.ErrorContains(t, err, "empty name")
}
