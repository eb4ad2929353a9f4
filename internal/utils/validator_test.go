package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmbitionsXXXV/doc-editor/internal/utils"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"alice@example.com",
		"a.b+c@sub.domain.org",
	}
	for _, email := range valid {
		require.NoError(t, utils.ValidateEmail(email), email)
	}

	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"spaces in@example.com",
		"missing@tld",
	}
	for _, email := range invalid {
		require.Error(t, utils.ValidateEmail(email), email)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	require.NoError(t, utils.ValidatePassword("password1"))
	require.NoError(t, utils.ValidatePassword("l0ngEnough"))

	require.Error(t, utils.ValidatePassword("short1"))
	require.Error(t, utils.ValidatePassword("lettersonly"))
	require.Error(t, utils.ValidatePassword("12345678"))
}
