package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("stock_error", "failed to fetch stock level", cause)

	require.EqualError(t, err, "failed to fetch stock level: connection refused")
	require.True(t, IsCode(err, "stock_error"))
	require.False(t, IsCode(err, "weather_error"))
	require.ErrorIs(t, err, cause)
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("plan: %w", Wrap("invalid_input", "readings or location is required", nil))
	require.True(t, IsCode(err, "invalid_input"))
	require.False(t, IsCode(errors.New("plain"), "invalid_input"))
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeWeather, CodeOf(Wrap(CodeWeather, "failed", nil)))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.Equal(t, "", CodeOf(nil))
}
