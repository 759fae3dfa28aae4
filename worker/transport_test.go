package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDial_Validation(t *testing.T) {
	_, err := Dial(context.Background(), DialOptions{Port: 7071})
	require.ErrorContains(t, err, "no host")

	_, err = Dial(context.Background(), DialOptions{Host: "127.0.0.1"})
	require.ErrorContains(t, err, "no port")

	_, err = Dial(context.Background(), DialOptions{Host: "127.0.0.1", Port: -1})
	require.ErrorContains(t, err, "no port")
}
