package cronutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCronSpecValidation(t *testing.T) {
	c := NewStandard()

	err := c.Cron("not a spec", func() {})
	require.Error(t, err)

	err = c.Cron("0 9 * * *", func() {})
	require.NoError(t, err)
}
