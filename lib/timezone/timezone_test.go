package timezone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNowUsesMarketplaceZone(t *testing.T) {
	now := Now()
	zone, offset := now.Zone()
	require.Equal(t, "JST", zone)
	require.Equal(t, 9*60*60, offset)
}
