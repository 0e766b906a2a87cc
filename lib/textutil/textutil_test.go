package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "instock", NormalizeName("  In  Stock \n"))
	require.Equal(t, "在庫あり。", NormalizeName("在庫あり。"))
	require.Equal(t, "", NormalizeName(" \t\n"))
}

func TestMatchName(t *testing.T) {
	matchers := []string{"outofstock", "unavailable"}

	require.True(t, MatchName("Out of Stock.", matchers))
	require.True(t, MatchName("Currently unavailable.", matchers))
	require.False(t, MatchName("In Stock.", matchers))
	require.False(t, MatchName("", matchers))
}
