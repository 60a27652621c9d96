package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldTextStripsTurkishDiacritics(t *testing.T) {
	require.Equal(t, "sise", foldText("şişe"))
	require.Equal(t, "sogutucu", foldText("SOĞUTUCU"))
	require.Equal(t, "istanbul", foldText("İstanbul"))
	require.Equal(t, "camasir", foldText("çamaşır"))
	require.Equal(t, "plain", foldText("plain"))
}

func TestMatchesQueryOnNameAndStockCode(t *testing.T) {
	p := Product{Name: "Şişe Açacağı", StockCode: "SA-100"}

	require.True(t, matchesQuery(p, ""))
	require.True(t, matchesQuery(p, "sise"))
	require.True(t, matchesQuery(p, "ŞİŞE"))
	require.True(t, matchesQuery(p, "sa-1"))
	require.False(t, matchesQuery(p, "kettle"))
}
