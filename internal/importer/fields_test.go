package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	require.Equal(t, "nao", Fold("Não"))
	require.Equal(t, "adicao", Fold("  ADIÇÃO "))
	require.Equal(t, "credora", Fold("Credora"))
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"true", "YES", "Sim", "1"} {
		got, err := ParseBool(raw)
		require.NoError(t, err, raw)
		require.True(t, got, raw)
	}
	for _, raw := range []string{"false", "no", "não", "NAO", "0"} {
		got, err := ParseBool(raw)
		require.NoError(t, err, raw)
		require.False(t, got, raw)
	}
	_, err := ParseBool("talvez")
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-31")
	require.NoError(t, err)
	require.Equal(t, 2024, got.Year())
	require.Equal(t, 31, got.Day())

	_, err = ParseDate("31/03/2024")
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 1234.56 ")
	require.NoError(t, err)
	require.True(t, got.Equal(decimal.RequireFromString("1234.56")))

	_, err = ParseAmount("1.234,56")
	require.Error(t, err)
}

func TestParsePositiveAmount(t *testing.T) {
	_, err := ParsePositiveAmount("0")
	require.Error(t, err)
	_, err = ParsePositiveAmount("-5")
	require.Error(t, err)

	got, err := ParsePositiveAmount("0.01")
	require.NoError(t, err)
	require.True(t, got.IsPositive())
}

func TestParseIntIn(t *testing.T) {
	got, err := ParseIntIn(" 3 ", 1, 5)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	_, err = ParseIntIn("6", 1, 5)
	require.Error(t, err)
	_, err = ParseIntIn("x", 1, 5)
	require.Error(t, err)
}
