package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cases := []Cursor{
		DefaultCursor(),
		{Current: "a", NextTok: "b", PrevTok: "c", Direction: Previous, Field: "name", Limit: 10, LastValue: "01abc"},
		{Direction: Next, Field: "id", Limit: 1, LastValue: ""},
	}
	for _, c := range cases {
		got := DecodeCursor(c.Encode())
		require.Equal(t, c, got, "round-trip mismatch")
	}
}

func TestDecodeCursorEmptyDefaultsToFirstPage(t *testing.T) {
	got := DecodeCursor("")
	require.Equal(t, DefaultCursor(), got, "empty cursor should decode to DefaultCursor")
}

func TestDecodeCursorMalformedFallsBackToDefault(t *testing.T) {
	for _, bad := range []string{"not-base64!!!", "", "YWJj"} { // "YWJj" decodes to "abc", wrong part count
		got := DecodeCursor(bad)
		require.Equal(t, Next, got.Direction, "malformed cursor %q should fall back to defaults", bad)
		require.Equal(t, "id", got.Field, "malformed cursor %q should fall back to defaults", bad)
		require.Equal(t, defaultPageLimit, got.Limit, "malformed cursor %q should fall back to defaults", bad)
	}
}

func TestBuildPaginatorsNoFurtherMovement(t *testing.T) {
	cur := DefaultCursor()
	p := BuildPaginators(cur, "", "")
	require.Empty(t, p.Next, "empty page should produce no next cursor")
	require.Empty(t, p.Previous, "empty page should produce no previous cursor")
}

func TestBuildPaginatorsNextAndPrevious(t *testing.T) {
	cur := DefaultCursor()
	p := BuildPaginators(cur, "01first", "01last")
	require.NotEmpty(t, p.Next, "any non-empty page must produce a next cursor")

	next := DecodeCursor(p.Next)
	require.Equal(t, Next, next.Direction)
	require.Equal(t, "01last", next.LastValue, "next cursor should anchor past the page's last row")

	require.NotEmpty(t, p.Previous, "expected a previous cursor once a row has been returned")
	prev := DecodeCursor(p.Previous)
	require.Equal(t, Previous, prev.Direction)
	require.Equal(t, "01first", prev.LastValue, "previous cursor should anchor before the page's first row")
}
