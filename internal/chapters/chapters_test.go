package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(ls ...string) []Chapter {
	out := make([]Chapter, len(ls))
	for i, l := range ls {
		out[i] = Chapter{URL: "http://example.com/" + l, Label: l}
	}
	return out
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
		want  []int
	}{
		{"list and range", "1,3-4", 5, []int{0, 2, 3}},
		{"all", "all", 3, []int{0, 1, 2}},
		{"all is case insensitive", " ALL ", 2, []int{0, 1}},
		{"whitespace ignored", " 2 , 4 - 5 ", 5, []int{1, 3, 4}},
		{"input order kept", "5,1-2", 5, []int{4, 0, 1}},
		{"duplicates kept", "2,1-2", 3, []int{1, 0, 1}},
		{"single chapter range", "3-3", 3, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.input, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelectionRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "abc", "1,,2", "1-", "-3", "4-2", "0", "6", "2-9", "1;2"} {
		_, err := ParseSelection(input, 5)
		assert.ErrorIs(t, err, ErrInvalidSelection, "input %q", input)
	}
}

func TestParseSelectionAllOnEmptyList(t *testing.T) {
	got, err := ParseSelection("all", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateSet(t *testing.T) {
	all := labels("Ch.1", "Ch.2", "Ch.3")

	got, err := UpdateSet(all, "Ch.1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	_, err = UpdateSet(all, "Ch.3")
	assert.ErrorIs(t, err, ErrNoUpdates)
}

func TestUpdateSetWithoutHistorySelectsEverything(t *testing.T) {
	all := labels("Ch.1", "Ch.2")

	got, err := UpdateSet(all, "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)

	got, err = UpdateSet(all, "Ch.99")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
	assert.False(t, Contains(all, "Ch.99"))
}

func TestUpdateSetEmptyList(t *testing.T) {
	_, err := UpdateSet(nil, "")
	assert.ErrorIs(t, err, ErrNoUpdates)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "one_piece", Sanitize("One Piece"))
	assert.Equal(t, "ch_1", Sanitize("Ch.1"))
	assert.Equal(t, "pokemon_adventures", Sanitize("Pokémon: Adventures"))
	assert.Equal(t, "naruto_vol_1_ch_3", Sanitize("Naruto Vol.1 -- Ch.3"))
	assert.Equal(t, "", Sanitize("?!"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "naruto_ch_1_5", Prefix("Naruto", Chapter{Label: "Ch.1.5"}))
}
