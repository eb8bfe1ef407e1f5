package payload

import (
	"testing"

	lzstring "github.com/daku10/go-lz-string"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhi-elliot/ScrappyMart/internal/model"
)

func compress(t *testing.T, raw string) string {
	t.Helper()
	out, err := lzstring.CompressToEncodedURIComponent(raw)
	require.NoError(t, err)
	return out
}

func TestRoundTripCurrentVersion(t *testing.T) {
	in := Payload{
		Version:    CurrentVersion,
		Name:       "Raid",
		Quantities: map[int]int{101: 5, 102: 2, 7: 1},
		Categories: []model.Category{
			{ID: "cat_a", Name: "Phase 1", Phase: 1},
			{ID: "cat_b", Name: "Boss loot", Phase: 4},
		},
		PhaseAssignments: map[int]int{102: 1, 7: 4},
		CheckedIDs:       []int{7, 101},
	}

	encoded := Encode(in)
	require.NotEmpty(t, encoded)

	out := Decode(encoded)
	require.NotNil(t, out)
	assert.Equal(t, CurrentVersion, out.Version)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Quantities, out.Quantities)
	assert.Equal(t, in.Categories, out.Categories)
	assert.Equal(t, in.PhaseAssignments, out.PhaseAssignments)
	assert.ElementsMatch(t, in.CheckedIDs, out.CheckedIDs)
}

func TestEncodeIsURLFragmentSafe(t *testing.T) {
	encoded := Encode(Payload{Name: "Tools & parts / #2?", Quantities: map[int]int{1: 1, 2: 3}})
	require.NotEmpty(t, encoded)
	for _, r := range encoded {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '$'
		assert.Truef(t, ok, "unexpected character %q in %q", r, encoded)
	}
}

func TestEncodeOmitsEmptyOptionalFields(t *testing.T) {
	encoded := Encode(Payload{Name: "Plain", Quantities: map[int]int{3: 2}})
	raw, err := lzstring.DecompressFromEncodedURIComponent(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3,"n":"Plain","i":{"3":2}}`, raw)
}

func TestEncodeDropsNonPositiveQuantities(t *testing.T) {
	encoded := Encode(Payload{
		Name:             "Trim",
		Quantities:       map[int]int{1: 0, 2: -3, 3: 4},
		PhaseAssignments: map[int]int{1: 2, 3: 1},
		CheckedIDs:       []int{1, 3},
	})

	out := Decode(encoded)
	require.NotNil(t, out)
	assert.Equal(t, map[int]int{3: 4}, out.Quantities)
	assert.Equal(t, map[int]int{3: 1}, out.PhaseAssignments)
	assert.Equal(t, []int{3}, out.CheckedIDs)
}

func TestEncodeAlwaysWritesCurrentVersion(t *testing.T) {
	out := Decode(Encode(Payload{Version: 1, Name: "Old", Quantities: map[int]int{1: 1}}))
	require.NotNil(t, out)
	assert.Equal(t, CurrentVersion, out.Version)
}

func TestDecodeVersionOne(t *testing.T) {
	out := Decode(compress(t, `{"v":1,"n":"X","i":{"5":2}}`))
	require.NotNil(t, out)
	assert.Equal(t, 1, out.Version)
	assert.Equal(t, "X", out.Name)
	assert.Equal(t, map[int]int{5: 2}, out.Quantities)
	assert.Nil(t, out.Categories)
	assert.Nil(t, out.PhaseAssignments)
	assert.Nil(t, out.CheckedIDs)
}

func TestDecodeIgnoresFieldsNewerThanVersion(t *testing.T) {
	out := Decode(compress(t, `{"v":2,"n":"X","i":{"5":2},"p":{"5":1},"k":[5]}`))
	require.NotNil(t, out)
	assert.Equal(t, map[int]int{5: 1}, out.PhaseAssignments)
	assert.Nil(t, out.CheckedIDs)

	out = Decode(compress(t, `{"v":1,"n":"X","i":{"5":2},"c":[{"id":"a","name":"A","phase":1}]}`))
	require.NotNil(t, out)
	assert.Nil(t, out.Categories)
}

func TestDecodeRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage", "not-valid-compressed-data"},
		{"not json", compress(t, "hello there")},
		{"missing version", compress(t, `{"n":"X","i":{"1":1}}`)},
		{"future version", compress(t, `{"v":4,"n":"X","i":{"1":1}}`)},
		{"zero version", compress(t, `{"v":0,"n":"X","i":{"1":1}}`)},
		{"missing quantities", compress(t, `{"v":3,"n":"X"}`)},
		{"null quantities", compress(t, `{"v":3,"n":"X","i":null}`)},
		{"array quantities", compress(t, `{"v":3,"n":"X","i":[1,2]}`)},
		{"non-integer item key", compress(t, `{"v":1,"n":"X","i":{"abc":1}}`)},
		{"non-integer phase", compress(t, `{"v":2,"n":"X","i":{"1":1},"c":[{"id":"a","name":"A","phase":"one"}]}`)},
		{"numeric name", compress(t, `{"v":1,"n":5,"i":{"1":1}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, Decode(tt.input))
			})
		})
	}
}

func TestParseReportsReason(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse(compress(t, `{"v":9,"n":"X","i":{}}`))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Parse(compress(t, `{"v":1,"n":"X"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeDropsNonPositiveInboundQuantities(t *testing.T) {
	out := Decode(compress(t, `{"v":3,"n":"X","i":{"1":0,"2":3},"p":{"1":2},"k":[1,2]}`))
	require.NotNil(t, out)
	assert.Equal(t, map[int]int{2: 3}, out.Quantities)
	assert.Nil(t, out.PhaseAssignments)
	assert.Equal(t, []int{2}, out.CheckedIDs)
}

func TestFromList(t *testing.T) {
	list := model.List{
		Name: "Raid",
		Items: []model.ItemEntry{
			{ItemID: 101, Quantity: 5},
			{ItemID: 102, Quantity: 2, Phase: model.PhasePtr(1), Checked: true},
			{ItemID: 103, Quantity: 0, Phase: model.PhasePtr(2)},
		},
	}

	p := FromList(list)
	assert.Equal(t, CurrentVersion, p.Version)
	assert.Equal(t, map[int]int{101: 5, 102: 2}, p.Quantities)
	assert.Equal(t, map[int]int{102: 1}, p.PhaseAssignments)
	assert.Equal(t, []int{102}, p.CheckedIDs)
	assert.Nil(t, p.Categories)
}
