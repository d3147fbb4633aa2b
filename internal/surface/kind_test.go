package surface

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"grass":               KindGrass,
		"Grass":               KindGrass,
		" WATER ":             KindWater,
		"deep_water":          KindDeepWater,
		"SurfaceType_Default": KindDefault,
		"3":                   KindStone,
		"kind_42":             Kind(42),
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "lava", "300"} {
		_, err := ParseKind(bad)
		assert.ErrorIs(t, err, ErrUnknownKind, bad)
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range append(AllKinds(), Kind(77)) {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(Entry{Kind: KindMetal, Bundle: EffectBundle{Sound: "clang"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"metal","bundle":{"sound":"clang"}}`, string(data))

	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"type":"snow"}`), &e))
	assert.Equal(t, KindSnow, e.Kind)
}
