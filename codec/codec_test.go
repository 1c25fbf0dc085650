package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreRow struct {
	Name   string             `json:"name"`
	Score  float64            `json:"score"`
	Scores map[string]float64 `json:"scores"`
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	in := scoreRow{Name: "nuclei", Score: 0.1234, Scores: map[string]float64{"0_1": 0.5, "0_2": 1.25}}

	a, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	var out scoreRow
	require.NoError(t, GoJSON{}.Unmarshal(a, &out))
	assert.Equal(t, in, out)
}

func TestGoJSONAppend(t *testing.T) {
	dst := []byte("prefix:")
	out, err := GoJSON{}.Append(dst, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "prefix:[1,2]", string(out))
}

func TestMustMarshalPanics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
	assert.Equal(t, `{"a":1}`, string(MustMarshal(nil, map[string]int{"a": 1})))
}
