package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "json", "yaml", "yml"} {
		c, err := ByName(name)
		require.NoError(t, err, name)

		data, err := c.Marshal(sample{Name: "a", Count: 2})
		require.NoError(t, err)

		var out sample
		require.NoError(t, c.Unmarshal(data, &out))
		require.Equal(t, sample{Name: "a", Count: 2}, out)
	}

	_, err := ByName("xml")
	require.ErrorContains(t, err, "unknown codec")
}

func TestJSONCodec_compact(t *testing.T) {
	data, err := JSONCodec{}.Marshal(sample{Name: "a"})
	require.NoError(t, err)
	require.Equal(t, `{"name":"a","count":0}`, string(data))
}
