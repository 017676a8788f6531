package ordered

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesInsertionOrder(t *testing.T) {
	m := New[float64]()
	m.Set("grammar", 0.3)
	m.Set("vocabulary", 0.9)
	m.Set("listening", 0.5)
	m.Set("grammar", 0.4) // update keeps position

	assert.Equal(t, []string{"grammar", "vocabulary", "listening"}, m.Keys())
	v, ok := m.Get("grammar")
	assert.True(t, ok)
	assert.Equal(t, 0.4, v)
}

func TestMap_MarshalAsPairs(t *testing.T) {
	m := New[float64]()
	m.Set("grammar", 0.3)
	m.Set("vocabulary", 0.9)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `[["grammar",0.3],["vocabulary",0.9]]`, string(b))
}

func TestMap_UnmarshalPairs(t *testing.T) {
	var m Map[float64]
	err := json.Unmarshal([]byte(`[["b",0.2],["a",0.7]]`), &m)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, 0.7, v)
}

func TestMap_UnmarshalRejectsMalformedPair(t *testing.T) {
	var m Map[float64]
	err := json.Unmarshal([]byte(`[["only-key"]]`), &m)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"a":1}`), &m)
	assert.Error(t, err)
}

func TestMap_ZeroValueAndDelete(t *testing.T) {
	var m Map[int]
	m.Set("x", 1)
	m.Set("y", 2)
	m.Delete("x")
	m.Delete("missing")
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"y"}, m.Keys())
}

func TestMap_EachStops(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	var seen []string
	m.Each(func(k string, _ int) bool {
		seen = append(seen, k)
		return k != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMap_StructValues(t *testing.T) {
	type node struct {
		Level float64 `json:"level"`
	}
	m := New[node]()
	m.Set("t", node{Level: 0.5})
	b, err := json.Marshal(m)
	require.NoError(t, err)

	out := New[node]()
	require.NoError(t, json.Unmarshal(b, out))
	v, ok := out.Get("t")
	require.True(t, ok)
	assert.Equal(t, 0.5, v.Level)
}
