package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_PreservesKeyOrderAndNumbers(t *testing.T) {
	in := `{"zeta":"z","alpha":1.50,"mid":null,"flag":true}`

	var r Row
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	assert.Equal(t, []string{"zeta", "alpha", "mid", "flag"}, r.Keys())

	v, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, json.Number("1.50"), v)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRow_RejectsNestedValues(t *testing.T) {
	var r Row
	err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &r)
	assert.ErrorIs(t, err, errRowNested)
	assert.ErrorIs(t, err, ErrInvalidRow)

	err = json.Unmarshal([]byte(`{"a":[1,2]}`), &r)
	assert.ErrorIs(t, err, errRowNested)
}

func TestRow_RejectsDuplicateKeysAndNonObjects(t *testing.T) {
	var r Row
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a":1,"a":2}`), &r), ErrInvalidRow)
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1,2]`), &r), ErrInvalidRow)
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &r))
}

func TestRow_ValueScan(t *testing.T) {
	r := NewRow("id", "1", "name", "Widget", "price", json.Number("9.99"))
	v, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1","name":"Widget","price":9.99}`, v)

	var back Row
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, r.Keys(), back.Keys())
	p, _ := back.Get("price")
	assert.Equal(t, json.Number("9.99"), p)

	require.Error(t, back.Scan(42))
}

func TestRow_SameKeys(t *testing.T) {
	a := NewRow("id", 1, "name", "x")
	b := NewRow("name", "y", "id", 2)
	c := NewRow("id", 1, "title", "x")
	d := NewRow("id", 1)

	assert.True(t, a.SameKeys(b))
	assert.False(t, a.SameKeys(c))
	assert.False(t, a.SameKeys(d))
}

func TestRow_SetOverwritesInPlace(t *testing.T) {
	r := NewRow("a", 1, "b", 2)
	r.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, r.Keys())
	v, _ := r.Get("a")
	assert.Equal(t, 3, v)
}
