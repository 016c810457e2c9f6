package notebook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceDefaults(t *testing.T) {
	empty := map[string]string{}

	v, err := TitleAttr.Coerce(empty)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = OrderAttr.Coerce(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = CreatedTimeAttr.Coerce(empty)
	require.NoError(t, err)
	assert.True(t, v.(time.Time).IsZero())

	v, err = ClientPreferencesAttr.Coerce(empty)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{}, v)
}

func TestCoerceValues(t *testing.T) {
	attrs := map[string]string{
		"title":              "Hello",
		"order":              " 7 ",
		"created_time":       "1609459200",
		"client_preferences": "a: 1\nb:\n  c: text\n",
	}

	s, err := TitleAttr.Text(attrs)
	require.NoError(t, err)
	assert.Equal(t, "Hello", s)

	i, err := OrderAttr.Int(attrs)
	require.NoError(t, err)
	assert.Equal(t, 7, i)

	ts, err := CreatedTimeAttr.Time(attrs)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ts)

	m, err := ClientPreferencesAttr.Dict(attrs)
	require.NoError(t, err)
	assert.Equal(t, 1, m["a"])
	assert.Equal(t, map[string]interface{}{"c": "text"}, m["b"])
}

func TestCoerceInvalid(t *testing.T) {
	attrs := map[string]string{
		"order":              "first",
		"created_time":       "2021-01-01",
		"client_preferences": "[1, 2",
	}

	_, err := OrderAttr.Coerce(attrs)
	assert.True(t, IsInvalidStructure(err), "got %v", err)
	_, err = CreatedTimeAttr.Coerce(attrs)
	assert.True(t, IsInvalidStructure(err), "got %v", err)
	_, err = ClientPreferencesAttr.Coerce(attrs)
	assert.True(t, IsInvalidStructure(err), "got %v", err)
}

func TestEncodeInverse(t *testing.T) {
	ts := time.Date(2020, 12, 24, 18, 30, 0, 0, time.UTC)
	cases := []struct {
		def   AttributeDefinition
		value interface{}
	}{
		{TitleAttr, "a title"},
		{OrderAttr, -3},
		{CreatedTimeAttr, ts},
		{ClientPreferencesAttr, map[string]interface{}{"x": "y", "n": 2}},
	}

	for _, tc := range cases {
		raw, err := tc.def.Encode(tc.value)
		require.NoError(t, err, tc.def.Key)
		v, err := tc.def.Coerce(map[string]string{tc.def.Key: raw})
		require.NoError(t, err, tc.def.Key)
		assert.Equal(t, tc.value, v, tc.def.Key)
	}

	_, err := OrderAttr.Encode("x")
	assert.True(t, IsInvalidStructure(err), "got %v", err)
}

func TestDefinedAttributes(t *testing.T) {
	assert.Len(t, DefinedAttributes, 11)
	assert.True(t, isDefinedAttribute("parent_id"))
	assert.False(t, isDefinedAttribute("x-custom"))
}
