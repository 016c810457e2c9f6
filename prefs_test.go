package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestPreferencesGetOrDefault(t *testing.T) {
	p := newPreferences(map[string]interface{}{
		"s": "text",
		"i": 3,
		"f": 1.5,
		"b": true,
	})

	assert.Equal(t, "text", p.GetString("s", "x"))
	assert.Equal(t, "x", p.GetString("missing", "x"))
	assert.Equal(t, "x", p.GetString("i", "x"), "wrong type")

	assert.Equal(t, 3, p.GetInt("i", 0))
	assert.Equal(t, 9, p.GetInt("f", 9), "not integral")
	assert.Equal(t, 9, p.GetInt("missing", 9))

	assert.Equal(t, 1.5, p.GetFloat("f", 0))
	assert.Equal(t, 3.0, p.GetFloat("i", 0))

	assert.True(t, p.GetBool("b", false))
	assert.True(t, p.GetBool("missing", true))

	assert.False(t, p.IsDirty(), "reading does not change anything")
}

func TestPreferencesDefine(t *testing.T) {
	p := newPreferences(nil)
	assert.True(t, p.Define("k", "first"))
	assert.False(t, p.Define("k", "second"))
	assert.Equal(t, "first", p.GetString("k", ""))
	assert.True(t, p.IsDirty())
}

func TestPreferencesSections(t *testing.T) {
	p := newPreferences(nil)
	ed := p.Section("editor")
	ed.Set("size", 10)
	ed.Section("colors").Set("fg", "black")
	p.Set("top", "level")

	assert.Equal(t, []string{"editor"}, p.Sections())
	assert.Equal(t, []string{"top"}, p.Keys())
	assert.True(t, p.HasSection("editor"))
	assert.False(t, p.Has("editor"))
	assert.Equal(t, "black", p.Section("editor").Section("colors").GetString("fg", ""))

	p.markClean()
	ed.Set("size", 10)
	assert.False(t, p.IsDirty(), "same value")
	ed.Set("size", 11)
	assert.True(t, p.IsDirty(), "sections share the dirty state")

	p.markClean()
	p.Delete("missing")
	assert.False(t, p.IsDirty())
	p.Delete("editor")
	assert.True(t, p.IsDirty())
	assert.Empty(t, p.Sections())
}

func TestPreferencesYAML(t *testing.T) {
	p := newPreferences(nil)
	p.Section("view").Set("zoom", 1.25)
	p.Set("name", "n")

	raw, err := ClientPreferencesAttr.Encode(p.toMap())
	assert.NoError(t, err)

	var m map[string]interface{}
	assert.NoError(t, yaml.Unmarshal([]byte(raw), &m))
	q := newPreferences(m)
	assert.Equal(t, 1.25, q.Section("view").GetFloat("zoom", 0))
	assert.Equal(t, "n", q.GetString("name", ""))
}

func TestPreferencesMissingSection(t *testing.T) {
	p := newPreferences(map[string]interface{}{"view": "scalar"})

	view := p.Section("view")
	assert.Equal(t, "light", view.GetString("theme", "light"))
	assert.Equal(t, "x", p.Section("missing").Section("deeper").GetString("k", "x"))
	assert.Empty(t, view.Keys())
	p.Section("missing").Delete("k")

	assert.False(t, p.IsDirty(), "reading does not change anything")
	assert.Empty(t, p.Sections())
	assert.Equal(t, "scalar", p.GetString("view", ""))

	// two handles to the same missing section write to one map
	a := p.Section("editor").Section("font")
	b := p.Section("editor").Section("font")
	a.Set("size", 12)
	b.Set("name", "mono")
	assert.True(t, p.IsDirty())
	assert.Equal(t, []string{"editor"}, p.Sections())
	font := p.Section("editor").Section("font")
	assert.Equal(t, 12, font.GetInt("size", 0))
	assert.Equal(t, "mono", font.GetString("name", ""))

	view.Set("theme", "dark")
	assert.True(t, p.HasSection("view"), "writing replaces the scalar")
	assert.Equal(t, "dark", p.Section("view").GetString("theme", ""))
}
