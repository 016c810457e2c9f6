package notebook

import (
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AttributeType is the type a raw string attribute is coerced to.
type AttributeType int

const (
	StringType AttributeType = iota
	IntType
	TimestampType
	DictType
)

func (t AttributeType) String() string {
	switch t {
	case StringType:
		return "string"
	case IntType:
		return "int"
	case TimestampType:
		return "timestamp"
	case DictType:
		return "dict"
	default:
		return "UNKNOWN"
	}
}

// AttributeDefinition describes a well-known attribute with its type and
// the default value that is used when the attribute is absent.
type AttributeDefinition struct {
	Key     string
	Type    AttributeType
	Default interface{}
}

// Well-known attributes.
var (
	ParentIDAttr          = AttributeDefinition{"parent_id", StringType, ""}
	TitleAttr             = AttributeDefinition{"title", StringType, ""}
	MainPayloadNameAttr   = AttributeDefinition{"main_payload_name", StringType, ""}
	CreatedTimeAttr       = AttributeDefinition{"created_time", TimestampType, time.Time{}}
	ModifiedTimeAttr      = AttributeDefinition{"modified_time", TimestampType, time.Time{}}
	OrderAttr             = AttributeDefinition{"order", IntType, 0}
	IconAttr              = AttributeDefinition{"icon", StringType, ""}
	IconOpenAttr          = AttributeDefinition{"icon_open", StringType, ""}
	TitleFgColorAttr      = AttributeDefinition{"title_fgcolor", StringType, ""}
	TitleBgColorAttr      = AttributeDefinition{"title_bgcolor", StringType, ""}
	ClientPreferencesAttr = AttributeDefinition{"client_preferences", DictType, map[string]interface{}{}}
)

// DefinedAttributes lists all well-known attributes.
// Attributes with other keys are kept as "extra" attributes on a node.
var DefinedAttributes = []AttributeDefinition{
	ParentIDAttr,
	TitleAttr,
	MainPayloadNameAttr,
	CreatedTimeAttr,
	ModifiedTimeAttr,
	OrderAttr,
	IconAttr,
	IconOpenAttr,
	TitleFgColorAttr,
	TitleBgColorAttr,
	ClientPreferencesAttr,
}

func isDefinedAttribute(key string) bool {
	for _, d := range DefinedAttributes {
		if d.Key == key {
			return true
		}
	}
	return false
}

// Present tells if the attribute is set in the given map.
func (d AttributeDefinition) Present(attrs map[string]string) bool {
	_, ok := attrs[d.Key]
	return ok
}

// Coerce returns the typed value for this attribute or the default value
// if it is absent.
func (d AttributeDefinition) Coerce(attrs map[string]string) (interface{}, error) {
	switch d.Type {
	case IntType:
		return d.Int(attrs)
	case TimestampType:
		return d.Time(attrs)
	case DictType:
		return d.Dict(attrs)
	default:
		return d.Text(attrs)
	}
}

func (d AttributeDefinition) Text(attrs map[string]string) (string, error) {
	raw, ok := attrs[d.Key]
	if !ok {
		s, _ := d.Default.(string)
		return s, nil
	}
	return raw, nil
}

func (d AttributeDefinition) Int(attrs map[string]string) (int, error) {
	raw, ok := attrs[d.Key]
	if !ok {
		i, _ := d.Default.(int)
		return i, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewInvalidStructureError("attribute %q is not an integer: %q", d.Key, raw)
	}
	return i, nil
}

// Time parses a timestamp attribute given in seconds since the epoch.
func (d AttributeDefinition) Time(attrs map[string]string) (time.Time, error) {
	raw, ok := attrs[d.Key]
	if !ok {
		t, _ := d.Default.(time.Time)
		return t, nil
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, NewInvalidStructureError("attribute %q is not a timestamp: %q", d.Key, raw)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// Dict parses a mapping attribute. The value is a YAML (or JSON) document.
func (d AttributeDefinition) Dict(attrs map[string]string) (map[string]interface{}, error) {
	raw, ok := attrs[d.Key]
	if !ok || strings.TrimSpace(raw) == "" {
		m := make(map[string]interface{})
		if def, ok := d.Default.(map[string]interface{}); ok {
			for k, v := range def {
				m[k] = v
			}
		}
		return m, nil
	}

	m := make(map[string]interface{})
	err := yaml.Unmarshal([]byte(raw), &m)
	if err != nil {
		return nil, NewInvalidStructureError("attribute %q is not a mapping: %v", d.Key, err)
	}
	return m, nil
}

// Encode converts a typed value back to its string representation.
func (d AttributeDefinition) Encode(v interface{}) (string, error) {
	switch d.Type {
	case IntType:
		i, ok := v.(int)
		if !ok {
			return "", NewInvalidStructureError("attribute %q expects an int, got %T", d.Key, v)
		}
		return strconv.Itoa(i), nil
	case TimestampType:
		t, ok := v.(time.Time)
		if !ok {
			return "", NewInvalidStructureError("attribute %q expects a time, got %T", d.Key, v)
		}
		return strconv.FormatInt(t.Unix(), 10), nil
	case DictType:
		m, ok := v.(map[string]interface{})
		if !ok {
			return "", NewInvalidStructureError("attribute %q expects a mapping, got %T", d.Key, v)
		}
		data, err := yaml.Marshal(m)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		s, ok := v.(string)
		if !ok {
			return "", NewInvalidStructureError("attribute %q expects a string, got %T", d.Key, v)
		}
		return s, nil
	}
}
