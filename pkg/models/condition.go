package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParamValue is one parameter of a templated condition. IsKey marks values
// that are themselves translation keys rather than literal text.
type ParamValue struct {
	Value string `json:"value"`
	IsKey bool   `json:"isKey"`
}

func (p *ParamValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.Value)
	}
	type plain ParamValue
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("condition param: %w", err)
	}
	*p = ParamValue(v)
	return nil
}

// Condition is either Plain(text) or Templated(key, params). The zero value
// is an empty plain condition.
type Condition struct {
	templated bool
	text      string
	key       string
	params    map[string]ParamValue
}

func PlainCondition(text string) Condition {
	return Condition{text: text}
}

func TemplatedCondition(key string, params map[string]ParamValue) Condition {
	return Condition{templated: true, key: key, params: copyParams(params)}
}

// RepairedCondition is what a unit carries after leaving maintenance.
func RepairedCondition(note string, noteIsKey bool) Condition {
	return TemplatedCondition(ConditionKeyRepaired, map[string]ParamValue{
		"note": {Value: note, IsKey: noteIsKey},
	})
}

const (
	ConditionKeyNew          = "new"
	ConditionKeyLegacyImport = "legacy_import"
	ConditionKeyRepaired     = "repaired"
)

func (c Condition) IsTemplated() bool { return c.templated }

// Text is the plain text, empty for templated conditions.
func (c Condition) Text() string { return c.text }

// Key is the template key, empty for plain conditions.
func (c Condition) Key() string { return c.key }

func (c Condition) Params() map[string]ParamValue { return copyParams(c.params) }

func (c Condition) IsEmpty() bool {
	if c.templated {
		return strings.TrimSpace(c.key) == ""
	}
	return strings.TrimSpace(c.text) == ""
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if !c.templated {
		return json.Marshal(c.text)
	}
	return json.Marshal(struct {
		Key    string                `json:"key"`
		Params map[string]ParamValue `json:"params,omitempty"`
	}{c.key, c.params})
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Condition{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = PlainCondition(text)
		return nil
	case data[0] == '{':
		var v struct {
			Key    string                `json:"key"`
			Params map[string]ParamValue `json:"params"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("condition: %w", err)
		}
		if v.Key == "" {
			return fmt.Errorf("condition: templated value without key")
		}
		*c = TemplatedCondition(v.Key, v.Params)
		return nil
	default:
		return fmt.Errorf("condition: unsupported value %s", string(data))
	}
}

func copyParams(params map[string]ParamValue) map[string]ParamValue {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]ParamValue, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
