package profiles

import (
	"bytes"
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OrderedCounts is a key to count mapping that keeps its entry order when
// encoded as a JSON object or YAML mapping.
type OrderedCounts []CategoryCount

// MarshalJSON encodes the entries as one JSON object in slice order.
func (o OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the entries as one mapping node in slice order.
func (o OrderedCounts) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range o {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.Count)},
		)
	}
	return node, nil
}

// Get returns the count stored under key.
func (o OrderedCounts) Get(key string) (int, bool) {
	for _, e := range o {
		if e.Value == key {
			return e.Count, true
		}
	}
	return 0, false
}

// Keys lists the keys in order.
func (o OrderedCounts) Keys() []string {
	out := make([]string, len(o))
	for i, e := range o {
		out[i] = e.Value
	}
	return out
}
