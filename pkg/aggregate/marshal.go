package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Bucketed groupings marshal as objects whose keys follow calendar order
// rather than Go's map order.

type orderedEntry struct {
	key   string
	value any
}

// MarshalJSON writes months in chronological order.
func (c CommitsPerMonth) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(c.orderedEntries())
}

// MarshalYAML writes months in chronological order.
func (c CommitsPerMonth) MarshalYAML() (any, error) {
	return marshalOrderedYAML(c.orderedEntries())
}

func (c CommitsPerMonth) orderedEntries() []orderedEntry {
	entries := make([]orderedEntry, 0, len(c))
	for _, month := range c.Months() {
		entries = append(entries, orderedEntry{key: month, value: c[month]})
	}

	return entries
}

// MarshalJSON writes weekdays by name, Monday first.
func (c CommitsPerWeekday) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(c.orderedEntries())
}

// MarshalYAML writes weekdays by name, Monday first.
func (c CommitsPerWeekday) MarshalYAML() (any, error) {
	return marshalOrderedYAML(c.orderedEntries())
}

func (c CommitsPerWeekday) orderedEntries() []orderedEntry {
	entries := make([]orderedEntry, 0, len(c))

	for _, d := range c.Weekdays() {
		if stats, ok := c[d]; ok {
			entries = append(entries, orderedEntry{key: d.String(), value: stats})
		}
	}

	return entries
}

// MarshalJSON writes hours in ascending order.
func (c CommitsPerDayHour) MarshalJSON() ([]byte, error) {
	return marshalOrderedJSON(c.orderedEntries())
}

// MarshalYAML writes hours in ascending order.
func (c CommitsPerDayHour) MarshalYAML() (any, error) {
	return marshalOrderedYAML(c.orderedEntries())
}

func (c CommitsPerDayHour) orderedEntries() []orderedEntry {
	entries := make([]orderedEntry, 0, len(c))

	for _, h := range c.Hours() {
		if stats, ok := c[h]; ok {
			entries = append(entries, orderedEntry{key: strconv.Itoa(h), value: stats})
		}
	}

	return entries
}

func marshalOrderedJSON(entries []orderedEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(entry.key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %s: %w", entry.key, err)
		}

		value, err := json.Marshal(entry.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", entry.key, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func marshalOrderedYAML(entries []orderedEntry) (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, entry := range entries {
		value := &yaml.Node{}

		err := value.Encode(entry.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", entry.key, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.key},
			value,
		)
	}

	return node, nil
}
