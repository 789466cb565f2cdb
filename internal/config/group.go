package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Group is a free-form mapping of settings owned by one effect. Values stay
// as YAML nodes until the effect reads them with ReadEntry, so every effect
// decides its own keys and types.
type Group struct {
	entries map[string]*yaml.Node
}

// NewGroup builds a group from plain Go values.
func NewGroup(values map[string]any) (Group, error) {
	g := Group{entries: make(map[string]*yaml.Node, len(values))}
	for key, v := range values {
		if err := g.Set(key, v); err != nil {
			return Group{}, err
		}
	}
	return g, nil
}

// Set stores value under key.
func (g *Group) Set(key string, value any) error {
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if g.entries == nil {
		g.entries = make(map[string]*yaml.Node)
	}
	g.entries[key] = &node
	return nil
}

func (g Group) Has(key string) bool {
	_, ok := g.entries[key]
	return ok
}

func (g Group) Len() int { return len(g.entries) }

// Keys returns the group keys, sorted.
func (g Group) Keys() []string {
	keys := make([]string, 0, len(g.entries))
	for k := range g.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node returns the raw node stored under key, or nil.
func (g Group) Node(key string) *yaml.Node {
	return g.entries[key]
}

func (g *Group) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		g.entries = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			g.entries = nil
			return nil
		}
	case yaml.MappingNode:
		entries := make(map[string]*yaml.Node, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if key.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: effect settings must use string keys", key.Line)
			}
			entries[key.Value] = value.Content[i+1]
		}
		g.entries = entries
		return nil
	}
	return fmt.Errorf("line %d: effect settings must be a mapping", value.Line)
}

func (g Group) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range g.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			g.entries[key],
		)
	}
	return node, nil
}

// ReadEntry decodes key from g into a T. A missing key, or a value that does
// not decode as T, yields def.
func ReadEntry[T any](g Group, key string, def T) T {
	node, ok := g.entries[key]
	if !ok || node == nil {
		return def
	}
	var out T
	if err := node.Decode(&out); err != nil {
		return def
	}
	return out
}
