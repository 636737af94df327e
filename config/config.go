// Package config reads and edits the card mapping file. The file is a small
// YAML document with the music directory and a table of hex card IDs to
// track paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/callebjorkell/musicbox/card"
	"gopkg.in/yaml.v3"
)

// ErrCardMapped is returned by AddCard when the card already has a track.
var ErrCardMapped = errors.New("card already mapped")

type Config struct {
	MusicDir string            `yaml:"music_dir"`
	Cards    map[string]string `yaml:"cards"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %v: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Library resolves the card table into an immutable library. Relative track
// paths are joined onto the music directory, absolute ones pass through.
// Card IDs that collide after trimming are rejected.
func (c *Config) Library() (card.Library, error) {
	entries := make([]card.Entry, 0, len(c.Cards))
	seen := make(map[string]bool, len(c.Cards))
	for rawID, rawPath := range c.Cards {
		id, err := card.ParseID(strings.TrimSpace(rawID))
		if err != nil {
			return card.Library{}, err
		}
		if seen[id.String()] {
			return card.Library{}, fmt.Errorf("duplicate mapping for card %v", id)
		}
		seen[id.String()] = true
		entries = append(entries, card.Entry{
			Card:  id,
			Track: card.Track{Path: c.resolve(strings.TrimSpace(rawPath))},
		})
	}
	return card.NewLibrary(entries), nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.MusicDir == "" {
		return path
	}
	return filepath.Join(c.MusicDir, path)
}

// AddCard appends a card mapping to the config file, creating the file if
// needed. The rest of the document is kept as-is. Mapping a card twice is
// refused with ErrCardMapped.
func AddCard(path string, id card.ID, track string) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}

	cards, err := cardsNode(doc)
	if err != nil {
		return err
	}

	hexID := id.String()
	for i := 0; i < len(cards.Content); i += 2 {
		if strings.TrimSpace(cards.Content[i].Value) == hexID {
			return fmt.Errorf("%w: %v", ErrCardMapped, hexID)
		}
	}

	// quote the key so hex IDs like "0102" stay strings
	cards.Content = append(cards.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: hexID},
		&yaml.Node{Kind: yaml.ScalarNode, Value: track},
	)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write config %v: %w", path, err)
	}
	return nil
}

func loadDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %v: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %v: %w", path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return emptyDocument(), nil
	}
	return &doc, nil
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: "music_dir"},
				{Kind: yaml.ScalarNode, Value: ""},
			},
		}},
	}
}

func cardsNode(doc *yaml.Node) (*yaml.Node, error) {
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("config root is not a mapping")
	}
	root := doc.Content[0]
	for i := 0; i < len(root.Content); i += 2 {
		if root.Content[i].Value != "cards" {
			continue
		}
		value := root.Content[i+1]
		if value.Kind != yaml.MappingNode {
			if value.Kind == yaml.ScalarNode && value.Value == "" {
				// an empty "cards:" section decodes as a null scalar
				*value = yaml.Node{Kind: yaml.MappingNode}
				return value, nil
			}
			return nil, errors.New("config cards section is not a mapping")
		}
		return value, nil
	}

	cards := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "cards"},
		cards,
	)
	return cards, nil
}
