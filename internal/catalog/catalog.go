// Package catalog holds the quest templates new games are seeded from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/cuihairu/bonfire/internal/game"
)

//go:embed quests.yaml
var defaultYAML []byte

const schema = `{
  "type": "object",
  "required": ["quests"],
  "properties": {
    "quests": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["description"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "keyword": {"type": "string"},
          "reward": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

type Template struct {
	Description string `yaml:"description" json:"description"`
	Keyword     string `yaml:"keyword" json:"keyword,omitempty"`
	Reward      int    `yaml:"reward" json:"reward,omitempty"`
}

type Catalog struct {
	Quests []Template `yaml:"quests" json:"quests"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded quest catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes YAML and validates it against the catalog schema.
func Parse(b []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog json: %w", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(js))
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("catalog invalid: %s", strings.Join(msgs, "; "))
	}
	var c Catalog
	if err := json.Unmarshal(js, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Pick returns n drafts for prompt. The starting template depends on the
// prompt so different games open differently, and the result is stable for
// a given prompt.
func (c *Catalog) Pick(prompt string, n int) []game.QuestDraft {
	if c == nil || len(c.Quests) == 0 || n <= 0 {
		return nil
	}
	subject := strings.TrimSpace(prompt)
	if subject == "" {
		subject = "the bonfire"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	start := int(h.Sum32() % uint32(len(c.Quests)))
	out := make([]game.QuestDraft, 0, n)
	for i := 0; i < n; i++ {
		t := c.Quests[(start+i)%len(c.Quests)]
		out = append(out, game.QuestDraft{
			Description: strings.ReplaceAll(t.Description, "{prompt}", subject),
			Keyword:     t.Keyword,
			Reward:      t.Reward,
		})
	}
	return out
}
