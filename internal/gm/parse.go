package gm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cuihairu/bonfire/internal/game"
)

const (
	SourceCompletion = "completion"
	SourceRules      = "rules"
)

type evaluation struct {
	Extension  int
	Reaction   string
	WorldState string
	Quest      *game.QuestDraft
	World      *game.WorldChanges
	Source     string
}

const decisionSchema = `{
  "type": "object",
  "required": ["extension_awarded"],
  "properties": {
    "extension_awarded": {"type": ["integer", "number", "boolean"]},
    "reaction": {"type": "string"},
    "world_state_update": {"type": "string"},
    "quest": {
      "type": ["object", "null"],
      "required": ["description"],
      "properties": {
        "description": {"type": "string"},
        "keyword": {"type": "string"},
        "reward": {"type": "integer"}
      }
    },
    "world_changes": {
      "type": ["object", "null"],
      "properties": {
        "new_rooms": {"type": "array", "items": {"type": "object", "required": ["name"]}},
        "room_movements": {"type": "array", "items": {"type": "object", "required": ["agent_id", "room"]}},
        "new_npcs": {"type": "array", "items": {"type": "object", "required": ["name", "room"]}},
        "new_objects": {"type": "array", "items": {"type": "object", "required": ["name"]}},
        "object_grants": {"type": "array", "items": {"type": "object", "required": ["object", "agent_id"]}}
      }
    }
  }
}`

const seedSchema = `{
  "type": "object",
  "required": ["episode_summary"],
  "properties": {
    "episode_summary": {"type": "string", "minLength": 1},
    "quests": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "keyword": {"type": "string"},
          "reward": {"type": "integer"}
        }
      }
    }
  }
}`

var (
	decisionLoader = gojsonschema.NewStringLoader(decisionSchema)
	seedLoader     = gojsonschema.NewStringLoader(seedSchema)
)

// extractObject returns the text between the first '{' and the last '}',
// which tolerates markdown fences and chatter around the JSON.
func extractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in completion")
	}
	return raw[start : end+1], nil
}

func validate(loader gojsonschema.JSONLoader, doc string) error {
	res, err := gojsonschema.Validate(loader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	var msgs []string
	for i, e := range res.Errors() {
		if i >= 5 {
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema: %s", strings.Join(msgs, "; "))
}

type decisionDoc struct {
	ExtensionAwarded json.RawMessage    `json:"extension_awarded"`
	Reaction         string             `json:"reaction"`
	WorldStateUpdate string             `json:"world_state_update"`
	Quest            *game.QuestDraft   `json:"quest"`
	WorldChanges     *game.WorldChanges `json:"world_changes"`
}

func parseEvaluation(raw string) (evaluation, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return evaluation{}, err
	}
	if err := validate(decisionLoader, obj); err != nil {
		return evaluation{}, err
	}
	var doc decisionDoc
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return evaluation{}, err
	}
	ext, err := extensionValue(doc.ExtensionAwarded)
	if err != nil {
		return evaluation{}, err
	}
	ev := evaluation{
		Extension:  ext,
		Reaction:   strings.TrimSpace(doc.Reaction),
		WorldState: strings.TrimSpace(doc.WorldStateUpdate),
		Source:     SourceCompletion,
	}
	if doc.Quest != nil && strings.TrimSpace(doc.Quest.Description) != "" {
		ev.Quest = doc.Quest
	}
	if doc.WorldChanges != nil && !doc.WorldChanges.Empty() {
		ev.World = doc.WorldChanges
	}
	return ev, nil
}

// maxRawExtension bounds model-supplied numbers before int conversion.
const maxRawExtension = 1 << 20

func extensionValue(raw json.RawMessage) (int, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("extension_awarded: %w", err)
	}
	switch {
	case f <= 0:
		return 0, nil
	case f >= maxRawExtension:
		return maxRawExtension, nil
	}
	return int(math.Floor(f)), nil
}

type seedDoc struct {
	EpisodeSummary string            `json:"episode_summary"`
	Quests         []game.QuestDraft `json:"quests"`
}

func parseSeed(raw string) (seedDoc, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return seedDoc{}, err
	}
	if err := validate(seedLoader, obj); err != nil {
		return seedDoc{}, err
	}
	var doc seedDoc
	err = json.Unmarshal([]byte(obj), &doc)
	return doc, err
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
