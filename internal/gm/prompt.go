package gm

import (
	"fmt"
	"strings"

	"github.com/cuihairu/bonfire/internal/completion"
	"github.com/cuihairu/bonfire/internal/game"
)

func decisionMessages(in game.DecisionInput, maxExt int) []completion.Message {
	sys := fmt.Sprintf(`You are the game master of a shared story game.
Read the newest episode and decide whether the player earned extra turns.
Reply with strict JSON only:
{"extension_awarded": <integer 0..%d>, "reaction": "<one or two sentences in character>", "world_state_update": "<short updated world summary>", "quest": {"description": "...", "keyword": "..."} or null}
Award more for discoveries, completed objectives and milestones. Propose a quest only when the episode opens a new objective.
When the story moves through space you may add "world_changes": {"new_rooms": [{"name", "description", "connections": [room names]}], "room_movements": [{"agent_id", "room"}], "new_npcs": [{"name", "room", "personality"}], "new_objects": [{"name", "description", "obj_type", "location_type", "location_id"}], "object_grants": [{"object", "agent_id"}]}.`, maxExt)

	var b strings.Builder
	fmt.Fprintf(&b, "Game prompt: %s\n", in.Prompt)
	fmt.Fprintf(&b, "World state: %s\n", in.WorldState)
	fmt.Fprintf(&b, "Agent %s has %d turns left.\n", in.AgentID, in.QuotaRemaining)
	if len(in.Rooms) > 0 {
		fmt.Fprintf(&b, "Rooms: %s\n", strings.Join(in.Rooms, ", "))
	}
	if in.CurrentRoom != "" {
		fmt.Fprintf(&b, "The agent is in %s.\n", in.CurrentRoom)
	}
	if len(in.OpenQuests) > 0 {
		b.WriteString("Open quests:\n")
		for _, q := range in.OpenQuests {
			fmt.Fprintf(&b, "- %s\n", q.Description)
		}
	}
	if len(in.RecentEpisodes) > 0 {
		b.WriteString("Earlier episodes by this agent:\n")
		for _, ep := range in.RecentEpisodes {
			fmt.Fprintf(&b, "#%d %s\n", ep.EpisodeID, ep.Content)
		}
	}
	fmt.Fprintf(&b, "Newest episode #%d:\n%s\n", in.Episode.EpisodeID, in.Episode.Content)
	if in.Signal {
		b.WriteString("The owner asked for a game master reaction to this episode.\n")
	}
	return []completion.Message{{Role: "system", Content: sys}, {Role: "user", Content: b.String()}}
}

func seedMessages(req game.SeedRequest) []completion.Message {
	sys := fmt.Sprintf(`You open a new shared story game.
Reply with strict JSON only:
{"episode_summary": "<opening scene, 2-4 sentences>", "quests": [{"description": "...", "keyword": "<single word>", "reward": 1}]}
Write exactly %d quests.`, req.QuestCount)
	return []completion.Message{{Role: "system", Content: sys}, {Role: "user", Content: "Prompt: " + req.Prompt}}
}
