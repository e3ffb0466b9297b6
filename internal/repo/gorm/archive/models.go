package archive

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ArchivedGame indexes one archived game transcript stored in the object
// store. The transcript itself is not in the database.
type ArchivedGame struct {
	gorm.Model
	GameID      string `gorm:"size:64;uniqueIndex;not null"`
	BonfireID   string `gorm:"size:128;index;not null"`
	OwnerWallet string `gorm:"size:64"`
	Prompt      string `gorm:"type:text"`
	ObjectKey   string `gorm:"size:255;not null"`
	Bytes       int64
	Episodes    int
	Quests      int
	Agents      int
	StartedAt   time.Time
	ArchivedAt  time.Time `gorm:"index"`
	// Stats holds per-agent quota totals (JSON object keyed by agent id)
	Stats datatypes.JSON `gorm:"type:json"`
}

func (ArchivedGame) TableName() string { return "archived_games" }

type AgentStats struct {
	Remaining int `json:"remaining"`
	Granted   int `json:"granted"`
	Used      int `json:"used"`
}

func (a *ArchivedGame) GetStats() map[string]AgentStats {
	out := map[string]AgentStats{}
	if len(a.Stats) == 0 {
		return out
	}
	_ = json.Unmarshal(a.Stats, &out)
	return out
}

func (a *ArchivedGame) SetStats(stats map[string]AgentStats) {
	b, _ := json.Marshal(stats)
	a.Stats = b
}
