package game

import "time"

const (
	DefaultQuota              = 5
	DefaultRecharge           = 1
	DefaultQuestReward        = 1
	DefaultInitialQuestCount  = 2
	DefaultQuestClaimCooldown = 60 * time.Second
	DefaultFeedCapacity       = 500
	DefaultGMTimeout          = 20 * time.Second

	maxInitialQuests = 5
	recentWindow     = 5
)

// Tuning holds the knobs that may change while the process runs. A new
// value only affects operations that start after it is set.
type Tuning struct {
	DefaultQuota       int
	DefaultRecharge    int
	QuestReward        int
	InitialQuestCount  int
	QuestClaimCooldown time.Duration
}

func DefaultTuning() Tuning {
	return Tuning{
		DefaultQuota:       DefaultQuota,
		DefaultRecharge:    DefaultRecharge,
		QuestReward:        DefaultQuestReward,
		InitialQuestCount:  DefaultInitialQuestCount,
		QuestClaimCooldown: DefaultQuestClaimCooldown,
	}
}

func (t Tuning) normalized() Tuning {
	d := DefaultTuning()
	if t.DefaultQuota < 0 {
		t.DefaultQuota = d.DefaultQuota
	}
	if t.DefaultRecharge < 1 {
		t.DefaultRecharge = d.DefaultRecharge
	}
	if t.QuestReward < 1 {
		t.QuestReward = d.QuestReward
	}
	t.InitialQuestCount = clampQuestCount(t.InitialQuestCount, d.InitialQuestCount)
	if t.QuestClaimCooldown < 0 {
		t.QuestClaimCooldown = 0
	}
	return t
}

func clampQuestCount(n, fallback int) int {
	if n == 0 {
		n = fallback
	}
	if n < 1 {
		return 1
	}
	if n > maxInitialQuests {
		return maxInitialQuests
	}
	return n
}
