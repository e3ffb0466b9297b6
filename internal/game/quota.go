package game

import (
	"fmt"
	"time"
)

type LedgerKind string

const (
	LedgerCredit LedgerKind = "credit"
	LedgerDebit  LedgerKind = "debit"
)

// Ledger reasons.
const (
	ReasonRegistration  = "registration"
	ReasonTurn          = "turn"
	ReasonGMExtension   = "gm_extension"
	ReasonQuestReward   = "quest_reward"
	ReasonOwnerRecharge = "owner_recharge"
)

type LedgerEntry struct {
	EntryID   string     `json:"entry_id"`
	Kind      LedgerKind `json:"kind"`
	Reason    string     `json:"reason"`
	Amount    int        `json:"amount"`
	QuestID   string     `json:"quest_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Quota is the turn allowance of one agent together with the ledger that
// explains every change to it. Remaining never goes below zero.
type Quota struct {
	Remaining int           `json:"quota_remaining"`
	Granted   int           `json:"quota_granted"`
	Used      int           `json:"turns_used"`
	Ledger    []LedgerEntry `json:"ledger"`
}

// Debit consumes one turn. The quota is left untouched when nothing remains.
func (q *Quota) Debit(entryID string, at time.Time) error {
	if q.Remaining <= 0 {
		return ErrQuotaExhausted
	}
	q.Remaining--
	q.Used++
	q.Ledger = append(q.Ledger, LedgerEntry{EntryID: entryID, Kind: LedgerDebit, Reason: ReasonTurn, Amount: 1, CreatedAt: at})
	return nil
}

// Credit adds amount turns. There is no upper bound.
func (q *Quota) Credit(entryID string, amount int, reason, questID string, at time.Time) (LedgerEntry, error) {
	if amount < 1 {
		return LedgerEntry{}, fmt.Errorf("%w: credit amount must be >= 1, got %d", ErrInvalidArgument, amount)
	}
	q.Remaining += amount
	q.Granted += amount
	e := LedgerEntry{EntryID: entryID, Kind: LedgerCredit, Reason: reason, Amount: amount, QuestID: questID, CreatedAt: at}
	q.Ledger = append(q.Ledger, e)
	return e, nil
}

func (q Quota) clone() Quota {
	cp := q
	cp.Ledger = append([]LedgerEntry(nil), q.Ledger...)
	return cp
}
