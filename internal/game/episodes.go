package game

import "time"

const (
	AuthorWorld = "world"
	AuthorGM    = "gm"
)

type Episode struct {
	EpisodeID        int64     `json:"episode_id"`
	GameID           string    `json:"game_id"`
	Author           string    `json:"author"`
	Content          string    `json:"content"`
	MessageCount     int       `json:"message_count"`
	ExtensionAwarded bool      `json:"extension_awarded"`
	RechargeAmount   int       `json:"recharge_amount,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// EpisodeLog is the append-only episode sequence of one game. Ids start at 1
// and are never reused.
type EpisodeLog struct {
	lastID int64
	items  []Episode
}

func (l *EpisodeLog) Append(gameID, author, content string, count int, at time.Time) Episode {
	l.lastID++
	ep := Episode{EpisodeID: l.lastID, GameID: gameID, Author: author, Content: content, MessageCount: count, CreatedAt: at}
	l.items = append(l.items, ep)
	return ep
}

func (l *EpisodeLog) Len() int { return len(l.items) }

func (l *EpisodeLog) LastID() int64 { return l.lastID }

func (l *EpisodeLog) Get(id int64) (Episode, bool) {
	// ids are dense, so the index is id-1
	if id < 1 || id > int64(len(l.items)) {
		return Episode{}, false
	}
	return l.items[id-1], true
}

// Latest returns the newest episode written by author.
func (l *EpisodeLog) Latest(author string) (Episode, bool) {
	for i := len(l.items) - 1; i >= 0; i-- {
		if l.items[i].Author == author {
			return l.items[i], true
		}
	}
	return Episode{}, false
}

// Recent returns up to n episodes by author, oldest first.
func (l *EpisodeLog) Recent(author string, n int) []Episode {
	var out []Episode
	for i := len(l.items) - 1; i >= 0 && len(out) < n; i-- {
		if author == "" || l.items[i].Author == author {
			out = append(out, l.items[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (l *EpisodeLog) markExtension(id int64, amount int) {
	if id < 1 || id > int64(len(l.items)) {
		return
	}
	l.items[id-1].ExtensionAwarded = true
	l.items[id-1].RechargeAmount = amount
}

func (l *EpisodeLog) all() []Episode {
	return append([]Episode(nil), l.items...)
}
