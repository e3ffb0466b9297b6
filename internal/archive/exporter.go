package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/cuihairu/bonfire/internal/game"
	"github.com/cuihairu/bonfire/internal/objstore"
	archiverepo "github.com/cuihairu/bonfire/internal/repo/gorm/archive"
)

const contentType = "application/zstd"

// Key is the object key of an archived game transcript.
func Key(bonfireID, gameID string) string {
	return fmt.Sprintf("games/%s/%s.json.zst", bonfireID, gameID)
}

// Exporter writes archived game snapshots as zstd-compressed JSON to an
// object store and indexes them in the database. The in-memory engine
// stays authoritative; the export is a durable copy for later inspection.
type Exporter struct {
	store objstore.Store
	repo  *archiverepo.Repo
	enc   *zstd.Encoder
	dec   *zstd.Decoder
	now   func() time.Time
}

// NewExporter builds an exporter. repo may be nil to skip indexing.
func NewExporter(store objstore.Store, repo *archiverepo.Repo) (*Exporter, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Exporter{store: store, repo: repo, enc: enc, dec: dec, now: time.Now}, nil
}

// Archive implements game.Archiver.
func (x *Exporter) Archive(ctx context.Context, snap game.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.GameID, err)
	}
	blob := x.enc.EncodeAll(raw, make([]byte, 0, len(raw)/3))
	key := Key(snap.BonfireID, snap.GameID)
	if err := x.store.Put(ctx, key, bytes.NewReader(blob), int64(len(blob)), contentType); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	slog.Info("game archived", "bonfire_id", snap.BonfireID, "game_id", snap.GameID, "key", key, "bytes", len(blob), "raw_bytes", len(raw))
	if x.repo == nil {
		return nil
	}
	return x.repo.Upsert(ctx, indexRow(snap, key, int64(len(blob)), x.now()))
}

func indexRow(snap game.Snapshot, key string, size int64, now time.Time) *archiverepo.ArchivedGame {
	archivedAt := now
	if snap.ArchivedAt != nil {
		archivedAt = *snap.ArchivedAt
	}
	row := &archiverepo.ArchivedGame{
		GameID:      snap.GameID,
		BonfireID:   snap.BonfireID,
		OwnerWallet: snap.OwnerWallet,
		Prompt:      snap.Prompt,
		ObjectKey:   key,
		Bytes:       size,
		Episodes:    len(snap.Episodes),
		Quests:      len(snap.Quests),
		Agents:      len(snap.Agents),
		StartedAt:   snap.CreatedAt,
		ArchivedAt:  archivedAt,
	}
	stats := make(map[string]archiverepo.AgentStats, len(snap.Agents))
	for _, a := range snap.Agents {
		stats[a.AgentID] = archiverepo.AgentStats{Remaining: a.Quota.Remaining, Granted: a.Quota.Granted, Used: a.Quota.Used}
	}
	row.SetStats(stats)
	return row
}

// Load reads an exported snapshot back.
func (x *Exporter) Load(ctx context.Context, bonfireID, gameID string) (game.Snapshot, error) {
	var snap game.Snapshot
	rc, err := x.store.Get(ctx, Key(bonfireID, gameID))
	if err != nil {
		return snap, err
	}
	defer rc.Close()
	blob, err := io.ReadAll(rc)
	if err != nil {
		return snap, err
	}
	raw, err := x.dec.DecodeAll(blob, nil)
	if err != nil {
		return snap, fmt.Errorf("decompress %s: %w", gameID, err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", gameID, err)
	}
	return snap, nil
}

// Find resolves gameID through the index and loads its snapshot.
func (x *Exporter) Find(ctx context.Context, gameID string) (game.Snapshot, error) {
	if x.repo == nil {
		return game.Snapshot{}, fmt.Errorf("archived game %q: %w", gameID, game.ErrNotFound)
	}
	row, err := x.repo.Get(ctx, gameID)
	if errors.Is(err, archiverepo.ErrNotFound) {
		return game.Snapshot{}, fmt.Errorf("archived game %q: %w", gameID, game.ErrNotFound)
	}
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, err := x.Load(ctx, row.BonfireID, gameID)
	if errors.Is(err, objstore.ErrNotExist) {
		return snap, fmt.Errorf("archived game %q: %w", gameID, game.ErrNotFound)
	}
	return snap, err
}

// List returns the indexed archives of a bonfire, newest first.
func (x *Exporter) List(ctx context.Context, bonfireID string, limit int) ([]*archiverepo.ArchivedGame, error) {
	if x.repo == nil {
		return nil, nil
	}
	return x.repo.ListByBonfire(ctx, bonfireID, limit)
}

func (x *Exporter) Close() {
	x.enc.Close()
	x.dec.Close()
}

var _ game.Archiver = (*Exporter)(nil)
