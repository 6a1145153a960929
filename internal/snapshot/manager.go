package snapshot

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/typeregistry"
)

// BadgerDB key prefixes, mirroring the teacher's graph:snap:* schema one
// level up: this project has no multi-project server process, so the key
// space is flat under cf:snap: rather than keyed by a project hash too.
const (
	keyPrefix       = "cf:snap:"
	keySuffixData   = ":data"
	keySuffixMeta   = ":meta"
	keyLatestSuffix = ":latest"
)

// Metadata describes one saved snapshot.
type Metadata struct {
	SnapshotID     string `json:"snapshot_id"`
	ContentHash    string `json:"content_hash"` // hash of the input SemanticData
	CreatedAtMilli int64  `json:"created_at_milli"`
	NodeCount      int    `json:"node_count"`
	EdgeCount      int    `json:"edge_count"`
	SchemaVersion  string `json:"schema_version"`
	CompressedSize int64  `json:"compressed_size"`
}

// Manager persists (Context Graph, Type Registry) pairs to BadgerDB,
// adapted wholesale from the teacher's SnapshotManager: gzip-compressed
// JSON, a content hash for addressing, and a "latest" pointer per key.
type Manager struct {
	db *badger.DB
}

// New wraps an already-opened BadgerDB handle. The caller owns the
// database's lifecycle (open/close).
func New(db *badger.DB) (*Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("snapshot: badger db must not be nil")
	}
	return &Manager{db: db}, nil
}

// ContentHash computes the cache key for a raw (canonicalized) semantic
// data JSON payload. Callers re-marshal the parsed SemanticData with
// sorted map keys (encoding/json already does this for Go maps) before
// hashing so semantically-identical-but-differently-formatted input hits
// the same cache entry.
func ContentHash(canonicalJSON []byte) string {
	sum := sha256.Sum256(canonicalJSON)
	return hex.EncodeToString(sum[:])
}

// Save compresses and persists g/reg under contentHash, tagging the entry
// with a fresh random SnapshotID on every call.
func (m *Manager) Save(ctx context.Context, contentHash string, g *graphmodel.Graph, reg *typeregistry.Registry) (*Metadata, error) {
	typeIDs := reg.IDs()
	sort.Strings(typeIDs)

	sg := toSerializable(g, reg, typeIDs)
	payload, err := json.Marshal(sg)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal graph: %w", err)
	}

	var compressed bytes.Buffer
	gw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("snapshot: gzip writer: %w", err)
	}
	if _, err := gw.Write(payload); err != nil {
		return nil, fmt.Errorf("snapshot: compress graph: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: close gzip writer: %w", err)
	}

	snapshotID := uuid.NewString()
	meta := &Metadata{
		SnapshotID:     snapshotID,
		ContentHash:    contentHash,
		CreatedAtMilli: time.Now().UnixMilli(),
		NodeCount:      g.NodeCount(),
		EdgeCount:      len(sg.Edges),
		SchemaVersion:  SchemaVersion,
		CompressedSize: int64(compressed.Len()),
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal metadata: %w", err)
	}

	dataKey := []byte(keyPrefix + contentHash + keySuffixData)
	metaKey := []byte(keyPrefix + contentHash + keySuffixMeta)
	latestKey := []byte(keyPrefix + contentHash + keyLatestSuffix)

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(dataKey, compressed.Bytes()); err != nil {
			return err
		}
		if err := txn.Set(metaKey, metaJSON); err != nil {
			return err
		}
		return txn.Set(latestKey, []byte(snapshotID))
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: write to badger: %w", err)
	}

	slog.Debug("snapshot saved", "content_hash", contentHash, "nodes", meta.NodeCount, "edges", meta.EdgeCount)
	return meta, nil
}

// Load retrieves the snapshot stored under contentHash, if any.
func (m *Manager) Load(ctx context.Context, contentHash string) (*graphmodel.Graph, *typeregistry.Registry, *Metadata, error) {
	dataKey := []byte(keyPrefix + contentHash + keySuffixData)
	metaKey := []byte(keyPrefix + contentHash + keySuffixMeta)

	var compressed, metaJSON []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dataKey)
		if err != nil {
			return err
		}
		if compressed, err = item.ValueCopy(nil); err != nil {
			return err
		}
		metaItem, err := txn.Get(metaKey)
		if err != nil {
			return err
		}
		metaJSON, err = metaItem.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil, nil, nil
		}
		return nil, nil, nil, fmt.Errorf("snapshot: read from badger: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: gzip reader: %w", err)
	}
	defer gz.Close()
	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: decompress: %w", err)
	}

	var sg SerializableGraph
	if err := json.Unmarshal(payload, &sg); err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: unmarshal graph: %w", err)
	}
	if sg.SchemaVersion != SchemaVersion {
		return nil, nil, nil, fmt.Errorf("snapshot: schema version %q, want %q", sg.SchemaVersion, SchemaVersion)
	}

	var meta Metadata
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: unmarshal metadata: %w", err)
	}

	g, reg := fromSerializable(sg)
	return g, reg, &meta, nil
}
