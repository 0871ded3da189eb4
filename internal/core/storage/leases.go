package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/storage")

// leasePrefix 租约记录键前缀
var leasePrefix = []byte("l/")

// persistedLease 持久化的租约记录格式
type persistedLease struct {
	Peer       string `json:"peer"`
	GrantedAt  int64  `json:"granted_at"`
	ExpiresAt  int64  `json:"expires_at"`
	Credential []byte `json:"credential,omitempty"`
}

func toPersisted(rec interfaces.LeaseRecord) persistedLease {
	return persistedLease{
		Peer:       string(rec.Peer),
		GrantedAt:  rec.GrantedAt.UnixNano(),
		ExpiresAt:  rec.ExpiresAt.UnixNano(),
		Credential: rec.Credential,
	}
}

func (p persistedLease) record() interfaces.LeaseRecord {
	return interfaces.LeaseRecord{
		Peer:       types.PeerID(p.Peer),
		GrantedAt:  time.Unix(0, p.GrantedAt),
		ExpiresAt:  time.Unix(0, p.ExpiresAt),
		Credential: p.Credential,
	}
}

// ============================================================================
//                              LeaseStore
// ============================================================================

// LeaseStore BadgerDB 租约存储
//
// 键格式: l/{peerID}
// 值格式: JSON 序列化的 persistedLease
type LeaseStore struct {
	db     *badger.DB
	clock  clock.Clock
	closed atomic.Bool
}

var _ interfaces.LeaseStore = (*LeaseStore)(nil)

// Open 打开租约存储，clk 为 nil 时使用系统时钟
func Open(cfg Config, clk clock.Clock) (*LeaseStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}

	db, err := badger.Open(buildOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	logger.Debug("租约存储已打开", "path", cfg.Path, "inMemory", cfg.InMemory)
	return &LeaseStore{db: db, clock: clk}, nil
}

// buildOptions 根据配置构建 BadgerDB 选项
func buildOptions(cfg Config) badger.Options {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	return opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
}

func leaseKey(peer types.PeerID) []byte {
	k := make([]byte, 0, len(leasePrefix)+len(peer))
	k = append(k, leasePrefix...)
	return append(k, peer...)
}

// Put 写入或覆盖记录
//
// 已过期的记录不写入，同时删除旧值。
func (s *LeaseStore) Put(rec interfaces.LeaseRecord) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := rec.Peer.Validate("peer"); err != nil {
		return err
	}

	ttl := rec.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return s.Delete(rec.Peer)
	}

	data, err := json.Marshal(toPersisted(rec))
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(leaseKey(rec.Peer), data).WithTTL(ttl))
	})
}

// Get 读取记录
func (s *LeaseStore) Get(peer types.PeerID) (interfaces.LeaseRecord, error) {
	if s.closed.Load() {
		return interfaces.LeaseRecord{}, ErrClosed
	}

	var rec interfaces.LeaseRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(leaseKey(peer))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var p persistedLease
			if err := json.Unmarshal(val, &p); err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupted, err)
			}
			rec = p.record()
			return nil
		})
	})
	if err != nil {
		return interfaces.LeaseRecord{}, err
	}
	if rec.Expired(s.clock.Now()) {
		return interfaces.LeaseRecord{}, ErrNotFound
	}
	return rec, nil
}

// Delete 删除记录
func (s *LeaseStore) Delete(peer types.PeerID) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(leaseKey(peer))
	})
}

// List 返回全部未过期记录
func (s *LeaseStore) List(now time.Time) ([]interfaces.LeaseRecord, error) {
	var out []interfaces.LeaseRecord
	err := s.scan(func(_ []byte, rec interfaces.LeaseRecord) {
		if !rec.Expired(now) {
			out = append(out, rec)
		}
	})
	return out, err
}

// EvictExpired 删除已过期的记录
func (s *LeaseStore) EvictExpired(now time.Time) (int, error) {
	var expired [][]byte
	if err := s.scan(func(key []byte, rec interfaces.LeaseRecord) {
		if rec.Expired(now) {
			expired = append(expired, key)
		}
	}); err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range expired {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Debug("清理过期租约", "count", len(expired))
	return len(expired), nil
}

// scan 遍历全部租约记录，跳过损坏的数据
func (s *LeaseStore) scan(fn func(key []byte, rec interfaces.LeaseRecord)) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(leasePrefix); it.ValidForPrefix(leasePrefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var p persistedLease
			if err := json.Unmarshal(val, &p); err != nil {
				logger.Warn("跳过损坏的租约记录", "key", string(item.Key()), "error", err)
				continue
			}
			fn(item.KeyCopy(nil), p.record())
		}
		return nil
	})
}

// Close 关闭存储
func (s *LeaseStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
