//go:generate go run go.uber.org/mock/mockgen -source=history.go -destination=../mocks/mock_history_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
	errs "chat-relay/errors"
)

// snapshotKey is the single named blob holding the serialized history.
// Persistence is always whole-snapshot, never incremental.
const snapshotKey = "history:snapshot"

type IHistoryRepository interface {
	Save(snapshot domain.HistorySnapshot) error
	Load() (domain.HistorySnapshot, error)
}

type HistoryRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewHistoryRepository(db *badger.DB, log *slog.Logger) HistoryRepository {
	return HistoryRepository{db: db, log: log}
}

// Save overwrites the stored blob with the given snapshot. The value is
// the JSON form of {head, tail, elements} so the blob stays readable by
// anything that understands the snapshot shape.
func (r HistoryRepository) Save(snapshot domain.HistorySnapshot) error {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), blob)
	})
	if err != nil {
		return err
	}
	r.log.Debug("History snapshot persisted",
		"head", snapshot.Head, "tail", snapshot.Tail, "bytes", len(blob))
	return nil
}

// Load reads the stored blob back. A missing or empty blob yields
// ErrSnapshotNotFound; a blob that does not unmarshal is reported
// without producing a partial snapshot.
func (r HistoryRepository) Load() (domain.HistorySnapshot, error) {
	var blob []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.HistorySnapshot{}, errs.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.HistorySnapshot{}, err
	}
	if len(blob) == 0 {
		return domain.HistorySnapshot{}, errs.ErrSnapshotNotFound
	}
	var snapshot domain.HistorySnapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return domain.HistorySnapshot{}, fmt.Errorf("corrupt history snapshot: %w", err)
	}
	return snapshot, nil
}
