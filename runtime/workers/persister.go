package workers

import (
	"context"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/repositories"
)

// PersistWorker drains history snapshots requested by the coordinator
// and writes them to the durable store. It is the only place storage
// I/O happens, so no coordinator lock is ever held across a disk write.
//
// A failed save is logged and surfaced through the log only: in-memory
// state is the source of truth and persistence stays best-effort. The
// next snapshot request retries with a fresher whole-state view anyway.
type PersistWorker struct {
	log        *slog.Logger
	repository repositories.IHistoryRepository
	snapshots  <-chan domain.HistorySnapshot
}

func NewPersistWorker(log *slog.Logger, repository repositories.IHistoryRepository,
	snapshots <-chan domain.HistorySnapshot) *PersistWorker {
	return &PersistWorker{log: log, repository: repository, snapshots: snapshots}
}

func (w *PersistWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot := <-w.snapshots:
			if err := w.repository.Save(snapshot); err != nil {
				w.log.Error("History snapshot not persisted", "error", err)
			}
		}
	}
}
