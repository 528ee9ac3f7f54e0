package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"chat-relay/domain"
	errs "chat-relay/errors"
	"chat-relay/internal"
	"chat-relay/repositories"
)

// Read-only inspector for the persisted history snapshot: what the
// relay would serve on the next import-chat.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening while the relay holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Load and render the snapshot
	snapshot, err := repositories.NewHistoryRepository(db, slog.Default()).Load()
	if errors.Is(err, errs.ErrSnapshotNotFound) {
		fmt.Println("No history snapshot stored yet.")
		return
	}
	if err != nil {
		log.Fatalf("Failed to load history snapshot: %v", err)
	}

	history := domain.FromSnapshot(snapshot)
	header := fmt.Sprintf(" History: %d message(s) [head=%d tail=%d] ",
		history.Length(), snapshot.Head, snapshot.Tail)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Pos", "Sender", "Content", "At"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for i, message := range history.Messages() {
		table.Append([]string{
			fmt.Sprintf("%d", snapshot.Head+i),
			fmt.Sprintf("%s (%s)", message.SenderName, message.SenderID),
			message.Content,
			message.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}
