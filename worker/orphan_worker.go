package worker

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/core"
)

// OrphanWorker periodically sweeps the task ledger for tasks whose owning
// group has dissolved. Dissolution never cascades into tasks, so the sweep
// only reports; nothing is deleted.
type OrphanWorker struct {
	DB     *gorm.DB
	Ledger *core.TaskLedger
	Logger *log.Logger
}

func NewOrphanWorker(db *gorm.DB, ledger *core.TaskLedger, logger *log.Logger) *OrphanWorker {
	return &OrphanWorker{
		DB:     db,
		Ledger: ledger,
		Logger: logger,
	}
}

func (ow *OrphanWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	ow.Logger.Println("Orphan worker started")

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ow.Logger.Println("Orphan worker shutting down...")
			return
		case <-ticker.C:
			ow.sweep()
		}
	}
}

func (ow *OrphanWorker) sweep() {
	tasks, err := ow.Ledger.FindOrphaned()
	if err != nil {
		ow.Logger.Printf("Error scanning for orphaned tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	logrus.WithFields(logrus.Fields{
		"count":    len(tasks),
		"task_ids": ids,
	}).Warn("Found tasks whose owning group no longer exists")
}
