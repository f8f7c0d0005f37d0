package workers

import (
	"context"
	"log"
	"time"

	"github.com/kvartira/listinghub/internal/usecases"
)

// EmbeddingSweeper is a runnable that periodically reconciles stale embeddings.
// It picks up listings whose content changed while the provider was down, so
// missed syncs converge without any user action.
type EmbeddingSweeper struct {
	Sweeper             usecases.SweepEmbeddings `resolve:""`
	Logger              *log.Logger              `resolve:""`
	Interval            time.Duration            `config:"EMBEDDING_SWEEP_INTERVAL" default:"30s"`
	workerExecutionChan chan struct{}
}

// Run starts the periodic embedding sweep.
func (op EmbeddingSweeper) Run(ctx context.Context) error {
	op.Logger.Println("EmbeddingSweeper: running...")
	ticker := time.NewTicker(op.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := op.Sweeper.Execute(ctx)
			if err != nil {
				op.Logger.Printf("error sweeping embeddings: %v", err)
			}
			if op.workerExecutionChan != nil {
				op.workerExecutionChan <- struct{}{}
			}
		case <-ctx.Done():
			op.Logger.Println("EmbeddingSweeper: stopping...")
			return nil
		}
	}
}
