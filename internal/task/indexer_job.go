package task

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
	"github.com/hippocampus-web3/thorchain-indexer/internal/indexer"
	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
)

// IndexerJob ticks the memo indexing loop.
type IndexerJob struct {
	indexer  *indexer.Indexer
	interval time.Duration
}

func NewIndexerJob(ix *indexer.Indexer, cfg config.IndexerConfig) *IndexerJob {
	interval := time.Duration(cfg.Interval) * time.Second
	if interval == 0 {
		interval = time.Minute
	}
	return &IndexerJob{
		indexer:  ix,
		interval: interval,
	}
}

func (j *IndexerJob) GetName() string {
	return "memo_indexer"
}

func (j *IndexerJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *IndexerJob) Execute() {
	logger.Debug("Starting indexer tick")
	j.indexer.Run()
	logger.Debug("Indexer tick finished")
}
