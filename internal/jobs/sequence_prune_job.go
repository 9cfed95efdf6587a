package jobs

import (
	"context"
	"fmt"
	"time"

	"ordermgmt-be/internal/logger"
	"ordermgmt-be/internal/order"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner deletes per-day order counters older than a cutoff day.
type Pruner interface {
	PruneSequences(ctx context.Context, before string) (int64, error)
}

// SequencePruneJob periodically drops old order_sequence rows. Only past days
// are touched; the current day's counter always survives.
type SequencePruneJob struct {
	pruner    Pruner
	cron      *cron.Cron
	schedule  string
	retention int
	location  *time.Location
	now       func() time.Time
	log       *zap.Logger
}

func NewSequencePruneJob(pruner Pruner, schedule string, retentionDays int, loc *time.Location) *SequencePruneJob {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SequencePruneJob{
		pruner:    pruner,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		schedule:  schedule,
		retention: retentionDays,
		location:  loc,
		now:       time.Now,
		log:       logger.L().With(zap.String("component", "sequence_prune_job")),
	}
}

// Cutoff is the first day whose counter is kept.
func (j *SequencePruneJob) Cutoff() string {
	return j.now().In(j.location).AddDate(0, 0, -j.retention).Format(order.DateLayout)
}

func (j *SequencePruneJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.Cutoff()
	n, err := j.pruner.PruneSequences(ctx, cutoff)
	if err != nil {
		j.log.Error("sequence prune failed", zap.String("before", cutoff), zap.Error(err))
		return 0, err
	}
	j.log.Info("sequence prune finished", zap.String("before", cutoff), zap.Int64("deleted", n))
	return n, nil
}

func (j *SequencePruneJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.log.Info("sequence prune job started", zap.String("schedule", j.schedule), zap.Int("retention_days", j.retention))
	return nil
}

// Stop waits for a running prune to finish.
func (j *SequencePruneJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("sequence prune job stopped")
}
