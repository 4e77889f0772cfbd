package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSweeper 按 SWEEP_INTERVAL 定时标记逾期借用，ctx 结束即退出
func (a *App) RunSweeper(ctx context.Context) {
	interval := a.Config.SweepInterval
	if interval <= 0 {
		return
	}
	a.Log.Info("overdue sweeper started", zap.Duration("interval", interval))
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := a.Repo.SweepOverdue(ctx, a.Repo.Now()); err != nil {
				a.Log.Warn("overdue sweep failed", zap.Error(err))
			}
		}
	}
}
