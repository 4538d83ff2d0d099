// Package jobs 注册文档维护定时任务.
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/casefile/pkg/configs"
	"github.com/yeisme/casefile/pkg/internal/service"
	"github.com/yeisme/casefile/pkg/log"
	"github.com/yeisme/casefile/pkg/scheduler"
)

// Maintainer 维护任务的执行方，由 service.Maintenance 实现.
type Maintainer interface {
	RepairLineage(ctx context.Context, batch int) (int, error)
	ExpiredReport(ctx context.Context) (int64, error)
}

var _ Maintainer = (*service.Maintenance)(nil)

// RegisterCronJobs 注册谱系修复与过期统计任务，cron 为空的任务不注册.
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, m Maintainer, cfg configs.JobsConfig) error {
	if sched == nil || m == nil {
		return fmt.Errorf("scheduler and maintainer are required")
	}

	if !cfg.Enabled {
		log.Logger().Info().Msg("background jobs disabled")
		return nil
	}

	if cfg.LineageRepairCron != "" {
		if err := sched.AddCron(ctx, JobLineageRepair, cfg.LineageRepairCron, lineageRepair(m)); err != nil {
			return err
		}
	}

	if cfg.ExpiryReportCron != "" {
		if err := sched.AddCron(ctx, JobExpiryReport, cfg.ExpiryReportCron, expiryReport(m)); err != nil {
			return err
		}
	}

	return nil
}

// lineageRepair 分批修复，直到一批不足上限.
func lineageRepair(m Maintainer) scheduler.JobFunc {
	return func(ctx context.Context) error {
		total := 0

		for {
			n, err := m.RepairLineage(ctx, lineageRepairBatch)
			total += n

			if err != nil {
				return err
			}

			if n < lineageRepairBatch || ctx.Err() != nil {
				break
			}
		}

		log.Ctx(ctx).Info().Str("job", JobLineageRepair).Int("repaired", total).Msg("job finished")

		return nil
	}
}

func expiryReport(m Maintainer) scheduler.JobFunc {
	return func(ctx context.Context) error {
		_, err := m.ExpiredReport(ctx)
		return err
	}
}
