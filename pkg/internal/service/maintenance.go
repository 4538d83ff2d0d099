package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/casefile/pkg/internal/model"
	nlog "github.com/yeisme/casefile/pkg/log"
)

// MaintenanceRepository 后台任务使用的查询.
type MaintenanceRepository interface {
	ListUnsupersededPredecessors(ctx context.Context, limit int) ([]model.Document, error)
	MarkSuperseded(ctx context.Context, id string, at time.Time) (bool, error)
	CountExpiredActive(ctx context.Context, now time.Time) (int64, error)
}

// Maintenance 谱系修复与过期统计.
type Maintenance struct {
	repo   MaintenanceRepository
	audit  *Emitter
	clock  Clock
	logger zerolog.Logger
}

// NewMaintenance 创建维护任务执行器.
func NewMaintenance(repo MaintenanceRepository, audit *Emitter, clock Clock) *Maintenance {
	if clock == nil {
		clock = SystemClock{}
	}

	return &Maintenance{repo: repo, audit: audit, clock: clock, logger: nlog.Component("maintenance")}
}

// RepairLineage 将已有后继却仍为 Ativo 的文档置为 Substituido，返回修复数量.
func (m *Maintenance) RepairLineage(ctx context.Context, batch int) (repaired int, err error) {
	ctx, done := observe(ctx, "repair_lineage")
	defer done(&err)

	if batch <= 0 {
		batch = 100
	}

	stale, err := m.repo.ListUnsupersededPredecessors(ctx, batch)
	if err != nil {
		return 0, persistErr("repair_lineage", err)
	}

	action, _ := lookupTransition(model.StatusActive, model.StatusSuperseded, viaRepair)

	for i := range stale {
		doc := &stale[i]

		changed, err := m.repo.MarkSuperseded(ctx, doc.ID, m.clock.Now())
		if err != nil {
			m.logger.Error().Err(err).Str("document_id", doc.ID).Msg("lineage repair failed")
			continue
		}

		if !changed {
			continue
		}

		repaired++

		m.audit.Emit(ctx, nil, doc, action, model.JSONMap{
			"from":   string(model.StatusActive),
			"to":     string(model.StatusSuperseded),
			"reason": "lineage_repair",
		})
	}

	if repaired > 0 {
		m.logger.Info().Int("repaired", repaired).Msg("lineage repair completed")
	}

	return repaired, nil
}

// ExpiredReport 统计已过期仍为 Ativo 的文档并写日志.
func (m *Maintenance) ExpiredReport(ctx context.Context) (n int64, err error) {
	ctx, done := observe(ctx, "expiry_report")
	defer done(&err)

	n, err = m.repo.CountExpiredActive(ctx, m.clock.Now())
	if err != nil {
		return 0, persistErr("expiry_report", err)
	}

	m.logger.Info().Int64("expired_active", n).Msg("expired document report")

	return n, nil
}
