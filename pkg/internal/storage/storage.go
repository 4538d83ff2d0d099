// Package storage 聚合 casefile 依赖的存储资源：关系库、对象存储、KV 缓存与消息队列.
//
//	mgr, err := storage.Init(ctx, configs.GetConfig())
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/yeisme/casefile/pkg/configs"
	dbc "github.com/yeisme/casefile/pkg/internal/storage/db"
	kvc "github.com/yeisme/casefile/pkg/internal/storage/kv"
	mqc "github.com/yeisme/casefile/pkg/internal/storage/mq"
	s3c "github.com/yeisme/casefile/pkg/internal/storage/s3"
	nlog "github.com/yeisme/casefile/pkg/log"
)

// Manager 聚合所有存储资源，MQ 仅在启用事件广播时创建.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 初始化存储资源，重复调用返回同一实例.
func Init(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = open(ctx, cfg)
		if mgrErr == nil {
			nlog.Logger().Info().Msg("storage manager initialized")
		}
	})

	return mgr, mgrErr
}

func open(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	var err error

	if m.DB, err = dbc.New(ctx, &cfg.DB); err != nil {
		return nil, err
	}

	if m.S3, err = s3c.New(ctx, &cfg.S3); err != nil {
		_ = m.Close()
		return nil, err
	}

	if m.KV, err = kvc.NewKVClient(ctx, &cfg.KV); err != nil {
		_ = m.Close()
		return nil, err
	}

	if cfg.Events.Enabled {
		endpoint := ""
		if cfg.Metrics.Enabled {
			endpoint = cfg.Metrics.MQEndpoint
		}

		if m.MQ, err = mqc.New(ctx, &cfg.MQ, endpoint); err != nil {
			_ = m.Close()
			return nil, err
		}
	}

	return m, nil
}

// Close 释放已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
