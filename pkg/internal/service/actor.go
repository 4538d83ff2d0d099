package service

import (
	"context"
	"sync"
)

// TenantLookup 查询患者所属租户.
type TenantLookup interface {
	TenantOf(ctx context.Context, patientID string) (string, error)
}

// RequestActor 单次请求内的调用方上下文，租户查询结果在请求内复用.
type RequestActor struct {
	userID  string
	tenants TenantLookup

	mu    sync.Mutex
	cache map[string]string
}

// NewActor 创建调用方上下文，userID 为空表示系统动作.
func NewActor(userID string, tenants TenantLookup) *RequestActor {
	return &RequestActor{userID: userID, tenants: tenants, cache: make(map[string]string)}
}

func (a *RequestActor) UserID() string { return a.userID }

func (a *RequestActor) TenantOf(ctx context.Context, patientID string) (string, error) {
	a.mu.Lock()
	tenant, ok := a.cache[patientID]
	a.mu.Unlock()

	if ok {
		return tenant, nil
	}

	tenant, err := a.tenants.TenantOf(ctx, patientID)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.cache[patientID] = tenant
	a.mu.Unlock()

	return tenant, nil
}
