package service

import "github.com/yeisme/casefile/pkg/internal/model"

// trigger 状态变化的来源.
type trigger int

const (
	viaPatch trigger = iota
	viaArchive
	viaVersion
	viaRepair
)

type transition struct {
	from, to model.Status
	via      trigger
}

// transitions 允许的状态变化及对应审计动作，表外的变化一律拒绝.
// Substituido 只能由新版本或谱系修复产生.
var transitions = map[transition]model.EventAction{
	{model.StatusActive, model.StatusArchived, viaPatch}:       model.ActionArchive,
	{model.StatusSuperseded, model.StatusArchived, viaPatch}:   model.ActionArchive,
	{model.StatusArchived, model.StatusActive, viaPatch}:       model.ActionRestore,
	{model.StatusActive, model.StatusArchived, viaArchive}:     model.ActionArchive,
	{model.StatusSuperseded, model.StatusArchived, viaArchive}: model.ActionArchive,
	{model.StatusArchived, model.StatusArchived, viaArchive}:   model.ActionArchive,
	{model.StatusActive, model.StatusSuperseded, viaVersion}:   model.ActionStatusChange,
	{model.StatusArchived, model.StatusSuperseded, viaVersion}: model.ActionStatusChange,
	{model.StatusActive, model.StatusSuperseded, viaRepair}:    model.ActionStatusChange,
}

func lookupTransition(from, to model.Status, via trigger) (model.EventAction, bool) {
	action, ok := transitions[transition{from: from, to: to, via: via}]
	return action, ok
}
