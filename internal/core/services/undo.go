package services

import (
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

// UndoLedger remembers the most recent delete only. Recording a new delete
// forfeits the previous one.
type UndoLedger struct {
	mu          sync.Mutex
	lastDeleted *domain.Asset
}

func NewUndoLedger() *UndoLedger {
	return &UndoLedger{}
}

func (l *UndoLedger) Record(asset domain.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastDeleted = &asset
}

func (l *UndoLedger) LastDeleted() *domain.Asset {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastDeleted == nil {
		return nil
	}
	asset := *l.lastDeleted
	return &asset
}

func (l *UndoLedger) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDeleted != nil
}

func (l *UndoLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastDeleted = nil
}
