package service

import (
	"sort"
	"strings"
	"sync"

	"relaybot/internal/domain"
	"relaybot/internal/transport"

	"go.uber.org/zap"
)

// OperatorDirectory resolves configured operator handles to deliverable
// addresses. Numeric IDs arrive either from best-effort handle resolution
// at startup or from explicit self-registration; both may be missing, so
// callers must tolerate handle-only addressing.
type OperatorDirectory struct {
	handles []string // configured order preserved
	logger  *zap.Logger

	mu       sync.RWMutex
	ids      map[int64]struct{}
	byHandle map[string]int64 // lowercase handle -> resolved ID
}

// NewOperatorDirectory creates a directory for the configured handles.
func NewOperatorDirectory(handles []string, logger *zap.Logger) *OperatorDirectory {
	return &OperatorDirectory{
		handles:  handles,
		logger:   logger,
		ids:      make(map[int64]struct{}),
		byHandle: make(map[string]int64),
	}
}

// ResolveAll attempts to resolve every configured handle to a numeric ID.
// Individual failures are logged and skipped; resolution is best-effort
// and never blocks startup.
func (d *OperatorDirectory) ResolveAll(courier transport.Courier) {
	for _, handle := range d.handles {
		id, err := courier.Resolve(handle)
		if err != nil {
			d.logger.Warn("Failed to resolve operator handle",
				zap.String("handle", handle),
				zap.Error(err),
			)
			continue
		}

		d.mu.Lock()
		d.ids[id] = struct{}{}
		d.byHandle[strings.ToLower(handle)] = id
		d.mu.Unlock()

		d.logger.Info("Resolved operator handle",
			zap.String("handle", handle),
			zap.Int64("operator_id", id),
		)
	}
}

// Register records an operator's numeric ID, invoked when an operator
// self-identifies. Only succeeds if the caller's handle matches a
// configured operator handle. Idempotent.
func (d *OperatorDirectory) Register(id int64, handle string) bool {
	if !d.handleConfigured(handle) {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = struct{}{}
	d.byHandle[strings.ToLower(handle)] = id
	return true
}

// IsOperator reports whether the caller is an operator, either by a
// configured handle (case-insensitive) or by a known numeric ID.
func (d *OperatorDirectory) IsOperator(id int64, handle string) bool {
	d.mu.RLock()
	_, known := d.ids[id]
	d.mu.RUnlock()
	if known {
		return true
	}
	return d.handleConfigured(handle)
}

// Candidates returns delivery targets for a user-originated relay:
// resolved numeric IDs first in ascending order, then handles that are
// still unresolved, in configured order. Delivery stops at the first
// success, so numeric addressing is always attempted before a handle
// lookup.
func (d *OperatorDirectory) Candidates() []domain.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]int64, 0, len(d.ids))
	for id := range d.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Address, 0, len(ids)+len(d.handles))
	for _, id := range ids {
		out = append(out, domain.Numeric(id))
	}
	for _, handle := range d.handles {
		if _, resolved := d.byHandle[strings.ToLower(handle)]; !resolved {
			out = append(out, domain.ByHandle(handle))
		}
	}
	return out
}

// Recipients returns one address per configured operator for fan-out
// notifications, preferring the resolved numeric ID when known.
func (d *OperatorDirectory) Recipients() []domain.Address {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Address, 0, len(d.handles))
	for _, handle := range d.handles {
		if id, ok := d.byHandle[strings.ToLower(handle)]; ok {
			out = append(out, domain.Numeric(id))
		} else {
			out = append(out, domain.ByHandle(handle))
		}
	}
	return out
}

func (d *OperatorDirectory) handleConfigured(handle string) bool {
	if handle == "" {
		return false
	}
	for _, h := range d.handles {
		if strings.EqualFold(h, handle) {
			return true
		}
	}
	return false
}
