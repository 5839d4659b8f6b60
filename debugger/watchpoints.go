package debugger

import (
	"fmt"
	"sync"

	"github.com/qwas982/svm/value"
	"github.com/qwas982/svm/vm"
)

// Direction constrains when a watchpoint fires, relative to its last
// observed value (supplemented from original_source/: the distilled spec
// only described value-change detection, the original also tracked
// direction and a change counter).
type Direction string

const (
	DirectionAny  Direction = "="  // fire on any change
	DirectionUp   Direction = "up" // fire only when the numeric value increases
	DirectionDown Direction = "down"
)

// Watchpoint monitors an expression over the debug context and fires when it
// changes (optionally constrained to a Direction).
type Watchpoint struct {
	ID          int
	Expression  string
	Direction   Direction
	Enabled     bool
	initialized bool
	LastValue   value.Value
	ChangeCount int
	HitCount    int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{watchpoints: make(map[int]*Watchpoint), nextID: 1}
}

func (wm *WatchpointManager) AddWatchpoint(expression string, direction Direction) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{ID: wm.nextID, Expression: expression, Direction: direction, Enabled: true}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

func (wm *WatchpointManager) setEnabled(id int, enabled bool) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = enabled
	return nil
}

func (wm *WatchpointManager) EnableWatchpoint(id int) error  { return wm.setEnabled(id, true) }
func (wm *WatchpointManager) DisableWatchpoint(id int) error { return wm.setEnabled(id, false) }

func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// changed reports whether old->new constitutes a fire for the given
// direction: DirectionAny on any inequality, DirectionUp/Down only when the
// numeric delta has the matching sign.
func changed(direction Direction, oldVal, newVal value.Value) bool {
	if oldVal.Kind != newVal.Kind || oldVal.String() != newVal.String() {
		switch direction {
		case DirectionUp:
			return newVal.AsFloat() > oldVal.AsFloat()
		case DirectionDown:
			return newVal.AsFloat() < oldVal.AsFloat()
		default:
			return true
		}
	}
	return false
}

// CheckWatchpoints evaluates every enabled watchpoint's expression against
// the machine's current state and returns the first one whose value changed
// in the configured direction.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.VM, eval *ExpressionEvaluator) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		current, err := eval.Evaluate(wp.Expression, machine)
		if err != nil {
			continue // expression not resolvable in the current context
		}
		if !wp.initialized {
			wp.LastValue = current
			wp.initialized = true
			continue
		}
		if changed(wp.Direction, wp.LastValue, current) {
			wp.LastValue = current
			wp.HitCount++
			wp.ChangeCount++
			return wp, true
		}
		wp.LastValue = current
	}
	return nil, false
}

func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
