package debugger

import "testing"

func TestBreakpointManager_AddAndLookup(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(10, false, "")

	if bp.ID != 1 {
		t.Errorf("expected first breakpoint ID=1, got %d", bp.ID)
	}
	if got := bm.GetBreakpointAtLine(10); got == nil || got.ID != bp.ID {
		t.Errorf("expected to find breakpoint at line 10, got %v", got)
	}
	if !bm.HasBreakpointAtLine(10) {
		t.Error("expected HasBreakpointAtLine(10) to be true")
	}
	if bm.Count() != 1 {
		t.Errorf("expected count=1, got %d", bm.Count())
	}
}

func TestBreakpointManager_AddAtSameLineReenables(t *testing.T) {
	bm := NewBreakpointManager()
	first := bm.AddBreakpoint(5, false, "")
	if err := bm.DisableBreakpoint(first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := bm.AddBreakpoint(5, false, "x > 1")
	if second.ID != first.ID {
		t.Errorf("expected re-adding at the same line to reuse the breakpoint, got new ID %d", second.ID)
	}
	if !second.Enabled {
		t.Error("expected re-added breakpoint to be enabled")
	}
	if second.Condition != "x > 1" {
		t.Errorf("expected condition to update, got %q", second.Condition)
	}
	if bm.Count() != 1 {
		t.Errorf("expected count to stay 1, got %d", bm.Count())
	}
}

func TestBreakpointManager_DeleteByID(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(3, false, "")

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.HasBreakpointAtLine(3) {
		t.Error("expected breakpoint to be gone")
	}
	if err := bm.DeleteBreakpoint(bp.ID); err == nil {
		t.Error("expected error deleting an already-deleted breakpoint")
	}
}

func TestBreakpointManager_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(1, false, "")

	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.GetBreakpointAtLine(1).Enabled {
		t.Error("expected breakpoint to be disabled")
	}

	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bm.GetBreakpointAtLine(1).Enabled {
		t.Error("expected breakpoint to be enabled")
	}

	if err := bm.EnableBreakpoint(999); err == nil {
		t.Error("expected error enabling unknown breakpoint")
	}
}

func TestBreakpointManager_ProcessHitRemovesTemporary(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(7, true, "")

	hit := bm.ProcessHit(7)
	if hit == nil || hit.HitCount != 1 {
		t.Fatalf("expected a hit with HitCount=1, got %v", hit)
	}
	if bm.HasBreakpointAtLine(7) {
		t.Error("expected temporary breakpoint to be removed after its hit")
	}
}

func TestBreakpointManager_ProcessHitKeepsPermanent(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(7, false, "")

	bm.ProcessHit(7)
	bm.ProcessHit(7)

	bp := bm.GetBreakpointAtLine(7)
	if bp == nil || bp.HitCount != 2 {
		t.Fatalf("expected HitCount=2, got %v", bp)
	}
}

func TestBreakpointManager_RebuildAddressMapAndLineForAddress(t *testing.T) {
	bm := NewBreakpointManager()
	lines := []int{10, 10, 11, 12}
	bm.RebuildAddressMap(func(addr int) int { return lines[addr] }, len(lines))

	line, ok := bm.LineForAddress(2)
	if !ok || line != 11 {
		t.Errorf("expected line 11 for addr 2, got %d (ok=%v)", line, ok)
	}

	if _, ok := bm.LineForAddress(99); ok {
		t.Error("expected no mapping for an address outside the rebuilt range")
	}
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(1, false, "")
	bm.AddBreakpoint(2, false, "")

	bm.Clear()
	if bm.Count() != 0 {
		t.Errorf("expected count=0 after Clear, got %d", bm.Count())
	}
}
