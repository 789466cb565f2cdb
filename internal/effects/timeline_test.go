package effects

import (
	"math"
	"testing"
	"time"
)

func TestTimeline(t *testing.T) {
	tl := NewTimeline(200*time.Millisecond, nil)
	if tl.Value() != 0 || tl.Done() {
		t.Fatalf("fresh timeline value=%v done=%v", tl.Value(), tl.Done())
	}

	tl.Update(50 * time.Millisecond)
	if got := tl.Value(); got != 0.25 {
		t.Fatalf("value after 50ms = %v", got)
	}

	tl.SetDirection(Backward)
	if got := tl.Value(); got != 0.25 {
		t.Fatalf("reversing changed value to %v", got)
	}
	tl.Update(time.Second)
	if !tl.Done() || tl.Value() != 0 {
		t.Fatalf("backward end value=%v done=%v", tl.Value(), tl.Done())
	}

	tl.Reset()
	tl.SetDuration(400 * time.Millisecond)
	if tl.Done() || tl.Progress() != 0 {
		t.Fatalf("reset timeline progress=%v", tl.Progress())
	}
}

func TestTimelineFreshReverseStartsAtOne(t *testing.T) {
	tl := NewTimeline(100*time.Millisecond, nil)
	tl.SetDirection(Backward)
	if tl.Value() != 1 || tl.Done() {
		t.Fatalf("fresh backward value=%v done=%v", tl.Value(), tl.Done())
	}
	tl.Update(100 * time.Millisecond)
	tl.SetDirection(Forward)
	if tl.Value() != 0 || tl.Done() {
		t.Fatalf("restart forward value=%v done=%v", tl.Value(), tl.Done())
	}
}

func TestTimelineZeroDurationIsDone(t *testing.T) {
	tl := NewTimeline(0, nil)
	if !tl.Done() || tl.Value() != 1 {
		t.Fatalf("zero timeline value=%v done=%v", tl.Value(), tl.Done())
	}
}

func TestCurves(t *testing.T) {
	for name, c := range map[string]Curve{"linear": Linear, "inOutQuad": InOutQuad, "outCubic": OutCubic} {
		if c(0) != 0 || math.Abs(c(1)-1) > 1e-9 {
			t.Fatalf("%s endpoints = %v, %v", name, c(0), c(1))
		}
	}
	if InOutQuad(0.5) != 0.5 {
		t.Fatalf("inOutQuad midpoint = %v", InOutQuad(0.5))
	}
}
