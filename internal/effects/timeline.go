package effects

import "time"

// Direction of a Timeline.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Curve maps linear progress in [0,1] to an eased value.
type Curve func(float64) float64

func Linear(t float64) float64 { return t }

func InOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - 2*(1-t)*(1-t)
}

func OutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Timeline drives an animation from paint-cycle elapsed times.
type Timeline struct {
	duration  time.Duration
	elapsed   time.Duration
	direction Direction
	curve     Curve
}

func NewTimeline(duration time.Duration, curve Curve) *Timeline {
	if curve == nil {
		curve = Linear
	}
	return &Timeline{duration: duration, curve: curve}
}

func (t *Timeline) Duration() time.Duration { return t.duration }

// SetDuration keeps the current progress.
func (t *Timeline) SetDuration(d time.Duration) {
	if t.duration > 0 {
		t.elapsed = time.Duration(float64(t.elapsed) / float64(t.duration) * float64(d))
	} else {
		t.elapsed = 0
	}
	t.duration = d
}

func (t *Timeline) Direction() Direction { return t.direction }

// SetDirection reverses the timeline in place, so a half-finished fade in
// becomes a fade out from the same value. A timeline that has not started
// simply starts from the other end.
func (t *Timeline) SetDirection(d Direction) {
	if d == t.direction {
		return
	}
	t.direction = d
	if t.elapsed > 0 {
		t.elapsed = t.duration - t.elapsed
	}
}

// Update advances the timeline by delta.
func (t *Timeline) Update(delta time.Duration) {
	t.elapsed += delta
	if t.elapsed > t.duration {
		t.elapsed = t.duration
	}
}

func (t *Timeline) Reset() { t.elapsed = 0 }

// Done reports whether the timeline reached its end.
func (t *Timeline) Done() bool { return t.elapsed >= t.duration }

// Progress is the linear position in [0,1], counted from the start of the
// current direction.
func (t *Timeline) Progress() float64 {
	if t.duration <= 0 {
		return 1
	}
	return float64(t.elapsed) / float64(t.duration)
}

// Value is the eased value; it runs 0 to 1 forward and 1 to 0 backward.
func (t *Timeline) Value() float64 {
	p := t.Progress()
	if t.direction == Backward {
		p = 1 - p
	}
	return t.curve(p)
}
