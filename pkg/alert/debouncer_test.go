package alert

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"

	"github.com/JuzJuJazzy/motoSaaS/pkg/tracking/detection"
)

var (
	approaching = []detection.Detection{{ID: 1, Approaching: false}, {ID: 2, Approaching: true}}
	calm        = []detection.Detection{{ID: 1}, {ID: 2}}
)

func TestDebouncer_ShowCooldown(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(DefaultCooldown, clk)

	assert.Equal(t, SignalShow, d.Observe(approaching), "t=0")

	clk.Add(500 * time.Millisecond)
	assert.Equal(t, SignalNone, d.Observe(approaching), "t=500ms inside cooldown")

	clk.Add(500 * time.Millisecond)
	assert.Equal(t, SignalNone, d.Observe(approaching), "t=1000ms is not past the cooldown")

	clk.Add(1 * time.Millisecond)
	assert.Equal(t, SignalShow, d.Observe(approaching), "t=1001ms")
}

func TestDebouncer_HideIsNotDebounced(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(DefaultCooldown, clk)

	assert.Equal(t, SignalHide, d.Observe(calm))
	assert.Equal(t, SignalHide, d.Observe(nil))

	assert.Equal(t, SignalShow, d.Observe(approaching))
	clk.Add(10 * time.Millisecond)
	assert.Equal(t, SignalHide, d.Observe(calm))
	clk.Add(10 * time.Millisecond)
	assert.Equal(t, SignalHide, d.Observe(calm))

	// Hide does not reset the cooldown.
	clk.Add(10 * time.Millisecond)
	assert.Equal(t, SignalNone, d.Observe(approaching))
}

func TestDebouncer_Reset(t *testing.T) {
	clk := clock.NewMock()
	d := NewDebouncer(DefaultCooldown, clk)

	assert.Equal(t, SignalShow, d.Observe(approaching))
	d.Reset()
	assert.Equal(t, SignalShow, d.Observe(approaching), "reset clears the cooldown")
}

func TestDebouncer_ObserveAt(t *testing.T) {
	d := NewDebouncer(time.Second, nil)
	base := time.Unix(1000, 0)

	tests := []struct {
		name     string
		offset   time.Duration
		anyClose bool
		want     Signal
	}{
		{"first approach", 0, true, SignalShow},
		{"within window", 999 * time.Millisecond, true, SignalNone},
		{"clear", 999 * time.Millisecond, false, SignalHide},
		{"past window", 1001 * time.Millisecond, true, SignalShow},
	}

	for _, tc := range tests {
		got := d.ObserveAt(tc.anyClose, base.Add(tc.offset))
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestSignal_String(t *testing.T) {
	assert.Equal(t, "show", SignalShow.String())
	assert.Equal(t, "hide", SignalHide.String())
	assert.Equal(t, "none", SignalNone.String())
}
