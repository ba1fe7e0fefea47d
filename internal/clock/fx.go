package clock

import "go.uber.org/fx"

// NewSystemClock is the production Clock. Tests substitute FakeClock
// directly instead of going through fx.
func NewSystemClock() Clock {
	return SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
