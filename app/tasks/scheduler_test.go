package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/nkwenti/pricewatch/app/watch"
)

func TestResolveValueRatioMin(t *testing.T) {
	tests := []struct {
		name     string
		configs  map[string]*watch.Config
		expected float64
	}{
		{
			name:     "no configs",
			configs:  map[string]*watch.Config{},
			expected: 0,
		},
		{
			name: "no overrides",
			configs: map[string]*watch.Config{
				"laptops": {Name: "laptops"},
				"phones":  {Name: "phones"},
			},
			expected: 0,
		},
		{
			name: "single override",
			configs: map[string]*watch.Config{
				"laptops": {Name: "laptops", Alerts: watch.AlertOverrides{ValueRatioMin: 7.5}},
			},
			expected: 7.5,
		},
		{
			name: "lowest override wins",
			configs: map[string]*watch.Config{
				"laptops": {Name: "laptops", Alerts: watch.AlertOverrides{ValueRatioMin: 9.0}},
				"phones":  {Name: "phones", Alerts: watch.AlertOverrides{ValueRatioMin: 6.5}},
				"tablets": {Name: "tablets"},
			},
			expected: 6.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveValueRatioMin(tt.configs); got != tt.expected {
				t.Errorf("resolveValueRatioMin() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestEnqueueAfterStopDoesNotPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		configCache: watch.NewConfigCache("/nonexistent"),
		interval:    time.Hour,
		workerCount: 1,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 1),
	}

	s.Start()
	s.Stop()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("EnqueueTask after Stop panicked: %v", r)
		}
	}()

	// Mirrors a retry goroutine firing after shutdown.
	_ = s.EnqueueTask(NewAlertTask(nil, 0))
}
