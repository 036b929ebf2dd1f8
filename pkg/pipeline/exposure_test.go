package pipeline

import "testing"

func TestExposureController_Clamp(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"below lower bound", 500, 1000},
		{"at lower bound", 1000, 1000},
		{"in range", 10000, 10000},
		{"at upper bound", 100000, 100000},
		{"above upper bound", 200000, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExposureController(newFakeSource(), 10000)
			got, err := c.Set(tt.value)
			if err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got != tt.want {
				t.Errorf("Set(%v) = %v, want %v", tt.value, got, tt.want)
			}
			if c.Value() != tt.want {
				t.Errorf("Value() = %v, want %v", c.Value(), tt.want)
			}
		})
	}
}

func TestExposureController_NoWriteWhileStopped(t *testing.T) {
	src := newFakeSource()
	c := NewExposureController(src, 10000)

	if _, err := c.Set(20000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n := len(src.writes()); n != 0 {
		t.Errorf("device written %d times while not streaming, want 0", n)
	}
}

func TestExposureController_WritesWhileStreaming(t *testing.T) {
	src := newFakeSource()
	c := NewExposureController(src, 10000)
	c.SetStreaming(true)

	if _, err := c.Set(20000); err != nil {
		t.Fatalf("Set: %v", err)
	}
	w := src.writes()
	if len(w) != 1 || w[0] != 20000 {
		t.Errorf("device writes = %v, want [20000]", w)
	}
}

func TestExposureController_WriteFailureKeepsValue(t *testing.T) {
	src := newFakeSource()
	src.exposureErr = errWriteFailed
	c := NewExposureController(src, 10000)
	c.SetStreaming(true)

	got, err := c.Set(30000)
	if err == nil {
		t.Fatal("expected write error")
	}
	if got != 30000 {
		t.Errorf("returned value = %v, want 30000", got)
	}
	// The logical setting survives the failed device write.
	if c.Value() != 30000 {
		t.Errorf("Value() = %v, want 30000", c.Value())
	}
}
