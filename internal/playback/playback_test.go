package playback

import (
	"testing"

	"github.com/roomcheck/roomcheck/internal/inspection"
)

func testObservations() []inspection.Observation {
	return []inspection.Observation{
		{ID: "ai-0", Description: "Clean floor", Sentiment: inspection.SentimentPositive, Type: inspection.TypeCleanliness, Timestamp: "1:30"},
		{ID: "ai-1", Description: "Dusty shelf", Sentiment: inspection.SentimentNegative, Type: inspection.TypeCleanliness, Timestamp: "0:00"},
		{ID: "ai-2", Description: "General impression", Sentiment: inspection.SentimentPositive, Type: inspection.TypeStyling},
	}
}

func TestWindowBounds(t *testing.T) {
	s := NewSession()
	if err := s.OpenObservation(testObservations(), 0); err != nil {
		t.Fatal(err)
	}

	start, end, restricted := s.Window()
	if !restricted {
		t.Fatal("timestamped observation should restrict playback")
	}
	if start != 89 || end != 91 {
		t.Errorf("window = [%v, %v], want [89, 91]", start, end)
	}
	if s.SeekTarget() != 89 {
		t.Errorf("seek target = %v, want 89", s.SeekTarget())
	}
}

func TestWindowFlooredAtZero(t *testing.T) {
	s := NewSession()
	if err := s.OpenObservation(testObservations(), 1); err != nil {
		t.Fatal(err)
	}
	start, end, restricted := s.Window()
	if !restricted {
		t.Fatal("expected restricted playback")
	}
	if start != 0 || end != 1 {
		t.Errorf("window = [%v, %v], want [0, 1]", start, end)
	}
}

func TestTickClampsOutOfWindow(t *testing.T) {
	s := NewSession()
	if err := s.OpenObservation(testObservations(), 0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		position  float64
		corrected float64
		clamped   bool
	}{
		{89, 89, false},
		{90, 90, false},
		{91, 91, false},
		{88.5, 89, true},
		{91.2, 89, true},
		{0, 89, true},
		{300, 89, true},
	}
	for _, tt := range tests {
		got, clamped := s.Tick(tt.position)
		if got != tt.corrected || clamped != tt.clamped {
			t.Errorf("Tick(%v) = (%v, %v), want (%v, %v)", tt.position, got, clamped, tt.corrected, tt.clamped)
		}
	}
}

func TestNavigationWraps(t *testing.T) {
	s := NewSession()
	observations := testObservations()
	if err := s.OpenObservation(observations, 2); err != nil {
		t.Fatal(err)
	}

	s.Next()
	current, ok := s.Current()
	if !ok || current.ID != "ai-0" {
		t.Errorf("Next from last should wrap to first, got %v", current.ID)
	}

	// The window follows the new selection.
	if start, _, restricted := s.Window(); !restricted || start != 89 {
		t.Errorf("window not re-applied after Next: start=%v restricted=%v", start, restricted)
	}

	s.Prev()
	current, _ = s.Current()
	if current.ID != "ai-2" {
		t.Errorf("Prev should wrap back to last, got %v", current.ID)
	}
}

func TestObservationWithoutTimestampUnrestricted(t *testing.T) {
	s := NewSession()
	if err := s.OpenObservation(testObservations(), 2); err != nil {
		t.Fatal(err)
	}
	if _, _, restricted := s.Window(); restricted {
		t.Error("observation without timestamp should fall back to unrestricted playback")
	}
	if pos, clamped := s.Tick(500); clamped || pos != 500 {
		t.Error("unrestricted playback should never clamp")
	}
}

func TestModeTransitions(t *testing.T) {
	s := NewSession()
	if s.Mode() != ModeClosed {
		t.Fatalf("new session mode = %s, want closed", s.Mode())
	}

	s.OpenFull(testObservations())
	if s.Mode() != ModeFullVideo {
		t.Errorf("mode = %s, want fullVideo", s.Mode())
	}
	if _, _, restricted := s.Window(); restricted {
		t.Error("full-video mode must not restrict playback")
	}

	if err := s.OpenObservation(testObservations(), 0); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != ModeObservationDetail {
		t.Errorf("mode = %s, want observationDetail", s.Mode())
	}

	s.Close()
	if s.Mode() != ModeClosed {
		t.Errorf("mode = %s, want closed", s.Mode())
	}
	if _, ok := s.Current(); ok {
		t.Error("closed session still reports a current observation")
	}
}

func TestOpenObservationValidation(t *testing.T) {
	s := NewSession()
	if err := s.OpenObservation(nil, 0); err == nil {
		t.Error("empty observation list accepted")
	}
	if err := s.OpenObservation(testObservations(), 5); err == nil {
		t.Error("out-of-range index accepted")
	}
}
