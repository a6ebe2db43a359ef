package playback

import (
	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/inspection"
)

type Mode string

const (
	ModeClosed            Mode = "closed"
	ModeFullVideo         Mode = "fullVideo"
	ModeObservationDetail Mode = "observationDetail"
)

// windowRadius is how far playback may drift from an observation's timestamp
// in either direction before it is clamped back.
const windowRadius = 1.0

// Session drives the observation modal: in detail mode playback is restricted
// to a two-second window around the selected observation's timestamp, and
// navigation wraps circularly through the observation list.
type Session struct {
	mode         Mode
	observations []inspection.Observation
	index        int
	restricted   bool
	windowStart  float64
	windowEnd    float64
}

func NewSession() *Session {
	return &Session{mode: ModeClosed}
}

func (s *Session) Mode() Mode {
	return s.mode
}

// OpenFull switches to unrestricted full-video playback.
func (s *Session) OpenFull(observations []inspection.Observation) {
	s.mode = ModeFullVideo
	s.observations = observations
	s.index = 0
	s.restricted = false
}

// OpenObservation enters detail mode at the given observation.
func (s *Session) OpenObservation(observations []inspection.Observation, index int) error {
	if len(observations) == 0 {
		return fault.Validationf("no observations to open")
	}
	if index < 0 || index >= len(observations) {
		return fault.Validationf("observation index %d out of range", index)
	}
	s.mode = ModeObservationDetail
	s.observations = observations
	s.index = index
	s.applyWindow()
	return nil
}

func (s *Session) Close() {
	s.mode = ModeClosed
	s.observations = nil
	s.index = 0
	s.restricted = false
}

// Current returns the selected observation in detail mode.
func (s *Session) Current() (inspection.Observation, bool) {
	if s.mode != ModeObservationDetail || len(s.observations) == 0 {
		return inspection.Observation{}, false
	}
	return s.observations[s.index], true
}

// Next advances circularly and re-applies the window for the new selection.
func (s *Session) Next() {
	if s.mode != ModeObservationDetail || len(s.observations) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.observations)
	s.applyWindow()
}

// Prev steps back circularly.
func (s *Session) Prev() {
	if s.mode != ModeObservationDetail || len(s.observations) == 0 {
		return
	}
	s.index = (s.index - 1 + len(s.observations)) % len(s.observations)
	s.applyWindow()
}

// applyWindow computes the clamp bounds for the current observation. An
// observation without a timestamp falls back to unrestricted playback.
func (s *Session) applyWindow() {
	obs := s.observations[s.index]
	if obs.Timestamp == "" {
		s.restricted = false
		s.windowStart = 0
		s.windowEnd = 0
		return
	}
	seconds, err := inspection.ParseTimestamp(obs.Timestamp)
	if err != nil {
		s.restricted = false
		return
	}
	s.windowStart = float64(seconds) - windowRadius
	if s.windowStart < 0 {
		s.windowStart = 0
	}
	s.windowEnd = float64(seconds) + windowRadius
	s.restricted = true
}

// Window returns the clamp bounds; restricted is false in full-video mode and
// for observations without a timestamp.
func (s *Session) Window() (start, end float64, restricted bool) {
	return s.windowStart, s.windowEnd, s.restricted
}

// SeekTarget is the position the player should seek to when the selection
// changes: the window start in restricted mode, otherwise zero.
func (s *Session) SeekTarget() float64 {
	if s.restricted {
		return s.windowStart
	}
	return 0
}

// Tick checks the playback position on a monitoring tick. When the position
// has escaped the window it returns the corrected position (the window start)
// and true.
func (s *Session) Tick(position float64) (float64, bool) {
	if !s.restricted {
		return position, false
	}
	if position < s.windowStart || position > s.windowEnd {
		return s.windowStart, true
	}
	return position, false
}
