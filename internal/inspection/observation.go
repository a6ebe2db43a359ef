package inspection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roomcheck/roomcheck/internal/fault"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

type ObservationType string

const (
	TypeCleanliness ObservationType = "cleanliness"
	TypeMaintenance ObservationType = "maintenance"
	TypeStyling     ObservationType = "styling"
)

type Source string

const (
	SourceAI     Source = "ai"
	SourceManual Source = "manual"
)

// Observation is a single note about property condition. Immutable once
// created; the ID is caller-assigned and only unique within its source.
type Observation struct {
	ID          string          `json:"id" yaml:"id"`
	Description string          `json:"description" yaml:"description"`
	Sentiment   Sentiment       `json:"sentiment" yaml:"sentiment"`
	Type        ObservationType `json:"type" yaml:"type"`
	Timestamp   string          `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Source      Source          `json:"source,omitempty" yaml:"source,omitempty"`
}

// Analysis is the persisted result bundle for one inspected video.
type Analysis struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	VideoURL           string        `json:"videoUrl"`
	Observations       []Observation `json:"observations"`
	Summary            string        `json:"summary"`
	Duration           string        `json:"duration,omitempty"`
	ManualObservations []Observation `json:"manualObservations,omitempty"`
}

func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNegative
}

func (t ObservationType) Valid() bool {
	return t == TypeCleanliness || t == TypeMaintenance || t == TypeStyling
}

// Validate checks the enum fields and the timestamp format, if present.
func (o Observation) Validate() error {
	if strings.TrimSpace(o.Description) == "" {
		return fault.Validationf("observation %s: description is empty", o.ID)
	}
	if !o.Sentiment.Valid() {
		return fault.Validationf("observation %s: invalid sentiment %q", o.ID, o.Sentiment)
	}
	if !o.Type.Valid() {
		return fault.Validationf("observation %s: invalid type %q", o.ID, o.Type)
	}
	if o.Timestamp != "" {
		if _, err := ParseTimestamp(o.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

// ParseTimestamp converts an "M:SS" timestamp to total seconds. The seconds
// part must have two digits and be below 60; minutes are unbounded.
func ParseTimestamp(ts string) (int, error) {
	minutePart, secondPart, ok := strings.Cut(ts, ":")
	if !ok {
		return 0, fault.Validationf("timestamp %q is not in M:SS format", ts)
	}
	minutes, err := strconv.Atoi(minutePart)
	if err != nil || minutes < 0 {
		return 0, fault.Validationf("timestamp %q has an invalid minute part", ts)
	}
	if len(secondPart) != 2 {
		return 0, fault.Validationf("timestamp %q must use two-digit seconds", ts)
	}
	seconds, err := strconv.Atoi(secondPart)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fault.Validationf("timestamp %q has seconds outside 00-59", ts)
	}
	return minutes*60 + seconds, nil
}

// FormatTimestamp renders total seconds as "M:SS".
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Summarize derives the analysis summary from the observation counts. A batch
// with zero observations still yields a non-empty summary so a successful
// analysis is never silently blank.
func Summarize(observations []Observation) string {
	var positive, negative, cleanliness, maintenance, styling int
	for _, o := range observations {
		switch o.Sentiment {
		case SentimentPositive:
			positive++
		case SentimentNegative:
			negative++
		}
		switch o.Type {
		case TypeCleanliness:
			cleanliness++
		case TypeMaintenance:
			maintenance++
		case TypeStyling:
			styling++
		}
	}
	summary := fmt.Sprintf("Analysis found %d observations: %d positive and %d negative. "+
		"There were %d cleanliness, %d maintenance and %d styling observations.",
		len(observations), positive, negative, cleanliness, maintenance, styling)
	return summary
}

// NormalizeTitle folds the underscore/space distinction so analyses named
// after files ("IMG_3850") match curated entries keyed "IMG 3850".
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), "_", " "))
}
