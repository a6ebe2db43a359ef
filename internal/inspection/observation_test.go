package inspection

import (
	"strings"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input   string
		seconds int
		wantErr bool
	}{
		{"0:00", 0, false},
		{"0:45", 45, false},
		{"1:30", 90, false},
		{"2:12", 132, false},
		{"12:05", 725, false},
		{"0:59", 59, false},
		{"1:60", 0, true},
		{"1:99", 0, true},
		{"90", 0, true},
		{"1:5", 0, true},
		{"1:345", 0, true},
		{"-1:30", 0, true},
		{"a:bc", 0, true},
		{"", 0, true},
		{"1:30:00", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.seconds {
			t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.input, got, tt.seconds)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{45, "0:45"},
		{90, "1:30"},
		{725, "12:05"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestObservationValidate(t *testing.T) {
	valid := Observation{
		ID:          "ai-0",
		Description: "The kitchen counter is spotless",
		Sentiment:   SentimentPositive,
		Type:        TypeCleanliness,
		Timestamp:   "0:45",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid observation rejected: %v", err)
	}

	noTimestamp := valid
	noTimestamp.Timestamp = ""
	if err := noTimestamp.Validate(); err != nil {
		t.Errorf("observation without timestamp rejected: %v", err)
	}

	badSentiment := valid
	badSentiment.Sentiment = "neutral"
	if err := badSentiment.Validate(); err == nil {
		t.Error("invalid sentiment accepted")
	}

	badType := valid
	badType.Type = "plumbing"
	if err := badType.Validate(); err == nil {
		t.Error("invalid type accepted")
	}

	badTimestamp := valid
	badTimestamp.Timestamp = "1:75"
	if err := badTimestamp.Validate(); err == nil {
		t.Error("invalid timestamp accepted")
	}

	empty := valid
	empty.Description = "  "
	if err := empty.Validate(); err == nil {
		t.Error("blank description accepted")
	}
}

func TestSummarize(t *testing.T) {
	observations := []Observation{
		{Sentiment: SentimentPositive, Type: TypeCleanliness},
		{Sentiment: SentimentNegative, Type: TypeMaintenance},
		{Sentiment: SentimentNegative, Type: TypeMaintenance},
		{Sentiment: SentimentPositive, Type: TypeStyling},
	}

	summary := Summarize(observations)
	for _, want := range []string{"4 observations", "2 positive", "2 negative", "1 cleanliness", "2 maintenance", "1 styling"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary %q missing %q", summary, want)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary == "" {
		t.Fatal("empty observation list produced an empty summary")
	}
	if !strings.Contains(summary, "0 observations") {
		t.Errorf("summary %q should report zero observations", summary)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"IMG_3850", "img 3850"},
		{"IMG 3850", "img 3850"},
		{"  IMG_3850  ", "img 3850"},
		{"Front_Door_Hall", "front door hall"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.input); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
