package ai

import "google.golang.org/genai"

// The two call sites carry independent, explicitly typed response contracts.
// analysisResponse mirrors analysisSchema; verificationResponse mirrors
// verificationSchema.

type analysisResponse struct {
	Observations []rawObservation `json:"observations"`
}

type rawObservation struct {
	Description string `json:"description"`
	Sentiment   string `json:"sentiment"`
	Type        string `json:"type"`
	Timestamp   string `json:"timestamp"`
}

type verificationResponse struct {
	ChecklistItems         []rawChecklistItem `json:"checklistItems"`
	Recommendations        []string           `json:"recommendations,omitempty"`
	AdditionalObservations []string           `json:"additionalObservations,omitempty"`
}

type rawChecklistItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"observations": {
				Type:        genai.TypeArray,
				Description: "Array of observation objects",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"description": {
							Type:        genai.TypeString,
							Description: "Detailed description of the observation (e.g., 'The room looks clean')",
						},
						"sentiment": {
							Type:        genai.TypeString,
							Description: "Whether the observation is positive or negative",
							Enum:        []string{"positive", "negative"},
						},
						"type": {
							Type:        genai.TypeString,
							Description: "Category of the observation",
							Enum:        []string{"cleanliness", "maintenance", "styling"},
						},
						"timestamp": {
							Type:        genai.TypeString,
							Description: "Timestamp in the video where this observation was made (e.g., '0:45', '2:12')",
						},
					},
					Required: []string{"description", "sentiment", "type", "timestamp"},
				},
			},
		},
		Required: []string{"observations"},
	}
}

func verificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"checklistItems": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {
							Type:        genai.TypeString,
							Description: "The title of the checklist item",
						},
						"description": {
							Type:        genai.TypeString,
							Description: "The description of the checklist item",
						},
						"status": {
							Type:        genai.TypeString,
							Description: "The verification status of the checklist item",
							Enum:        []string{"unverified", "verified", "declined"},
						},
					},
					Required: []string{"title", "status"},
				},
			},
			"recommendations": {
				Type:        genai.TypeArray,
				Description: "Recommendations for the user",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"additionalObservations": {
				Type:        genai.TypeArray,
				Description: "Additional observations",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"checklistItems"},
	}
}
