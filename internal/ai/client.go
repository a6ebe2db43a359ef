package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/inspection"
	"github.com/roomcheck/roomcheck/internal/validate"
)

const (
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollAttempts = 150
)

// Client wraps the Gemini API for the two inspection call sites: observation
// analysis and checklist verification.
type Client struct {
	genai           *genai.Client
	model           string
	tmpDir          string
	inlineLimit     int64
	pollInterval    time.Duration
	maxPollAttempts int
}

// NewClient builds the Gemini client. Oversized payloads are staged as temp
// files under tmpDir before upload, so they fall under the same maintenance
// purge as the transcode temp files.
func NewClient(ctx context.Context, apiKey, model, tmpDir string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &Client{
		genai:           client,
		model:           model,
		tmpDir:          tmpDir,
		inlineLimit:     validate.MaxInlineVideoBytes,
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
	}, nil
}

// VerificationResult is the outcome of one verification round.
type VerificationResult struct {
	Items                  []inspection.ChecklistItem `json:"checklistItems"`
	State                  inspection.WorkflowState   `json:"state"`
	Recommendations        []string                   `json:"recommendations,omitempty"`
	AdditionalObservations []string                   `json:"additionalObservations,omitempty"`
}

// AnalyzeVideo sends the video to the model with the inspection prompt and a
// strict response schema, returning the observations in service order. Small
// payloads are inlined; larger ones go through the Files API with a bounded
// processing poll.
func (c *Client) AnalyzeVideo(ctx context.Context, data []byte, contentType string) ([]inspection.Observation, error) {
	if len(data) == 0 {
		return nil, fault.Validationf("no video data provided")
	}
	if !validate.VideoContentType(contentType) {
		return nil, fault.Validationf("unsupported video type %q", contentType)
	}

	var videoPart *genai.Part
	if int64(len(data)) <= c.inlineLimit {
		videoPart = genai.NewPartFromBytes(data, contentType)
	} else {
		file, err := c.uploadAndAwait(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		videoPart = genai.NewPartFromURI(file.URI, file.MIMEType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			videoPart,
			genai.NewPartFromText(analysisPrompt),
		}, genai.RoleUser),
	}

	result, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
	})
	if err != nil {
		return nil, fault.External("AI analysis request failed", err)
	}

	return parseAnalysis(result.Text())
}

// VerifyChecklist submits the video plus the checklist (statuses reset to
// unverified) and returns the checklist with statuses filled in. The model may
// not invent items; a result whose titles differ from the submitted set is a
// parse failure.
func (c *Client) VerifyChecklist(ctx context.Context, data []byte, contentType string, items []inspection.ChecklistItem) (*VerificationResult, error) {
	if len(data) == 0 {
		return nil, fault.Validationf("no video data provided")
	}
	if !validate.VideoContentType(contentType) {
		return nil, fault.Validationf("unsupported video type %q", contentType)
	}
	if err := inspection.ValidateChecklist(items); err != nil {
		return nil, err
	}

	reset := inspection.ResetStatuses(items)
	prompt, err := verificationPrompt(reset)
	if err != nil {
		return nil, err
	}

	var videoPart *genai.Part
	if int64(len(data)) <= c.inlineLimit {
		videoPart = genai.NewPartFromBytes(data, contentType)
	} else {
		file, err := c.uploadAndAwait(ctx, data, contentType)
		if err != nil {
			return nil, err
		}
		videoPart = genai.NewPartFromURI(file.URI, file.MIMEType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			videoPart,
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	result, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   verificationSchema(),
	})
	if err != nil {
		return nil, fault.External("AI verification request failed", err)
	}

	return parseVerification(result.Text(), reset)
}

// uploadAndAwait stores the payload in the AI service's file store and waits
// for it to reach a terminal processing state. The poll is bounded: a stuck
// file fails the request instead of waiting forever.
func (c *Client) uploadAndAwait(ctx context.Context, data []byte, contentType string) (*genai.File, error) {
	tmpPath, err := writeTempUpload(c.tmpDir, data, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	file, err := c.genai.Files.UploadFromPath(ctx, tmpPath, &genai.UploadFileConfig{
		MIMEType: contentType,
	})
	if err != nil {
		return nil, fault.External("file upload to AI service failed", err)
	}

	slog.Info("ai: file uploaded", "name", file.Name, "state", file.State)

	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		if file.State == genai.FileStateActive {
			return file, nil
		}
		if file.State == genai.FileStateFailed {
			return nil, fault.New(fault.KindExternal, "AI service failed to process the uploaded video")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		file, err = c.genai.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fault.External("poll uploaded file state", err)
		}
	}

	return nil, fault.New(fault.KindExternal,
		fmt.Sprintf("uploaded video still processing after %d checks", c.maxPollAttempts))
}

// writeTempUpload stages an upload payload as a roomcheck-prefixed temp file
// so abandoned ones are caught by the maintenance purge.
func writeTempUpload(tmpDir string, data []byte, contentType string) (string, error) {
	tmp, err := os.CreateTemp(tmpDir, "roomcheck-upload-*"+validate.ExtensionForContentType(contentType))
	if err != nil {
		return "", fmt.Errorf("create temp upload file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write temp upload file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close temp upload file: %w", err)
	}
	return tmpPath, nil
}

// parseAnalysis validates the raw model response against the analysis
// contract. There is no partial-result recovery: one bad observation fails the
// whole response.
func parseAnalysis(text string) ([]inspection.Observation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fault.New(fault.KindParse, "empty response from AI service")
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		stripped := stripMarkdownFences(text)
		if err := json.Unmarshal([]byte(stripped), &resp); err != nil {
			return nil, fault.Parse("AI response is not valid analysis JSON", err)
		}
	}

	observations := make([]inspection.Observation, 0, len(resp.Observations))
	for i, raw := range resp.Observations {
		obs := inspection.Observation{
			ID:          fmt.Sprintf("ai-%d", i),
			Description: raw.Description,
			Sentiment:   inspection.Sentiment(raw.Sentiment),
			Type:        inspection.ObservationType(raw.Type),
			Timestamp:   raw.Timestamp,
			Source:      inspection.SourceAI,
		}
		if err := obs.Validate(); err != nil {
			return nil, fault.Parse("AI response violates the observation contract", err)
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// parseVerification validates the raw model response against the verification
// contract: exactly the submitted titles, each with a ternary status.
func parseVerification(text string, submitted []inspection.ChecklistItem) (*VerificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fault.New(fault.KindParse, "empty response from AI service")
	}

	var resp verificationResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		stripped := stripMarkdownFences(text)
		if err := json.Unmarshal([]byte(stripped), &resp); err != nil {
			return nil, fault.Parse("AI response is not valid verification JSON", err)
		}
	}

	if len(resp.ChecklistItems) != len(submitted) {
		return nil, fault.New(fault.KindParse,
			fmt.Sprintf("AI returned %d checklist items, expected %d", len(resp.ChecklistItems), len(submitted)))
	}

	want := make(map[string]bool, len(submitted))
	for _, item := range submitted {
		want[strings.TrimSpace(item.Title)] = true
	}

	seen := make(map[string]bool, len(resp.ChecklistItems))
	results := make([]inspection.ChecklistItem, 0, len(resp.ChecklistItems))
	for _, raw := range resp.ChecklistItems {
		title := strings.TrimSpace(raw.Title)
		if !want[title] {
			return nil, fault.New(fault.KindParse,
				fmt.Sprintf("AI invented checklist item %q", raw.Title))
		}
		// A duplicate would satisfy the count check while hiding a dropped
		// item, so the titles must match the submitted set exactly.
		if seen[title] {
			return nil, fault.New(fault.KindParse,
				fmt.Sprintf("AI returned checklist item %q twice", raw.Title))
		}
		seen[title] = true
		status := inspection.ChecklistStatus(raw.Status)
		if !status.Valid() {
			return nil, fault.New(fault.KindParse,
				fmt.Sprintf("AI returned invalid status %q for %q", raw.Status, raw.Title))
		}
		results = append(results, inspection.ChecklistItem{
			Title:       title,
			Description: raw.Description,
			Status:      status,
		})
	}

	merged := inspection.MergeStatuses(submitted, results)
	return &VerificationResult{
		Items:                  merged,
		State:                  inspection.StateFor(merged),
		Recommendations:        resp.Recommendations,
		AdditionalObservations: resp.AdditionalObservations,
	}, nil
}

func stripMarkdownFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		firstNewline := strings.Index(trimmed, "\n")
		if firstNewline == -1 {
			return trimmed
		}
		trimmed = trimmed[firstNewline+1:]

		if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
			trimmed = trimmed[:idx]
		}

		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
