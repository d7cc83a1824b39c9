package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"medibook/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemPrompt = `You are an intent parser for a doctor booking assistant.
You help users find doctors, view appointment slots and book appointments.
You NEVER invent doctor names, slot ids, fees, ratings or availability; you only
extract what the user said or what the conversation history already contains.

Return STRICTLY valid JSON, no markdown, no comments:
{
  "intent": "search | refine | view_schedule | book | confirm_booking | cancel | chitchat | unknown",
  "filters": {
    "specialty": "<canonical specialty or omit>",
    "keywords": ["..."],
    "minRating": <number or omit>,
    "maxFees": <number or omit>,
    "radiusKm": <number or omit>,
    "gender": "male|female or omit",
    "insurance": "<network or omit>",
    "availableAfter": "HH:MM or omit",
    "availableBefore": "HH:MM or omit"
  },
  "unset": ["<dimension the user explicitly withdrew>"],
  "doctorRef": "<doctor name, id, or 1-based rank in the last results, or omit>",
  "slotRef": "<slot id or HH:MM time, or omit>",
  "nextPage": <true when the user asks for more of the same results>,
  "confidence": <0..1>,
  "reply": "<only for intent=chitchat: your short reply>"
}

Rules:
- "refine" only when results were already shown and the user narrows them.
- Map symptoms to specialties: fever/cold/headache -> "General Physician";
  skin/acne -> "Dermatologist"; heart/chest pain -> "Cardiologist";
  child/baby -> "Pediatrician"; teeth -> "Dentist"; bone/joint/fracture ->
  "Orthopedist"; mental health -> "Psychiatrist"; pregnancy -> "Gynaecologist";
  ear/nose/throat/sinus -> "Ear, Nose, Throat".
- "no, not that specialty" means unset=["specialty"], not a new value.
- If required information is missing or the wording is ambiguous, use
  intent="unknown" with low confidence.`

// GeminiClassifier delegates text understanding to the Gemini API. Every call
// is bounded by the configured timeout; the conversation must never hang on it.
type GeminiClassifier struct {
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiClassifier builds the Gemini-backed classifier.
func NewGeminiClassifier(apiKey string, timeout time.Duration) (*GeminiClassifier, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiClassifier{model: model, timeout: timeout}, nil
}

// geminiResult is the wire shape the prompt demands.
type geminiResult struct {
	Intent     string                `json:"intent"`
	Filters    models.FilterCriteria `json:"filters"`
	Unset      []string              `json:"unset"`
	DoctorRef  string                `json:"doctorRef"`
	SlotRef    string                `json:"slotRef"`
	NextPage   bool                  `json:"nextPage"`
	Confidence float64               `json:"confidence"`
	Reply      string                `json:"reply"`
}

func (g *GeminiClassifier) Classify(ctx context.Context, text string, turn TurnContext) (models.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(g.buildPrompt(text, turn)))
	if err != nil {
		return models.Classification{}, fmt.Errorf("gemini generate error: %w", ErrUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return models.Classification{}, ErrMalformed
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return parseGeminiResult(sb.String())
}

func (g *GeminiClassifier) buildPrompt(text string, turn TurnContext) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)

	sb.WriteString("\n\nCONVERSATION HISTORY:\n")
	for _, t := range turn.Turns {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
	}

	criteria, _ := json.Marshal(turn.Criteria)
	fmt.Fprintf(&sb, "\nCURRENT FILTERS: %s\n", criteria)
	fmt.Fprintf(&sb, "RESULTS ALREADY SHOWN: %t\n", turn.HasResults)
	if turn.SelectedDoctor != "" {
		fmt.Fprintf(&sb, "SELECTED DOCTOR: %s\n", turn.SelectedDoctor)
	}
	fmt.Fprintf(&sb, "\nUSER: %s\n", text)
	return sb.String()
}

func parseGeminiResult(raw string) (models.Classification, error) {
	// Models occasionally wrap the JSON in a fence despite the instructions.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var res geminiResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &res); err != nil {
		return models.Classification{}, fmt.Errorf("gemini returned non-JSON: %w", ErrMalformed)
	}

	cl := models.Classification{
		Delta:      models.FilterDelta{Set: res.Filters},
		Confidence: res.Confidence,
		DoctorRef:  res.DoctorRef,
		SlotRef:    res.SlotRef,
		NextPage:   res.NextPage,
		Reply:      res.Reply,
	}
	for _, u := range res.Unset {
		cl.Delta.Unset = append(cl.Delta.Unset, models.Dimension(u))
	}

	switch models.Intent(res.Intent) {
	case models.IntentSearch, models.IntentRefine, models.IntentViewSchedule,
		models.IntentBook, models.IntentConfirmBooking, models.IntentCancel,
		models.IntentChitchat, models.IntentUnknown:
		cl.Intent = models.Intent(res.Intent)
	default:
		cl.Intent = models.IntentUnknown
		cl.Confidence = 0
	}
	return cl, nil
}
