package gemini

import (
	"context"
	"log/slog"
	"strings"

	"roomchat/internal/infra/extractor"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/usecase/conversation"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client extracts booking fields with a Gemini model in JSON mode.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

var _ conversation.Extractor = (*Client)(nil)

func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errs.New("gemini: model must not be empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errs.Wrap(err, "gemini: create client")
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = responseSchema()

	return &Client{client: client, model: m, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Extract(ctx context.Context, req conversation.Request) (conversation.Result, error) {
	system, user := extractor.Prompt(req)

	// the model is shared; copy it so concurrent turns do not race on SystemInstruction
	m := *c.model
	m.SystemInstruction = genai.NewUserContent(genai.Text(system))

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		c.logger.Warn("gemini extraction request failed", "error", err.Error())
		return conversation.Result{}, errs.Mark(errs.Wrap(err, "gemini: generate content"), errs.ErrExtraction)
	}

	text, err := responseText(resp)
	if err != nil {
		return conversation.Result{}, err
	}
	return extractor.Decode(text, req.Location)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errs.Mark(errs.New("gemini: no candidates in response"), errs.ErrExtraction)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", errs.Mark(errs.New("gemini: empty response"), errs.ErrExtraction)
	}
	return sb.String(), nil
}

func responseSchema() *genai.Schema {
	field := func() *genai.Schema {
		return &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"value":      {Type: genai.TypeString},
				"confidence": {Type: genai.TypeNumber},
			},
			Required: []string{"value", "confidence"},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":             field(),
			"start_time":       field(),
			"duration_minutes": field(),
			"room":             field(),
			"requester":        field(),
			"purpose":          field(),
			"reply":            {Type: genai.TypeString},
		},
		Required: []string{"date", "start_time", "duration_minutes", "room", "requester", "purpose", "reply"},
	}
}
