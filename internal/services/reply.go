package services

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

type ReplyShape int

const (
	ShapeSDK ReplyShape = iota
	ShapeRaw
	ShapeOpenAI
)

func (s ReplyShape) String() string {
	switch s {
	case ShapeSDK:
		return "sdk"
	case ShapeRaw:
		return "raw"
	case ShapeOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// RawGenerateResponse is the generateContent body as the stable HTTP API
// returns it.
type RawGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// Reply is a tagged union over the wire shapes the provider can answer with.
// Exactly one of SDK, Raw or OpenAI is set, matching Shape. Body holds the
// serialized reply.
type Reply struct {
	Shape  ReplyShape
	SDK    *genai.GenerateContentResponse
	Raw    *RawGenerateResponse
	OpenAI *openai.ChatCompletion
	Body   []byte
}

// Normalized is a reply reduced to plain text. Degraded means no text field
// was found and Text is the serialized reply.
type Normalized struct {
	Text     string
	Degraded bool
}

// NormalizeReply picks the first of: the shape's structured text, a top-level
// output_text field, or the serialized reply (degraded).
func NormalizeReply(r Reply) Normalized {
	if text := strings.TrimSpace(structuredText(r)); text != "" {
		return Normalized{Text: text}
	}
	if text := strings.TrimSpace(outputText(r.Body)); text != "" {
		return Normalized{Text: text}
	}
	return Normalized{Text: string(r.Body), Degraded: true}
}

func structuredText(r Reply) string {
	switch r.Shape {
	case ShapeSDK:
		if r.SDK == nil {
			return ""
		}
		return r.SDK.Text()
	case ShapeRaw:
		if r.Raw == nil || len(r.Raw.Candidates) == 0 {
			return ""
		}
		var parts []string
		for _, part := range r.Raw.Candidates[0].Content.Parts {
			if part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
		return strings.Join(parts, "")
	case ShapeOpenAI:
		if r.OpenAI == nil || len(r.OpenAI.Choices) == 0 {
			return ""
		}
		return r.OpenAI.Choices[0].Message.Content
	}
	return ""
}

func outputText(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var probe struct {
		OutputText string `json:"output_text"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.OutputText
}
