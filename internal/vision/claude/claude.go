// Package claude adapts the Anthropic Messages API to the vision.Analyzer
// interface.
package claude

import (
	"context"
	"fmt"
	"io"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/Foetwenny/Penny-collection/internal/vision"
)

// maxTokens comfortably covers the three-line response the prompt asks for,
// with headroom for verbose models.
const maxTokens = 1024

type Analyzer struct {
	client *anthropic.Client
	model  anthropic.Model
}

// New builds an analyzer. Extra client options are accepted so tests can
// point the client at a local server.
func New(apiKey, model string, opts ...anthropic.ClientOption) *Analyzer {
	return &Analyzer{
		client: anthropic.NewClient(apiKey, opts...),
		model:  anthropic.Model(model),
	}
}

func (a *Analyzer) Analyze(ctx context.Context, r io.Reader, mimeType string) (*vision.Analysis, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64,
						normaliseMIME(mimeType),
						imageData,
					)),
					anthropic.NewTextMessageContent(vision.AnalysisPrompt),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("call anthropic: %w", err)
	}

	return vision.ParseResponse(resp.GetFirstContentText()), nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API
// accepts: jpeg, png, gif, and webp. Unknown types are coerced to jpeg as the
// most universally supported lossy fallback.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
