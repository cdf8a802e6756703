package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/alkime/intake/internal/intake"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const maxTokens = 4096

// ClaudeAnalyst reads documents and photos and runs the specialist steps
// on Claude.
type ClaudeAnalyst struct {
	apiKey string
	model  anthropic.Model
	opts   []option.RequestOption
}

// NewClaudeAnalyst creates an analysis client. Extra options are passed to
// every request.
func NewClaudeAnalyst(apiKey string, opts ...option.RequestOption) *ClaudeAnalyst {
	return &ClaudeAnalyst{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
		opts:   opts,
	}
}

// AnalyzeDocument extracts the clinical content of a lab report,
// prescription or note. Images and PDFs are attached, text is inlined.
func (a *ClaudeAnalyst) AnalyzeDocument(ctx context.Context, doc intake.File) (string, error) {
	block, err := attachment(doc)
	if err != nil {
		return "", err
	}

	return a.send(ctx, documentAnalyst.SystemPrompt(), block, anthropic.NewTextBlock(DocumentPrompt))
}

// AnalyzeSymptomImage describes a photo of a wound, rash or swelling.
func (a *ClaudeAnalyst) AnalyzeSymptomImage(ctx context.Context, img intake.File) (string, error) {
	mimeType := img.MIMEType
	if !isImage(mimeType) {
		mimeType = intake.FallbackMIMEType
	}

	return a.send(ctx, documentAnalyst.SystemPrompt(),
		anthropic.NewImageBlockBase64(mimeType, base64.StdEncoding.EncodeToString(img.Data)),
		anthropic.NewTextBlock(SymptomImagePrompt))
}

// Complete runs one text-only step.
func (a *ClaudeAnalyst) Complete(ctx context.Context, system, task string) (string, error) {
	return a.send(ctx, system, anthropic.NewTextBlock(task))
}

func (a *ClaudeAnalyst) send(ctx context.Context, system string, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	if a.apiKey == "" {
		return "", errors.New("API key required: set ANTHROPIC_API_KEY or use intake config set-key")
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(a.apiKey)}, a.opts...)...)

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to analyze via Anthropic API: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}

	if out.Len() == 0 {
		return "", errors.New("empty response from Anthropic API")
	}

	return out.String(), nil
}

func attachment(doc intake.File) (anthropic.ContentBlockParamUnion, error) {
	mimeType := doc.MIMEType
	if mimeType == "" {
		mimeType = intake.DetectMIME(doc.Name)
	}

	switch {
	case mimeType == "application/pdf":
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(doc.Data),
		}), nil
	case isText(mimeType):
		return anthropic.NewTextBlock(fmt.Sprintf("Document %q:\n\n%s", doc.Name, doc.Data)), nil
	case isImage(mimeType):
		return anthropic.NewImageBlockBase64(mimeType, base64.StdEncoding.EncodeToString(doc.Data)), nil
	default:
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("unsupported document type %s for %s", mimeType, doc.Name)
	}
}
