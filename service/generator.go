package service

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/HISASHIKUSANO/GeminiAPI01/config"
	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/apperr"
)

const (
	msgTextTooShort     = "抽出されたテキストが短すぎます。有効なWebページのURLを指定してください。"
	msgGenerationFailed = "契約文の生成に失敗しました。しばらく時間をおいて再試行してください。"

	generateInstruction = "以下のテキストから契約文を生成してください："

	// minGenerateRunes gates the model call; shorter text never reaches it.
	minGenerateRunes = 50
	// maxInputRunes caps what is sent to the model. Truncation is a plain
	// cut, not aligned to any semantic boundary.
	maxInputRunes = 150000
	// contractRuneLimit is a soft target. When the output exceeds it and
	// the first "。"-terminated sentence fits, that sentence is returned;
	// otherwise the output is left as produced.
	contractRuneLimit = 60
)

// textModel is the minimal surface of the generative API the service needs.
// Tests substitute a stub; production uses geminiModel.
type textModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type geminiModel struct {
	client *genai.Client
	model  string
}

func (m *geminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}

// GeneratorService composes the system instruction with extracted text,
// calls the model exactly once and formats the result into one line.
type GeneratorService struct {
	model        textModel
	systemPrompt string
}

func NewGeneratorService(ctx context.Context, cfg *config.GeminiConfig, systemPrompt string) (*GeneratorService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeneratorService{
		model:        &geminiModel{client: client, model: cfg.Model},
		systemPrompt: systemPrompt,
	}, nil
}

// Generate produces the contract text for the given extracted text.
func (s *GeneratorService) Generate(ctx context.Context, text string) (string, error) {
	if len([]rune(strings.TrimSpace(text))) < minGenerateRunes {
		return "", apperr.New(apperr.KindInvalidInput, msgTextTooShort)
	}

	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	prompt := fmt.Sprintf("%s\n\n%s\n\n%s", s.systemPrompt, generateInstruction, text)

	raw, err := s.model.GenerateText(ctx, prompt)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal,
			fmt.Sprintf("契約文生成中にエラーが発生しました: %v", err), err)
	}
	if raw == "" {
		return "", apperr.New(apperr.KindGeneration, msgGenerationFailed)
	}

	return formatContract(raw), nil
}

// Ping performs one trivial round-trip to the model for the health check.
func (s *GeneratorService) Ping(ctx context.Context) error {
	_, err := s.model.GenerateText(ctx, "Hello")
	return err
}

// formatContract collapses the model output to a single line and applies
// the soft length limit by cutting at the first sentence boundary when
// that boundary fits.
func formatContract(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.NewReplacer("\n", "", "\r", "", "\t", "").Replace(text)

	if len([]rune(text)) > contractRuneLimit {
		sentences := strings.Split(text, "。")
		if len(sentences) > 1 && len([]rune(sentences[0]+"。")) <= contractRuneLimit {
			text = sentences[0] + "。"
		}
	}

	return text
}
