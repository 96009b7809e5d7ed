package service

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/apperr"
)

const (
	msgNoContent      = "ページから有効なコンテンツを抽出できませんでした。"
	msgExtractedShort = "抽出されたテキストが短すぎます。より内容のあるページを指定してください。"

	// minExtractedRunes is the floor applied right after extraction; the
	// generator enforces a stricter one before calling the model.
	minExtractedRunes = 10
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	spaceRunPattern  = regexp.MustCompile(` +`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// ExtractorService turns raw HTML into normalized plain text using the
// readability algorithm for boilerplate removal.
type ExtractorService struct {
	parser readability.Parser
}

func NewExtractorService() *ExtractorService {
	parser := readability.NewParser()
	// The default threshold rejects short but perfectly valid pages; the
	// pipeline applies its own length floors instead.
	parser.CharThresholds = minExtractedRunes
	return &ExtractorService{parser: parser}
}

// Extract runs readability over htmlContent, strips residual markup from
// title and body, decodes entities and normalizes whitespace. pageURL is
// used to resolve relative references inside the document.
func (s *ExtractorService) Extract(htmlContent, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", apperr.New(apperr.KindInvalidInput, msgInvalidURL)
	}

	article, err := s.parser.Parse(strings.NewReader(htmlContent), u)
	if err != nil {
		return "", apperr.Wrap(apperr.KindExtraction,
			fmt.Sprintf("テキスト抽出中にエラーが発生しました: %v", err), err)
	}

	if article.Content == "" {
		return "", apperr.New(apperr.KindInvalidInput, msgNoContent)
	}

	text := stripHTMLTags(article.Content)
	if title := strings.TrimSpace(article.Title); title != "" {
		text = stripHTMLTags(title) + "\n\n" + text
	}

	text = cleanWhitespace(text)
	if len([]rune(text)) < minExtractedRunes {
		return "", apperr.New(apperr.KindInvalidInput, msgExtractedShort)
	}

	return text, nil
}

// stripHTMLTags removes markup and decodes HTML entities.
func stripHTMLTags(text string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
}

// cleanWhitespace collapses space runs to one, limits consecutive blank
// lines to a single one, and trims every line as well as the whole text.
// The result is stable under re-application.
func cleanWhitespace(text string) string {
	text = spaceRunPattern.ReplaceAllString(text, " ")

	// Trim lines before collapsing so whitespace-only lines count as blank.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankRunsPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
