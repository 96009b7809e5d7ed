package service

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HISASHIKUSANO/GeminiAPI01/config"
	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/apperr"
)

const (
	msgInvalidURL    = "無効なURLです。http または https で始まるURLを指定してください。"
	msgNotHTML       = "HTMLページではありません。HTMLページのURLを指定してください。"
	msgFetchTimeout  = "URLの取得がタイムアウトしました。別のURLを試してください。"
	msgConnectFailed = "URLに接続できませんでした。URLが正しいかご確認ください。"
)

// browserHeaders impersonates a desktop browser so that pages serving
// bot-blocking placeholders return their real content.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "ja,en-US;q=0.7,en;q=0.3",
	"Accept-Encoding": "gzip, deflate",
	"Connection":      "keep-alive",
}

// FetcherService performs a single HTTP GET against a validated URL and
// classifies every failure into a user-facing error.
type FetcherService struct {
	httpClient *http.Client
}

func NewFetcherService(cfg *config.FetchConfig) *FetcherService {
	return &FetcherService{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// ValidateURL reports whether raw parses as an absolute http/https URL with
// a non-empty host. Parse failures are treated as invalid, never propagated.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch retrieves the HTML document at rawURL. Exactly one attempt is made;
// the response must be HTTP 200 with an HTML-family content type.
func (s *FetcherService) Fetch(ctx context.Context, rawURL string) (string, error) {
	if !ValidateURL(rawURL) {
		return "", apperr.New(apperr.KindInvalidInput, msgInvalidURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, fmt.Sprintf("予期しないエラーが発生しました: %v", err), err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.KindInvalidInput,
			fmt.Sprintf("URLの取得に失敗しました。ステータスコード: %d", resp.StatusCode))
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return "", apperr.New(apperr.KindInvalidInput, msgNotHTML)
	}

	body, err := readBody(resp)
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport,
			fmt.Sprintf("URLの取得中にエラーが発生しました: %v", err), err)
	}

	return string(body), nil
}

// readBody decompresses the payload when needed. Accept-Encoding is set
// explicitly in browserHeaders, which disables the transport's automatic
// gzip handling.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}

	return io.ReadAll(reader)
}

// classifyTransportError maps a transport-level failure onto the error
// taxonomy: timeout and connection failures get their own messages, other
// url.Error faults keep the underlying message, anything else is internal.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindTransport, msgFetchTimeout, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return apperr.Wrap(apperr.KindTransport, msgConnectFailed, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return apperr.Wrap(apperr.KindTransport,
			fmt.Sprintf("URLの取得中にエラーが発生しました: %v", err), err)
	}

	return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("予期しないエラーが発生しました: %v", err), err)
}
