package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HISASHIKUSANO/GeminiAPI01/model"
	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/apperr"
	"github.com/HISASHIKUSANO/GeminiAPI01/pkg/logger"
)

const msgInvalidRequestURL = "無効なURLです。http または https で始まるURLを指定してください。"

// Fetcher retrieves the raw HTML document at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns raw HTML into normalized plain text.
type Extractor interface {
	Extract(html, pageURL string) (string, error)
}

// Generator produces the contract text from extracted text.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

type ContractHandler struct {
	fetcher   Fetcher
	extractor Extractor
	generator Generator
}

func NewContractHandler(fetcher Fetcher, extractor Extractor, generator Generator) *ContractHandler {
	return &ContractHandler{
		fetcher:   fetcher,
		extractor: extractor,
		generator: generator,
	}
}

// Generate handles POST /contract: fetch the page, extract its main text
// and generate the contract text. The pipeline is strictly linear; the
// first failure ends the request.
func (h *ContractHandler) Generate(c *gin.Context) {
	var req model.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgInvalidRequestURL})
		return
	}

	ctx := c.Request.Context()

	html, err := h.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}

	text, err := h.extractor.Extract(html, req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}

	contract, err := h.generator.Generate(ctx, text)
	if err != nil {
		h.fail(c, err)
		return
	}

	logger.Info(ctx, "contract generated", "url", req.URL, "contract_len", len([]rune(contract)))

	c.JSON(http.StatusOK, model.ContractResponse{
		Contract: contract,
		URL:      req.URL,
	})
}

// fail translates a pipeline error into an HTTP response. Classified errors
// keep their message; anything unclassified becomes a generic server error
// wrapping the underlying message.
func (h *ContractHandler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	detail := err.Error()
	if !apperr.IsClassified(err) {
		detail = fmt.Sprintf("契約文生成中にエラーが発生しました: %v", err)
	}

	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "contract generation failed", "error", err)
	} else {
		logger.Warn(ctx, "contract request rejected", "detail", detail)
	}

	c.JSON(status, gin.H{"detail": detail})
}
