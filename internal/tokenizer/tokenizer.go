// Package tokenizer provides token counting backends behind a single
// capability interface consumed by the aggregation stage.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model         string
	TokenizerFile string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter implementation for the requested configuration
// along with the effective model name used for reporting. A tokenizer file
// takes precedence over the model name and loads a HuggingFace tokenizer.json
// for local or open models. OpenAI-family model names resolve their encoding
// through tiktoken; anything unrecognized falls back to cl100k_base so token
// counting keeps working with an approximate encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	if tokenizerFilePath := strings.TrimSpace(cfg.TokenizerFile); tokenizerFilePath != "" {
		counter, loadError := newHuggingFaceCounter(tokenizerFilePath)
		if loadError != nil {
			return nil, "", loadError
		}
		return counter, counter.Name(), nil
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	if isOpenAIModel(lowerModel) {
		encoding, encodingError := tiktoken.EncodingForModel(lowerModel)
		if encodingError == nil && encoding != nil {
			return openAICounter{encoding: encoding, name: lowerModel}, model, nil
		}
	}

	fallback, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"o1",
		"o3",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
