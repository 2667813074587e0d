// Package tokenizer estimates how many model tokens an artifact consumes.
package tokenizer

import (
	"errors"
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
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a tiktoken Counter for the requested model. Models
// tiktoken does not know fall back to the cl100k_base encoding; Name reports
// the model or encoding actually used.
func NewCounter(cfg Config) (Counter, error) {
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	if model == "" {
		model = defaultModel
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: model}, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, nil
}

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
