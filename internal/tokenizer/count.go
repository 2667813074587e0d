package tokenizer

import (
	"errors"
	"os"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// CountResult captures the outcome of counting a file or byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Content that is not text is reported
// as not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	if !utils.IsText(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile reads the file at path and estimates its token count.
func CountFile(counter Counter, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	// #nosec G304
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return CountResult{}, readErr
	}
	return CountBytes(counter, data)
}
