// Package tokens provides token counting and trimming for context
// budgeting, backed by the cl100k_base encoding.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding is the tokeniser used throughout. cl100k_base matches the
// OpenAI text-embedding-3 model family.
const Encoding = "cl100k_base"

// Counter counts and trims text by token length.
type Counter struct {
	encoder *tiktoken.Tiktoken
}

// NewCounter creates a counter for the cl100k_base encoding.
func NewCounter() (*Counter, error) {
	encoder, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("get tiktoken encoding: %w", err)
	}
	return &Counter{encoder: encoder}, nil
}

// Count returns the token length of text.
func (c *Counter) Count(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}

// Trim cuts text down to at most maxTokens tokens. Text already within
// the budget is returned unchanged.
func (c *Counter) Trim(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	toks := c.encoder.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text
	}
	return c.encoder.Decode(toks[:maxTokens])
}
