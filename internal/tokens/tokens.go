// Package tokens counts tokens of JSON-serializable values against a
// model's tokenizer, for sizing trees against LLM context budgets.
package tokens

import (
	"encoding/json"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding covers model names tiktoken doesn't recognize.
const fallbackEncoding = "cl100k_base"

// Counter counts the tokens of a JSON-serializable value. Satisfied by
// *Estimator; tests substitute a stub.
type Counter interface {
	CountJSON(v any) int
}

// Estimator counts tokens using the encoding associated with a model name,
// falling back to cl100k_base when the model is unknown.
type Estimator struct {
	enc *tiktoken.Tiktoken
}

// NewEstimator resolves the tokenizer for model. Pure after construction:
// no side effects, no network per call.
func NewEstimator(model string) (*Estimator, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("tokens: load %s encoding: %w", fallbackEncoding, err)
		}
	}
	return &Estimator{enc: enc}, nil
}

// CountJSON serializes v to JSON and returns its token count. Go's
// encoding/json is deterministic for a given value (struct field order,
// sorted map keys), so repeated calls agree.
func (e *Estimator) CountJSON(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return len(e.enc.Encode(string(data), nil, nil))
}

// Count returns the token count of a plain string.
func (e *Estimator) Count(s string) int {
	return len(e.enc.Encode(s, nil, nil))
}
