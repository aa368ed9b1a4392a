package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

var _ Counter = openAICounter{}

func (counter openAICounter) Name() string {
	return counter.name
}

// CountString encodes the input without special-token interpretation, so file
// content containing literal marker strings cannot skew the estimate.
func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	tokenIdentifiers := counter.encoding.EncodeOrdinary(input)
	return len(tokenIdentifiers), nil
}
