package tokenizer

import (
	"fmt"
	"path/filepath"

	huggingface "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

type huggingFaceCounter struct {
	inner *huggingface.Tokenizer
	name  string
}

var _ Counter = huggingFaceCounter{}

// newHuggingFaceCounter loads a HuggingFace tokenizer.json from disk. The
// counter is named after the file so reports identify the local tokenizer
// rather than a model family.
func newHuggingFaceCounter(tokenizerFilePath string) (huggingFaceCounter, error) {
	loadedTokenizer, loadError := pretrained.FromFile(tokenizerFilePath)
	if loadError != nil {
		return huggingFaceCounter{}, fmt.Errorf("load tokenizer file %s: %w", tokenizerFilePath, loadError)
	}
	return huggingFaceCounter{inner: loadedTokenizer, name: filepath.Base(tokenizerFilePath)}, nil
}

func (counter huggingFaceCounter) Name() string {
	return counter.name
}

func (counter huggingFaceCounter) CountString(input string) (int, error) {
	if counter.inner == nil {
		return 0, fmt.Errorf("nil huggingface tokenizer")
	}
	encoded, encodeError := counter.inner.EncodeSingle(input)
	if encodeError != nil {
		return 0, fmt.Errorf("encode text: %w", encodeError)
	}
	return len(encoded.Tokens), nil
}
