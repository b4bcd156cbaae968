package chat

import (
	"log"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEncoding is the tokenizer used for budget accounting.
const TokenEncoding = "cl100k_base"

// TokenCounter counts the tokens in a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with a BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(TokenEncoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count implements TokenCounter.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateCounter approximates one token per four characters.
type EstimateCounter struct{}

// Count implements TokenCounter.
func (EstimateCounter) Count(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

// NewTokenCounter returns a tiktoken counter, or an estimate when the encoding cannot be loaded.
func NewTokenCounter() TokenCounter {
	c, err := NewTiktokenCounter()
	if err != nil {
		log.Printf("[chat] tokenizer unavailable, estimating token counts: %v", err)
		return EstimateCounter{}
	}
	return c
}
