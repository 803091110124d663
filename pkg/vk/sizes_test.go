package vk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sizes(labels ...string) []PhotoSize {
	out := make([]PhotoSize, len(labels))
	for i, l := range labels {
		out[i] = PhotoSize{Type: l, URL: "http://cdn/" + l + ".jpg"}
	}
	return out
}

func TestBestSizeIgnoresInputOrder(t *testing.T) {
	orders := [][]string{
		{"s", "x", "m"},
		{"x", "m", "s"},
		{"m", "s", "x"},
	}
	for _, order := range orders {
		best, ok := BestSize(sizes(order...))
		assert.True(t, ok)
		assert.Equal(t, "x", best.Type, "order %v", order)
	}
}

func TestBestSizeUsesRankNotLexicalOrder(t *testing.T) {
	// lexically "z" > "w", but w is the largest VK rendition
	best, _ := BestSize(sizes("z", "w", "y"))
	assert.Equal(t, "w", best.Type)

	// lexically "s" > "o", but o ranks above s
	best, _ = BestSize(sizes("s", "o"))
	assert.Equal(t, "o", best.Type)
}

func TestBestSizeTiesKeepFirst(t *testing.T) {
	in := []PhotoSize{
		{Type: "x", URL: "http://cdn/first.jpg"},
		{Type: "x", URL: "http://cdn/second.jpg"},
	}
	best, _ := BestSize(in)
	assert.Equal(t, "http://cdn/first.jpg", best.URL)
}

func TestBestSizeUnknownLabels(t *testing.T) {
	best, _ := BestSize(sizes("base", "m"))
	assert.Equal(t, "m", best.Type)

	best, _ = BestSize(sizes("base", "other"))
	assert.Equal(t, "base", best.Type, "all unknown: first wins")
}

func TestBestSizeEmpty(t *testing.T) {
	_, ok := BestSize(nil)
	assert.False(t, ok)
}

func TestRankTable(t *testing.T) {
	order := []string{"s", "m", "o", "p", "q", "r", "x", "y", "z", "w"}
	for i := 1; i < len(order); i++ {
		assert.Less(t, Rank(order[i-1]), Rank(order[i]))
	}
	assert.Equal(t, 0, Rank("unknown"))
}
