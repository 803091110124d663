package vk

// sizeRank orders VK size labels from smallest to largest. Labels are
// categorical, so they must be compared through this table rather than as
// strings. Labels not listed rank below every known one.
var sizeRank = map[string]int{
	"s": 1,
	"m": 2,
	"o": 3,
	"p": 4,
	"q": 5,
	"r": 6,
	"x": 7,
	"y": 8,
	"z": 9,
	"w": 10,
}

// Rank returns the position of a size label in the provider ordering
func Rank(label string) int {
	return sizeRank[label]
}

// BestSize picks the highest-ranked rendition. On equal rank the earliest one
// wins. ok is false when sizes is empty.
func BestSize(sizes []PhotoSize) (best PhotoSize, ok bool) {
	if len(sizes) == 0 {
		return PhotoSize{}, false
	}

	best = sizes[0]
	bestRank := Rank(best.Type)
	for _, s := range sizes[1:] {
		if r := Rank(s.Type); r > bestRank {
			best, bestRank = s, r
		}
	}
	return best, true
}
