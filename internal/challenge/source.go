package challenge

import "math/rand/v2"

// DefaultSource draws from the process-wide generator, which is safe for concurrent use
var DefaultSource Source = globalSource{}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }
