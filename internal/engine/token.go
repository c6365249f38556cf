package engine

import (
	"sync/atomic"
	"time"
)

var lastToken atomic.Int64

// NextToken returns a millisecond-epoch identifier token, bumped past the
// previous one when two creations land in the same millisecond. Tokens are
// opaque: uniqueness matters, ordering does not.
func NextToken() int64 {
	for {
		prev := lastToken.Load()
		next := time.Now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if lastToken.CompareAndSwap(prev, next) {
			return next
		}
	}
}
