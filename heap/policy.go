package heap

// Policy selects how the placement engine picks among candidate free blocks
// within a size class. The original allocator fixed this at compile time
// via a #define; here it's a runtime Config field since no invariant depends
// on the choice, only asymptotic fragmentation behavior.
type Policy int

const (
	// BestFit scans the whole class list and keeps the smallest block that
	// still satisfies the request, exiting early on an exact match.
	BestFit Policy = iota
	// FirstFit returns the first block in the class list that satisfies
	// the request.
	FirstFit
)

func (p Policy) String() string {
	switch p {
	case BestFit:
		return "best-fit"
	case FirstFit:
		return "first-fit"
	default:
		return "unknown"
	}
}
