package domain

// FilterResult is the outcome of running text through the keyword filter.
type FilterResult struct {
	Output      string
	Filtered    bool
	MatchedTerm string
}
