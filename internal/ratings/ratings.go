// README: Performance figures for fleet and history views. The real ratings
// pipeline is not wired yet; Static serves the interim numbers so callers
// already depend on the Source interface.
package ratings

// Source supplies aggregate performance figures.
type Source interface {
	// CompletionRate is a whole percentage over the given completed-job
	// volume.
	CompletionRate(totalJobs int) int
	// AverageRating is the customer-facing average on a 5-point scale.
	AverageRating() float64
}

// Static returns fixed interim figures.
type Static struct{}

func (Static) CompletionRate(totalJobs int) int {
	if totalJobs > 0 {
		return 94
	}
	return 0
}

func (Static) AverageRating() float64 { return 4.5 }
