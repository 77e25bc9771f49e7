package download

import "fmt"

// Stats tallies a run for the end-of-run summary line. Partial counts
// articles that produced a book with one or more images missing.
type Stats struct {
	Total      int
	Successful int
	Partial    int
	Failed     int
}

// shortSummary renders the one-line outcome printed after every run.
// Counts must add up; the caller builds Stats from the same result set.
func shortSummary(s Stats) string {
	if s.Total != s.Successful+s.Partial+s.Failed {
		panic("summary counts must add up to the total")
	}
	noun := func(n int) string {
		if n == 1 {
			return "article"
		}
		return "articles"
	}
	switch {
	case s.Successful == s.Total && s.Successful == 1:
		return "Article downloaded successfully"
	case s.Failed == s.Total && s.Failed == 1:
		return "Article failed to download"
	case s.Partial == s.Total && s.Partial == 1:
		return "Article partially failed to download"
	case s.Successful == s.Total:
		return "All articles downloaded successfully"
	case s.Failed == s.Total:
		return "All articles failed to download"
	case s.Partial == s.Total:
		return "All articles partially failed to download"
	case s.Partial == 0:
		return fmt.Sprintf("%d %s downloaded successfully, %d %s failed",
			s.Successful, noun(s.Successful), s.Failed, noun(s.Failed))
	case s.Successful == 0:
		return fmt.Sprintf("%d %s partially failed to download, %d %s failed",
			s.Partial, noun(s.Partial), s.Failed, noun(s.Failed))
	case s.Failed == 0:
		return fmt.Sprintf("%d %s downloaded successfully, %d %s partially failed to download",
			s.Successful, noun(s.Successful), s.Partial, noun(s.Partial))
	default:
		return fmt.Sprintf("%d %s downloaded successfully, %d %s partially failed to download, %d %s failed",
			s.Successful, noun(s.Successful), s.Partial, noun(s.Partial), s.Failed, noun(s.Failed))
	}
}
