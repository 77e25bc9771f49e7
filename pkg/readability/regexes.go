package readability

import "regexp"

// Class/id heuristics are kept as data rather than scattered conditionals
// so each pattern list can be tested and tuned on its own.
var (
	// positiveRe marks class/id names that suggest article content.
	positiveRe = regexp.MustCompile(`(?i)article|body|content|entry|hentry|h-entry|main|page|pagination|post|text|blog|story`)

	// negativeRe marks class/id names that suggest chrome around the content.
	negativeRe = regexp.MustCompile(`(?i)hidden|^hid$| hid$| hid |^hid |banner|combx|comment|com-|contact|foot|footer|footnote|gdpr|masthead|media|meta|outbrain|promo|related|scroll|share|shoutbox|sidebar|skyscraper|sponsor|shopping|tags|tool|widget`)

	// bylineRe matches class/id/itemprop names used for author bylines.
	bylineRe = regexp.MustCompile(`(?i)byline|author|dateline|writtenby|p-author`)

	// shareRe matches social share widgets that survive the negative list.
	shareRe = regexp.MustCompile(`(?i)(\b|_)(share|sharedaddy)(\b|_)`)

	// titleSeparatorRe splits "Article Name | Site Name" style titles.
	titleSeparatorRe = regexp.MustCompile(` [\|\-\\/>»] `)

	commaRe      = regexp.MustCompile(`,`)
	whitespaceRe = regexp.MustCompile(`\s{2,}`)
)

// classWeight scores a node's class and id strings against the pattern
// lists. Matching both attributes doubles the effect, as in the classic
// readability heuristic.
func classWeight(class, id string, tun Tuning) float64 {
	var weight float64
	for _, attr := range []string{class, id} {
		if attr == "" {
			continue
		}
		if negativeRe.MatchString(attr) {
			weight -= tun.ClassWeight
		}
		if positiveRe.MatchString(attr) {
			weight += tun.ClassWeight
		}
	}
	return weight
}
