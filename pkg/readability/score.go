package readability

import (
	"strings"

	"golang.org/x/net/html"
)

// Tuning holds the heuristic constants of the scoring algorithm. The
// defaults follow the classic readability family; the roles are fixed,
// the values are tunable.
type Tuning struct {
	// MinTextLength is the minimum character count before a
	// content-bearing node contributes any score.
	MinTextLength int
	// LengthBonusCap caps the diminishing-returns length contribution
	// (one point per 100 characters, at most this many points).
	LengthBonusCap float64
	// PropagationDepth is how many ancestor levels receive score.
	PropagationDepth int
	// ClassWeight is the bonus/malus applied per matching class or id.
	ClassWeight float64
	// MinCandidateScore is the minimum adjusted score a winning
	// candidate must reach, below it extraction fails.
	MinCandidateScore float64
	// SiblingFraction is the share of the winner's score a sibling
	// needs to be absorbed into the result.
	SiblingFraction float64
	// SiblingScoreFloor is the absolute lower bound for the sibling
	// absorption threshold.
	SiblingScoreFloor float64
}

// DefaultTuning is used by Extract.
var DefaultTuning = Tuning{
	MinTextLength:     25,
	LengthBonusCap:    3,
	PropagationDepth:  3,
	ClassWeight:       25,
	MinCandidateScore: 5,
	SiblingFraction:   0.25,
	SiblingScoreFloor: 10,
}

// contentBearing is the fixed allow-list of tags whose text seeds scores.
func contentBearing(tag string) bool {
	switch tag {
	case "p", "td", "pre", "blockquote":
		return true
	}
	return false
}

// tagPrior is the base likelihood that a container of prose of this tag
// is itself the article body.
func tagPrior(tag string) float64 {
	switch tag {
	case "div", "article", "section", "main":
		return 5
	case "pre", "td", "blockquote":
		return 3
	case "address", "ol", "ul", "dl", "dd", "dt", "li", "form":
		return -3
	case "h1", "h2", "h3", "h4", "h5", "h6", "th":
		return -5
	}
	return 0
}

// scorer keeps the per-extraction score side table. Scores are keyed to
// node identity rather than stored on nodes, so the table's lifetime is
// exactly one extraction call.
type scorer struct {
	tun        Tuning
	scores     map[*html.Node]float64
	candidates []*html.Node
}

func newScorer(tun Tuning) *scorer {
	return &scorer{
		tun:    tun,
		scores: make(map[*html.Node]float64),
	}
}

// initCandidate seeds a first-touched ancestor with its tag prior and
// class/id weight. Candidates accumulate in first-touch document order,
// which is what makes the tie-break stable.
func (s *scorer) initCandidate(n *html.Node) {
	if _, ok := s.scores[n]; ok {
		return
	}
	s.scores[n] = tagPrior(n.Data) + classWeight(attrValue(n, "class"), attrValue(n, "id"), s.tun)
	s.candidates = append(s.candidates, n)
}

// adjusted returns a candidate's score cut by its link density. The cut
// only applies to positive scores: anchor share can lower a score, never
// raise one.
func (s *scorer) adjusted(n *html.Node) float64 {
	score := s.scores[n]
	if score <= 0 {
		return score
	}
	return score * (1 - linkDensity(n))
}

// scoreAndSelect runs the candidate-scoring pass over the document and
// returns the root of the selected content, with qualifying siblings
// absorbed. It fails with ErrNoContent when no candidate reaches the
// minimum viable score.
func scoreAndSelect(d *Document, tun Tuning) (*html.Node, error) {
	root := d.root()
	if root == nil {
		return nil, ErrNoContent
	}

	s := newScorer(tun)
	walkElements(root, func(n *html.Node) bool {
		if skippedText(n.Data) {
			return false
		}
		if !contentBearing(n.Data) {
			return true
		}
		text := nodeText(n)
		if len(text) < tun.MinTextLength {
			return true
		}

		base := 1.0
		base += float64(len(commaRe.FindAllStringIndex(text, -1)))
		lengthBonus := float64(len(text)) / 100
		if lengthBonus > tun.LengthBonusCap {
			lengthBonus = tun.LengthBonusCap
		}
		base += lengthBonus

		// The container of many good paragraphs is itself a good
		// candidate: parent gets the full addend, grandparent half,
		// great-grandparent a third.
		ancestor := n.Parent
		for level := 0; level < tun.PropagationDepth && ancestor != nil; level++ {
			if ancestor.Type != html.ElementNode || ancestor.Data == "html" {
				break
			}
			s.initCandidate(ancestor)
			s.scores[ancestor] += base / float64(level+1)
			ancestor = ancestor.Parent
		}
		return true
	})

	// Candidates were appended in first-touch document order, so a strict
	// greater-than keeps the earlier node on ties.
	var best *html.Node
	var bestScore float64
	for _, c := range s.candidates {
		score := s.adjusted(c)
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	}
	if best == nil || bestScore < tun.MinCandidateScore {
		return nil, ErrNoContent
	}

	return s.absorbSiblings(best), nil
}

// absorbSiblings re-scans the winner's siblings and merges the ones that
// independently look like content. This recovers legitimate content split
// across adjacent containers, such as an intro paragraph outside the
// detected wrapper.
func (s *scorer) absorbSiblings(best *html.Node) *html.Node {
	parent := best.Parent
	if parent == nil {
		return best
	}

	threshold := s.adjusted(best) * s.tun.SiblingFraction
	if threshold < s.tun.SiblingScoreFloor {
		threshold = s.tun.SiblingScoreFloor
	}

	var keep []*html.Node
	for sib := parent.FirstChild; sib != nil; sib = sib.NextSibling {
		if sib == best {
			keep = append(keep, sib)
			continue
		}
		if sib.Type != html.ElementNode {
			continue
		}
		if _, scored := s.scores[sib]; scored && s.adjusted(sib) >= threshold {
			keep = append(keep, sib)
			continue
		}
		if sib.Data == "p" {
			text := nodeText(sib)
			density := linkDensity(sib)
			switch {
			case len(text) > 80 && density < 0.25:
				keep = append(keep, sib)
			case len(text) > 0 && len(text) <= 80 && density == 0 && strings.Contains(text, ". "):
				keep = append(keep, sib)
			}
		}
	}

	if len(keep) == 1 {
		detach(best)
		return best
	}
	container := newElement("div")
	for _, n := range keep {
		detach(n)
		container.AppendChild(n)
	}
	return container
}
