package pipeline

import "github.com/nao1215/classifurlr/internal/model"

// PostProcessor refines a finished session verdict.
type PostProcessor interface {
	// Process returns the refined verdict. It must not modify sc.
	Process(sc *model.Classification) *model.Classification

	// Name returns the post-processor's name for logging.
	Name() string
}

// BlockedFinder marks a down session blocked when any of its pages, or any
// classifier verdict on those pages, is blocked. Blocked pages are forced to
// full confidence.
type BlockedFinder struct{}

// Name implements PostProcessor.
func (BlockedFinder) Name() string {
	return "blocked_finder"
}

// Process implements PostProcessor.
func (BlockedFinder) Process(sc *model.Classification) *model.Classification {
	if !sc.IsDown() {
		return sc
	}

	pages := sc.Constituents()
	refined := make([]*model.Classification, len(pages))
	sessionBlocked := false
	for i, pc := range pages {
		refined[i] = pc
		if !pageBlocked(pc) {
			continue
		}
		refined[i] = pc.WithBlocked(true)
		sessionBlocked = true
	}
	if !sessionBlocked {
		return sc
	}
	return sc.WithConstituents(refined).WithBlocked(false)
}

func pageBlocked(pc *model.Classification) bool {
	if pc.IsBlocked() {
		return true
	}
	for _, c := range pc.Constituents() {
		if c.IsBlocked() {
			return true
		}
	}
	return false
}
