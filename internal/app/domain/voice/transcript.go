package voice

import (
	"sort"
	"strings"
)

// transcriptAssembler reconciles incremental recognition fragments. Fragments
// arrive keyed by sequence number; "apd" appends, "rpl" retracts a range of
// earlier fragments before storing the replacement.
type transcriptAssembler struct {
	fragments map[int]string
}

func newTranscriptAssembler() *transcriptAssembler {
	return &transcriptAssembler{fragments: make(map[int]string)}
}

// Apply folds one result frame into the fragment set.
func (a *transcriptAssembler) Apply(sn int, pgs string, rg [2]int, text string) {
	if pgs == "rpl" {
		for i := rg[0]; i <= rg[1]; i++ {
			delete(a.fragments, i)
		}
	}
	a.fragments[sn] = text
}

// Text concatenates the surviving fragments in ascending sequence order.
func (a *transcriptAssembler) Text() string {
	keys := make([]int, 0, len(a.fragments))
	for k := range a.fragments {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(a.fragments[k])
	}
	return strings.TrimSpace(b.String())
}
