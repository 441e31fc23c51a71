package spacedrep

import (
	"sort"
	"time"
)

// lastTouched is the last review time, or the time the card was added if it
// was never reviewed.
func (c Card) lastTouched() time.Time {
	if c.HasReview() {
		return c.LastReview
	}
	return c.AddedAt
}

// Merge combines a local and a remote deck. Cards present on one side only
// are kept; when both sides hold a card the one touched most recently wins,
// with ties going to local. The result is sorted by question ID.
func Merge(local, remote []Card) []Card {
	byID := make(map[string]Card, len(local)+len(remote))
	for _, c := range remote {
		byID[c.QuestionID] = c
	}
	for _, c := range local {
		r, ok := byID[c.QuestionID]
		if !ok || !c.lastTouched().Before(r.lastTouched()) {
			byID[c.QuestionID] = c
		}
	}

	out := make([]Card, 0, len(byID))
	for _, c := range byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
