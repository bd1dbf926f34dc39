package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNoLog is returned when the document has no "log" object.
var ErrNoLog = errors.New("har: missing log object")

// archive mirrors the subset of the HAR document we decode.
type archive struct {
	Log *struct {
		Pages []struct {
			ID              string `json:"id"`
			Title           string `json:"title"`
			StartedDateTime string `json:"startedDateTime"`
		} `json:"pages"`
		Entries []*Entry `json:"entries"`
	} `json:"log"`
}

// Parse decodes a HAR document into its pages in archive order.
// Entries are grouped by pageref and stably sorted by start time; entries
// referring to no known page are dropped.
func Parse(data []byte) ([]*Page, error) {
	var doc archive
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("har: decode: %w", err)
	}
	if doc.Log == nil {
		return nil, ErrNoLog
	}

	byPage := make(map[string][]*Entry, len(doc.Log.Pages))
	for _, e := range doc.Log.Entries {
		if e == nil {
			continue
		}
		byPage[e.PageRef] = append(byPage[e.PageRef], e)
	}

	pages := make([]*Page, 0, len(doc.Log.Pages))
	for _, rec := range doc.Log.Pages {
		entries := byPage[rec.ID]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Started().Before(entries[j].Started())
		})
		pages = append(pages, newPage(rec.ID, rec.Title, rec.StartedDateTime, entries))
	}
	return pages, nil
}
