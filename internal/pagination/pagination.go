// Package pagination computes page windows for listing endpoints.
package pagination

import "strconv"

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// Page describes one page of a listing of Total items.
type Page struct {
	Current int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"total_pages"`
	Start   int `json:"start"` // zero-based offset of the first item
	End     int `json:"end"`   // exclusive offset after the last item
}

// New clamps current to [1, Pages] (or 1 when there are no items),
// total to >= 0 and perPage to >= 1.
func New(current, total, perPage int) Page {
	current = max(current, 1)
	total = max(total, 0)
	perPage = max(perPage, 1)

	pages := (total + perPage - 1) / perPage
	if current > pages && pages > 0 {
		current = pages
	}

	start := (current - 1) * perPage
	return Page{
		Current: current,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		Start:   start,
		End:     min(start+perPage, total),
	}
}

// ParsePage reads a 1-based page number, defaulting to 1 for missing or bad input.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePerPage reads a page size, falling back to DefaultPerPage outside 1..MaxPerPage.
func ParsePerPage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxPerPage {
		return DefaultPerPage
	}
	return n
}

func (p Page) Offset() int { return p.Start }

func (p Page) Limit() int { return p.PerPage }

func (p Page) HasPrevious() bool { return p.Current > 1 }

func (p Page) HasNext() bool { return p.Current < p.Pages }

func (p Page) Previous() int { return max(1, p.Current-1) }

func (p Page) Next() int { return min(p.Pages, p.Current+1) }

// Numbers returns up to window page numbers centred on the current page.
func (p Page) Numbers(window int) []int {
	if window < 1 || p.Pages == 0 {
		return nil
	}
	start := max(1, p.Current-window/2)
	end := min(p.Pages, start+window-1)
	if end-start < window-1 {
		start = max(1, end-window+1)
	}

	nums := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		nums = append(nums, i)
	}
	return nums
}
