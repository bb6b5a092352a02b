package application

const maxVisiblePages = 5

// PageWindow is what a pager shows around the current zero-based page.
type PageWindow struct {
	Visible     bool  `json:"visible"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"total_pages"`
	Pages       []int `json:"pages"`
	ShowFirst   bool  `json:"show_first"`
	LeadingGap  bool  `json:"leading_gap"`
	ShowLast    bool  `json:"show_last"`
	TrailingGap bool  `json:"trailing_gap"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
}

func NewPageWindow(page, totalPages int) PageWindow {
	w := PageWindow{Page: page, TotalPages: totalPages}
	if totalPages <= 1 {
		return w
	}
	w.Visible = true

	start := max(0, page-maxVisiblePages/2)
	end := min(totalPages-1, start+maxVisiblePages-1)
	if end-start < maxVisiblePages-1 {
		start = max(0, end-maxVisiblePages+1)
	}
	for p := start; p <= end; p++ {
		w.Pages = append(w.Pages, p)
	}

	w.ShowFirst = start > 0
	w.LeadingGap = start > 1
	w.ShowLast = end < totalPages-1
	w.TrailingGap = end < totalPages-2
	w.HasPrev = page > 0
	w.HasNext = page < totalPages-1
	return w
}
