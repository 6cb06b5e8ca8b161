package views

// Paginator pages a list around a single cursor. The cursor is an absolute
// index into the list, never relative to the page: the editor hands it to
// Selection.Toggle and Selection.RangeSelect as the item's index, so a range
// started on one page and finished on another spans every row in between.
// The visible page is always the one holding the cursor.
type Paginator struct {
	pageSize int
	cursor   int
	total    int
}

// NewPaginator creates a paginator; a non-positive size falls back to 10
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Paginator{pageSize: pageSize}
}

// SetTotal sets the list length and pulls the cursor back inside it
func (p *Paginator) SetTotal(total int) {
	p.total = max(total, 0)
	p.cursor = p.clamp(p.cursor)
}

// Cursor returns the absolute index of the row under the cursor
func (p *Paginator) Cursor() int {
	return p.cursor
}

// Index returns the cursor and whether it points at a row. It is false
// only for an empty list.
func (p *Paginator) Index() (int, bool) {
	return p.cursor, p.cursor < p.total
}

// SetCursor moves the cursor to pos, clamped to the list
func (p *Paginator) SetCursor(pos int) {
	p.cursor = p.clamp(pos)
}

func (p *Paginator) CursorUp() bool {
	if p.cursor == 0 {
		return false
	}
	p.cursor--
	return true
}

func (p *Paginator) CursorDown() bool {
	if p.cursor >= p.total-1 {
		return false
	}
	p.cursor++
	return true
}

// VisibleRange returns the half-open index range of the cursor's page
func (p *Paginator) VisibleRange() (start, end int) {
	start = p.offset()
	return start, min(start+p.pageSize, p.total)
}

func (p *Paginator) TotalPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.pageSize - 1) / p.pageSize
}

// CurrentPage is 1-based
func (p *Paginator) CurrentPage() int {
	return p.cursor/p.pageSize + 1
}

// NextPage puts the cursor on the first row of the next page. The
// selection anchor is untouched, so a range can still reach back.
func (p *Paginator) NextPage() bool {
	next := p.offset() + p.pageSize
	if next >= p.total {
		return false
	}
	p.cursor = next
	return true
}

// PrevPage puts the cursor on the first row of the previous page
func (p *Paginator) PrevPage() bool {
	off := p.offset()
	if off == 0 {
		return false
	}
	p.cursor = off - p.pageSize
	return true
}

// Reset empties the paginator. Callers reset the selection with it, since
// the old indexes mean nothing for a new list.
func (p *Paginator) Reset() {
	p.cursor = 0
	p.total = 0
}

func (p *Paginator) offset() int {
	return p.cursor / p.pageSize * p.pageSize
}

func (p *Paginator) clamp(pos int) int {
	if pos >= p.total {
		pos = p.total - 1
	}
	return max(pos, 0)
}
