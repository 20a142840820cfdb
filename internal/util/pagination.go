package util

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*MaxPerPage well inside int range.
	MaxPage = 1_000_000
)

func ClampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	default:
		return page
	}
}

func ClampPerPage(size int) int {
	switch {
	case size < 1:
		return 1
	case size > MaxPerPage:
		return MaxPerPage
	default:
		return size
	}
}

func Calculate(page, size int) (offset int, limit int) {
	page = ClampPage(page)
	limit = ClampPerPage(size)
	offset = (page - 1) * limit
	return offset, limit
}

func LastPage(total int64, size int) int {
	size = ClampPerPage(size)
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Bounds returns the 1-based positions of the first and last item on the
// page, or nils when the page is empty.
func Bounds(page, size, count int) (from, to *int) {
	if count == 0 {
		return nil, nil
	}
	offset, _ := Calculate(page, size)
	f, t := offset+1, offset+count
	return &f, &t
}
