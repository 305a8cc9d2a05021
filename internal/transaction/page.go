package transaction

// Page is one window of the transaction list.
//
// TotalElements is read at pagination time and may race with concurrent
// inserts and deletes; no snapshot isolation is promised between the count
// and the scan.
type Page struct {
	Items         []*Transaction
	PageNumber    int
	PageSize      int
	TotalElements int64
	TotalPages    int
}

func NewPage(items []*Transaction, pageNumber, pageSize int, totalElements int64) *Page {
	p := &Page{
		Items:         items,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: totalElements,
	}

	if pageSize > 0 {
		p.TotalPages = int((totalElements + int64(pageSize) - 1) / int64(pageSize))
	}

	return p
}
