package store

// DefaultPageSize is the ledger page size
const DefaultPageSize = 5

// MaxPageSize caps caller supplied page sizes
const MaxPageSize = 100

// normalizePage clamps page to >= 1 and pageSize to 1..MaxPageSize
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
