package impl

// normalizePagination clamps page and limit to the same bounds the
// persistence layer applies, so responses echo the effective values.
func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
