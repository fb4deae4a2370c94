package shared

// NormalizePagination 归一化列表查询的分页参数，page 从 1 起，pageSize 限制在 [1, 100]
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = 20
	case pageSize > 100:
		pageSize = 100
	}
	return page, pageSize
}
