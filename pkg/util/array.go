package util

// InSlice checks whether the item exists in the slice
// InSlice 检查元素是否存在于切片中
func InSlice[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// RemoveDuplicate removes duplicate strings, keeping first-seen order
// RemoveDuplicate 去除重复字符串，保持首次出现的顺序
func RemoveDuplicate(strSlice []string) []string {
	allKeys := make(map[string]bool)
	list := make([]string, 0, len(strSlice))
	for _, item := range strSlice {
		if _, ok := allKeys[item]; !ok {
			allKeys[item] = true
			list = append(list, item)
		}
	}
	return list
}
