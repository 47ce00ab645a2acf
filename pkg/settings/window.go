package settings

// WindowItem pairs a menu entry with its absolute index in the list.
type WindowItem struct {
	Index   int
	Setting Setting
}

// VisibleWindow returns up to count menu items centered around current,
// without wrapping. The returned items carry their absolute indices so the
// caller can highlight the cursor position.
func VisibleWindow(items []Setting, current, count int) []WindowItem {
	total := len(items)
	if total == 0 {
		return nil
	}
	if count > total {
		count = total
	}
	if current < 0 {
		current = 0
	}
	if current > total-1 {
		current = total - 1
	}

	start := current - count/2
	end := start + count
	if start < 0 {
		start = 0
		end = count
	}
	if end > total {
		end = total
		start = total - count
	}

	window := make([]WindowItem, 0, count)
	for i := start; i < end; i++ {
		window = append(window, WindowItem{Index: i, Setting: items[i]})
	}
	return window
}
