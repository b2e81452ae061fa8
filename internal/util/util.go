package util

import (
	"fmt"
	"time"

	"storefront/internal/domain/entity"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 10

// Paginate slices items into one page. Page numbers start at 1; a page past
// the end is clamped to the last page.
func Paginate[T any](items []T, page, limit int) entity.Page[T] {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	result := entity.Page[T]{Total: len(items), Limit: limit}
	lastPage := result.TotalPages()
	page = min(max(page, 1), lastPage)
	result.Page = page

	start := (page - 1) * limit
	end := min(start+limit, len(items))
	result.Items = make([]T, 0, max(end-start, 0))
	if start < end {
		result.Items = append(result.Items, items[start:end]...)
	}

	return result
}

// FormatBytes formats bytes into human readable format.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	const units = "KMGTPEZY"
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < len(units)-1; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), units[exp])
}

// FormatDuration formats duration into human readable format (e.g., "1h30m", "5m10s", "45s").
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}

	if duration < time.Hour {
		return fmt.Sprintf("%dm%ds", int(duration.Minutes()), int(duration.Seconds())%60)
	}

	return fmt.Sprintf("%dh%dm", int(duration.Hours()), int(duration.Minutes())%60)
}
