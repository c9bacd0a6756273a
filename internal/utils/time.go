package utils

import (
	"fmt"
	"time"
)

// TimeAgo 返回西班牙语的相对时间描述
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Justo ahora"
	case d < time.Hour:
		return fmt.Sprintf("Hace %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("Hace %d h", int(d.Hours()))
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "Hace 1 día"
		}
		return fmt.Sprintf("Hace %d días", days)
	default:
		return t.Format("2/1/2006")
	}
}
