package models

import (
	"fmt"
	"time"
)

// Timestamp labels are Vietnamese.
const (
	labelJustPosted = "Vừa đăng"
	dateLayout      = "2/1/2006"
)

// HumanizeSince renders t relative to now: minutes, hours and days for the
// first week, then the d/m/yyyy calendar date.
func HumanizeSince(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return labelJustPosted
	case d < time.Hour:
		return fmt.Sprintf("%d phút trước", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d giờ trước", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d ngày trước", int(d/(24*time.Hour)))
	default:
		return t.Format(dateLayout)
	}
}
