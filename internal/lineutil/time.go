package lineutil

import (
	"time"
)

// Vietnam timezone; draws and "today" are judged on Hanoi time.
var vietnamTZ *time.Location

func init() {
	var err error
	vietnamTZ, err = time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		// tzdata missing
		vietnamTZ = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)
	}
}

// GetVietnamLocation returns the Asia/Ho_Chi_Minh location.
func GetVietnamLocation() *time.Location {
	return vietnamTZ
}

// NowInVietnam returns the current time on Hanoi time.
func NowInVietnam() time.Time {
	return time.Now().In(vietnamTZ)
}

var weekdayNames = [...]string{
	time.Sunday:    "Chủ nhật",
	time.Monday:    "Thứ hai",
	time.Tuesday:   "Thứ ba",
	time.Wednesday: "Thứ tư",
	time.Thursday:  "Thứ năm",
	time.Friday:    "Thứ sáu",
	time.Saturday:  "Thứ bảy",
}

// WeekdayName returns the Vietnamese weekday name.
func WeekdayName(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// FormatDate formats a date day-first, e.g. "25-07-2024".
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatDateLong formats a date with its weekday, e.g. "Thứ năm, 25/07/2024".
func FormatDateLong(t time.Time) string {
	return WeekdayName(t) + ", " + t.Format("02/01/2006")
}
