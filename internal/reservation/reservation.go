package reservation

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/star-supla/internal"
	reservationDatamodel "github.com/frahmantamala/star-supla/internal/core/datamodel/reservation"
	"go.mongodb.org/mongo-driver/bson"
)

type Reservation = reservationDatamodel.Reservation

// Filters narrows a listing by exact match. Empty fields are ignored.
type Filters struct {
	Date      string
	UserID    string
	ProductID string
}

// Query renders the filters in a fixed key order, nil when empty.
func (f Filters) Query() bson.D {
	var q bson.D
	if f.Date != "" {
		q = append(q, bson.E{Key: "date", Value: f.Date})
	}
	if f.UserID != "" {
		q = append(q, bson.E{Key: "userId", Value: f.UserID})
	}
	if f.ProductID != "" {
		q = append(q, bson.E{Key: "productId", Value: f.ProductID})
	}
	return q
}

// Reserved sums the quantity held on productID for date, leaving out
// excludeID (the reservation being edited).
func Reserved(reservations []Reservation, date, productID, excludeID string) int {
	total := 0
	for _, r := range reservations {
		if r.Date != date || r.ProductID != productID {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		total += r.Quantity
	}
	return total
}

// Availability is the stock picture for one product on one day.
type Availability struct {
	ProductID string `json:"productId"`
	Date      string `json:"date"`
	Stock     int    `json:"stock"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

func newAvailability(productID, date string, stock, reserved int) Availability {
	available := stock - reserved
	if available < 0 {
		available = 0
	}
	return Availability{
		ProductID: productID,
		Date:      date,
		Stock:     stock,
		Reserved:  reserved,
		Available: available,
	}
}

type CalendarView string

const (
	ViewDay   CalendarView = "day"
	ViewWeek  CalendarView = "week"
	ViewMonth CalendarView = "month"
)

func ParseView(s string) (CalendarView, error) {
	switch v := CalendarView(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth:
		return v, nil
	}
	return "", errors.NewValidationFieldError("view", fmt.Sprintf("unknown calendar view %q", s), errors.ErrCodeValidationFailed)
}

// CalendarRange is the inclusive date range fetched for view around day.
// Weeks start on Monday.
func CalendarRange(view CalendarView, day time.Time) (time.Time, time.Time) {
	day = truncateDay(day)
	switch view {
	case ViewWeek:
		start := startOfWeek(day)
		return start, start.AddDate(0, 0, 6)
	case ViewMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

// CalendarDays lists the cells drawn for view. A month grid is padded to
// whole Monday-first weeks.
func CalendarDays(view CalendarView, day time.Time) []time.Time {
	start, end := CalendarRange(view, day)
	if view == ViewMonth {
		start = startOfWeek(start)
		end = startOfWeek(end).AddDate(0, 0, 6)
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// GroupByDay buckets reservations by their date string.
func GroupByDay(reservations []Reservation) map[string][]Reservation {
	out := make(map[string][]Reservation)
	for _, r := range reservations {
		out[r.Date] = append(out[r.Date], r)
	}
	return out
}

func FormatDate(t time.Time) string {
	return t.Format(reservationDatamodel.DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(reservationDatamodel.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s), errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
