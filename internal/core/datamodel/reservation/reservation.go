package reservation

// DateLayout is the calendar-day format stored in Date.
const DateLayout = "2006-01-02"

type Reservation struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
