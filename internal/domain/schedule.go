package domain

import "time"

// ScheduleEvent is one itinerary entry. Date is "2006-01-02" and Time "15:04".
type ScheduleEvent struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Time      string        `json:"time"`
	Title     string        `json:"title"`
	Location  string        `json:"location"`
	Category  EventCategory `json:"category"`
	Notes     string        `json:"notes,omitempty"`
	MapLink   string        `json:"mapLink,omitempty"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
}
