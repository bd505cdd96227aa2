package domain

// EventCategory classifies a schedule event.
type EventCategory string

const (
	CategorySightseeing EventCategory = "景點"
	CategoryFood        EventCategory = "美食"
	CategoryTransport   EventCategory = "交通"
	CategoryStay        EventCategory = "住宿"
	CategoryShopping    EventCategory = "購物"
)

// Categories lists every event category in display order.
var Categories = []EventCategory{
	CategorySightseeing, CategoryFood, CategoryTransport, CategoryStay, CategoryShopping,
}

// CategoryColors maps each category to its display color tag.
var CategoryColors = map[EventCategory]string{
	CategorySightseeing: "orange",
	CategoryFood:        "rose",
	CategoryTransport:   "slate",
	CategoryStay:        "indigo",
	CategoryShopping:    "emerald",
}

// CategoryIcons maps each category to its icon.
var CategoryIcons = map[EventCategory]string{
	CategorySightseeing: "🎡",
	CategoryFood:        "🍰",
	CategoryTransport:   "🚌",
	CategoryStay:        "🏠",
	CategoryShopping:    "🛍️",
}

// Valid reports whether c is one of the fixed categories.
func (c EventCategory) Valid() bool {
	_, ok := CategoryIcons[c]
	return ok
}
