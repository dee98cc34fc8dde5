package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	// DefaultStorageKey ключ, под которым хранится таблица бронирований
	DefaultStorageKey = "reservations"

	// MinPartySize и MaxPartySize границы количества гостей
	MinPartySize = 1
	MaxPartySize = 8

	// DefaultPartySize значение формы по умолчанию
	DefaultPartySize = 2

	// MaxCommentLength максимальная длина комментария в символах
	MaxCommentLength = 200

	// SameDayLeadHours минимальный запас в часах для брони на сегодня
	SameDayLeadHours = 2

	// DefaultTableCount количество столов в зале
	DefaultTableCount = 20
)

// DateLayout is the on-disk format of Reservation.Date.
const DateLayout = "2006-01-02"

// TimeSlots are the bookable half-hour slots: lunch 12:00-14:30, dinner 18:30-21:00.
var TimeSlots = []string{
	"12:00", "12:30", "13:00", "13:30", "14:00",
	"18:30", "19:00", "19:30", "20:00", "20:30",
}
