package service

import "pensionado/internal/models"

// DemoUserID owns the demo reservations.
const DemoUserID = "1"

var demoReservations = []models.Reservation{
	{
		ID:        "1",
		UserID:    DemoUserID,
		Date:      "2025-06-15",
		Time:      "12:30",
		PartySize: 2,
		Table:     "Mesa 5",
		Status:    models.StatusConfirmed,
		Comments:  "Mesa cerca de la ventana",
		CreatedAt: "2025-06-01T10:00:00Z",
	},
	{
		ID:        "2",
		UserID:    DemoUserID,
		Date:      "2025-06-18",
		Time:      "19:00",
		PartySize: 4,
		Table:     "Mesa 12",
		Status:    models.StatusPending,
		Comments:  "Celebración familiar",
		CreatedAt: "2025-06-02T16:30:00Z",
	},
}

// DemoSeed returns the demo reservations belonging to userID.
func DemoSeed(userID string) []models.Reservation {
	var out []models.Reservation
	for _, r := range demoReservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}
