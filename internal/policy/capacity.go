package policy

import "reservio/internal/models"

// ReservedQuantity sums the quantities of the given bookings.
func ReservedQuantity(bookings []models.Booking) int {
	total := 0
	for i := range bookings {
		total += bookings[i].Quantity
	}
	return total
}

// AssertCapacity accepts or rejects a requested quantity given the active
// bookings overlapping the candidate interval and the effective capacity.
// Callers are responsible for passing only active, overlapping bookings.
func AssertCapacity(resourceID string, overlapping []models.Booking, requested, capacity int) error {
	used := ReservedQuantity(overlapping)
	if used+requested > capacity {
		return models.ErrCapacityExceeded(resourceID, requested, used, capacity)
	}
	return nil
}
