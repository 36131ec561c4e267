package models

// SeatReservationUpdate is the occupancy-change event broadcast to every
// connected observer after a committed booking mutation. It carries the
// full booked-seat snapshot rather than a diff; clients reconcile from
// the snapshot and filter by trip on their side.
type SeatReservationUpdate struct {
	Type        string `json:"type"`
	BusID       string `json:"busId"`
	TripID      string `json:"tripId"`
	BookedSeats []int  `json:"bookedSeats"`
}

const SeatReservationUpdateType = "seatReservationUpdate"

// NewSeatReservationUpdate builds the broadcast payload for a trip's
// current occupancy. BookedSeats is never nil so an empty set serializes
// as [].
func NewSeatReservationUpdate(trip *Trip) SeatReservationUpdate {
	return SeatReservationUpdate{
		Type:        SeatReservationUpdateType,
		BusID:       trip.BusID,
		TripID:      trip.ID,
		BookedSeats: trip.BookedSeats.Ints(),
	}
}
