package domain

import "time"

// Courier represents a delivery courier as seen by this service (read-only;
// the user/auth service owns the record).
type Courier struct {
	ID    string
	Name  string
	Phone string
}

// Candidate is a courier considered for an assignment cycle together with
// the ranking inputs computed by the directory.
type Candidate struct {
	Courier Courier
	// Available is true when the courier holds zero orders in an active
	// delivery state.
	Available bool
	// CompletedToday counts deliveries finished since local midnight.
	CompletedToday int
}

// Assignment - struct representing the outcome of one assignment cycle.
type Assignment struct {
	OrderID   string
	CourierID string
	Deadline  time.Time
	Attempt   int
}
