// Package schema defines the output shapes of the records API and maps stored documents onto them.
package schema

// NA is written in place of any field a stored document does not carry.
const NA = "NA"

// ClockIn is a user clock-in event as returned by the API.
type ClockIn struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Location string `json:"location"`
	ClockIn  string `json:"clock_in"`
}

// Item is an inventory record as returned by the API.
// Quantity is the stored integer, or NA when the document has none.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ItemName   string `json:"item_name"`
	Quantity   any    `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
	InsertDate string `json:"insert_date"`
}

// EmailCount is one row of the item count-by-email aggregate.
type EmailCount struct {
	Email string `json:"email"`
	Count int64  `json:"count"`
}
