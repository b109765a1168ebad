package models

// Task represents a geocoding task with an ID and an associated address.
type Task struct {
	ID      int    // ID is the unique identifier for the task.
	Address string // Address is the location to be geocoded.
}

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 // Longitude of the geographical point.
	Latitude  float64 // Latitude of the geographical point.
}
