package model

// CreateCityRequest is the body of POST /cities
type CreateCityRequest struct {
	Name string `json:"name"`
}

// Coordinates represents a point on the Earth's surface in degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearestCitiesRequest is the body of POST /cities/nearest.
// Pointers distinguish a missing field from an explicit zero.
type NearestCitiesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NearestCitiesResponse represents the response for nearest cities search
type NearestCitiesResponse struct {
	Coordinates   Coordinates `json:"coordinates"`
	NearestCities []City      `json:"nearest_cities"`
}

// HealthResponse represents the response of the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// StatsResponse represents storage statistics
type StatsResponse struct {
	TotalCities int `json:"total_cities"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned for every non-2xx answer
type ErrorResponse struct {
	Detail string `json:"detail"`
}
