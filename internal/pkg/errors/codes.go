package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidViewport = New(
		"INVALID_VIEWPORT",
		"Invalid viewport bounds",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidLevel = New(
		"INVALID_LEVEL",
		"Unknown surfer level",
		http.StatusBadRequest,
	)

	ErrSpotNotFound = New(
		"SPOT_NOT_FOUND",
		"No forecast for this location",
		http.StatusNotFound,
	)

	ErrDatasetUnavailable = New(
		"DATASET_UNAVAILABLE",
		"Forecast dataset is temporarily unavailable",
		http.StatusServiceUnavailable,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
