package services

import (
	"strconv"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
)

const directionsBaseURL = "https://www.google.com/maps/dir/"

// DirectionsURL builds a map-directions link from user to dest.
func DirectionsURL(user, dest entities.Coordinate) string {
	return directionsBaseURL +
		formatDegrees(user.Latitude) + "," + formatDegrees(user.Longitude) + "/" +
		formatDegrees(dest.Latitude) + "," + formatDegrees(dest.Longitude)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
