package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested map calibration does not exist.
var ErrNotFound = errors.New("map calibration not found")

// MapCalibration is a stored .map file. Content is the .map text itself.
type MapCalibration struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bounds is the lat/lon envelope covered by a calibrated map.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// MapSummary describes a stored map calibration without its raw content.
type MapSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ImageFilename string    `json:"image_filename"`
	ImageFilepath string    `json:"image_filepath"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Points        int       `json:"points"`
	Valid         bool      `json:"valid"`
	ScaleFactor   *float64  `json:"scale_factor,omitempty"`
	Bounds        *Bounds   `json:"bounds,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CalibrationPoint is a pixel/geo pair picked on the map image.
type CalibrationPoint struct {
	X   int     `json:"x" binding:"gte=0"`
	Y   int     `json:"y" binding:"gte=0"`
	Lat float64 `json:"lat" binding:"gte=-180,lte=180"`
	Lon float64 `json:"lon" binding:"gte=-180,lte=180"`
}

// CalibrationRequest replaces the picked points of a map and recalibrates it.
type CalibrationRequest struct {
	Width  int                `json:"width" binding:"required,gt=0"`
	Height int                `json:"height" binding:"required,gt=0"`
	Points []CalibrationPoint `json:"points" binding:"required,min=4,dive"`
}

// LatLon is the geographic position of a pixel on a calibrated map.
type LatLon struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
