package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mapcal-api/internal/mapfile"
	"mapcal-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyMap is returned when an import has no content.
	ErrEmptyMap = errors.New("service: map content cannot be empty")
	// ErrMapTooLarge is returned when an import exceeds the configured size limit.
	ErrMapTooLarge = errors.New("service: map content too large")
	// ErrTooFewPoints is returned when fewer than four points are supplied for calibration.
	ErrTooFewPoints = errors.New("service: at least 4 calibration points are required")
	// ErrInvalidCalibration is returned when calibration does not produce four corners.
	ErrInvalidCalibration = errors.New("service: calibration is not valid")
	// ErrCorruptMap is returned when stored content no longer parses.
	ErrCorruptMap = errors.New("service: stored map is corrupt")
)

// CalibrationRepository interface for dependency injection
type CalibrationRepository interface {
	SaveCalibration(ctx context.Context, m *models.MapCalibration) error
	GetCalibration(ctx context.Context, id uuid.UUID) (*models.MapCalibration, error)
	ListCalibrations(ctx context.Context, limit int) ([]models.MapCalibration, error)
	DeleteCalibration(ctx context.Context, id uuid.UUID) error
}

// CalibrationService contains the business logic for importing, calibrating
// and querying .map files
type CalibrationService struct {
	repo     CalibrationRepository
	log      zerolog.Logger
	maxBytes int
}

// NewCalibrationService creates a new calibration service. maxBytes <= 0 disables the size limit.
func NewCalibrationService(repo CalibrationRepository, log zerolog.Logger, maxBytes int) *CalibrationService {
	return &CalibrationService{
		repo:     repo,
		log:      log.With().Str("component", "calibration").Logger(),
		maxBytes: maxBytes,
	}
}

// Import parses a raw .map file and stores it under a new id
func (s *CalibrationService) Import(ctx context.Context, name string, data []byte) (*models.MapSummary, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMap
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrMapTooLarge, len(data), s.maxBytes)
	}

	text := mapfile.Decode(data)
	rec, err := mapfile.Parse(text)
	if err != nil {
		s.log.Warn().Err(err).Str("name", name).Msg("Rejected .map file")
		return nil, fmt.Errorf("service: failed to parse map: %w", err)
	}

	if name == "" {
		name = strings.TrimSuffix(rec.ImageFilename, filepath.Ext(rec.ImageFilename))
	}

	m := &models.MapCalibration{ID: uuid.New(), Name: name, Content: text}
	if err := s.repo.SaveCalibration(ctx, m); err != nil {
		return nil, fmt.Errorf("service: failed to save map: %w", err)
	}

	s.log.Info().
		Str("id", m.ID.String()).
		Str("name", m.Name).
		Int("points", len(rec.Points)).
		Bool("valid", rec.IsValid()).
		Msg("Imported .map file")

	return summarize(m, rec), nil
}

// Get returns the summary of a stored map
func (s *CalibrationService) Get(ctx context.Context, id uuid.UUID) (*models.MapSummary, error) {
	m, rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(m, rec), nil
}

// List returns summaries of the most recently updated maps
func (s *CalibrationService) List(ctx context.Context, limit int) ([]models.MapSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("service: invalid limit: %d", limit)
	}

	stored, err := s.repo.ListCalibrations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list maps: %w", err)
	}

	summaries := make([]models.MapSummary, 0, len(stored))
	for i := range stored {
		rec, err := mapfile.Parse(stored[i].Content)
		if err != nil {
			s.log.Error().Err(err).Str("id", stored[i].ID.String()).Msg("Stored map no longer parses")
			continue
		}
		summaries = append(summaries, *summarize(&stored[i], rec))
	}
	return summaries, nil
}

// Export renders a stored map as .map text
func (s *CalibrationService) Export(ctx context.Context, id uuid.UUID) (string, error) {
	_, rec, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return mapfile.Serialize(rec), nil
}

// Delete removes a stored map
func (s *CalibrationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCalibration(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete map: %w", err)
	}
	return nil
}

// Recalibrate replaces the picked points of a map, derives its four corners and stores the result
func (s *CalibrationService) Recalibrate(ctx context.Context, id uuid.UUID, req models.CalibrationRequest) (*models.MapSummary, error) {
	if len(req.Points) < mapfile.CornerCount {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(req.Points))
	}

	m, rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	points := make([]mapfile.PointInput, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, mapfile.PointInput{X: p.X, Y: p.Y, Lat: p.Lat, Lon: p.Lon})
	}

	next := rec.Clone()
	next.ImageWidth = req.Width
	next.ImageHeight = req.Height
	next.SetPoints(points)

	if err := next.Calibrate(); err != nil {
		s.log.Warn().Err(err).Str("id", id.String()).Msg("Calibration failed")
		return nil, fmt.Errorf("service: failed to calibrate map: %w", err)
	}
	if !next.IsValid() {
		return nil, ErrInvalidCalibration
	}

	m.Content = mapfile.Serialize(next)
	if err := s.repo.SaveCalibration(ctx, m); err != nil {
		return nil, fmt.Errorf("service: failed to save map: %w", err)
	}

	s.log.Info().
		Str("id", id.String()).
		Int("points", len(points)).
		Float64("scale", *next.ScaleFactor).
		Msg("Map recalibrated")

	return summarize(m, next), nil
}

// Locate maps a pixel of a calibrated map to latitude/longitude
func (s *CalibrationService) Locate(ctx context.Context, id uuid.UUID, x, y float64) (*models.LatLon, error) {
	_, rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	lat, lon, err := rec.XYToLatLon(x, y)
	if err != nil {
		return nil, fmt.Errorf("service: failed to locate pixel: %w", err)
	}

	return &models.LatLon{X: x, Y: y, Lat: lat, Lon: lon}, nil
}

func (s *CalibrationService) load(ctx context.Context, id uuid.UUID) (*models.MapCalibration, *mapfile.Record, error) {
	m, err := s.repo.GetCalibration(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to load map: %w", err)
	}

	rec, err := mapfile.Parse(m.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptMap, id, err)
	}
	return m, rec, nil
}

func summarize(m *models.MapCalibration, rec *mapfile.Record) *models.MapSummary {
	summary := &models.MapSummary{
		ID:            m.ID,
		Name:          m.Name,
		ImageFilename: rec.ImageFilename,
		ImageFilepath: rec.ImageFilepath,
		Width:         rec.ImageWidth,
		Height:        rec.ImageHeight,
		Points:        len(rec.Points),
		Valid:         rec.IsValid(),
		ScaleFactor:   rec.ScaleFactor,
		UpdatedAt:     m.UpdatedAt,
	}
	if b, ok := rec.Bounds(); ok {
		summary.Bounds = &models.Bounds{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: b.MaxLon}
	}
	return summary
}
