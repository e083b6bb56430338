package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mapcal-api/internal/mapfile"
	"mapcal-api/internal/models"
	"mapcal-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMapService is a mock implementation of the MapService interface
type MockMapService struct {
	mock.Mock
}

func (m *MockMapService) Import(ctx context.Context, name string, data []byte) (*models.MapSummary, error) {
	args := m.Called(ctx, name, data)
	return args.Get(0).(*models.MapSummary), args.Error(1)
}

func (m *MockMapService) Get(ctx context.Context, id uuid.UUID) (*models.MapSummary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.MapSummary), args.Error(1)
}

func (m *MockMapService) List(ctx context.Context, limit int) ([]models.MapSummary, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.MapSummary), args.Error(1)
}

func (m *MockMapService) Export(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockMapService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMapService) Recalibrate(ctx context.Context, id uuid.UUID, req models.CalibrationRequest) (*models.MapSummary, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(*models.MapSummary), args.Error(1)
}

func (m *MockMapService) Locate(ctx context.Context, id uuid.UUID, x, y float64) (*models.LatLon, error) {
	args := m.Called(ctx, id, x, y)
	return args.Get(0).(*models.LatLon), args.Error(1)
}

func newTestRouter(svc MapService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewMapHandler(svc).Register(r)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestMapHandler_Locate(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockCall       bool
		x, y           float64
		mockResult     *models.LatLon
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "missing query parameters",
			path:           "/maps/" + id.String() + "/latlon?x=5",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "missing required query parameters 'x' and 'y'"},
		},
		{
			name:           "invalid x",
			path:           "/maps/" + id.String() + "/latlon?x=abc&y=5",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "invalid x format"},
		},
		{
			name:           "invalid id",
			path:           "/maps/not-a-uuid/latlon?x=1&y=5",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "invalid map id"},
		},
		{
			name:           "successful lookup",
			path:           "/maps/" + id.String() + "/latlon?x=500&y=400",
			mockCall:       true,
			x:              500,
			y:              400,
			mockResult:     &models.LatLon{X: 500, Y: 400, Lat: 9.5, Lon: 20.5},
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]interface{}{"x": 500.0, "y": 400.0, "lat": 9.5, "lon": 20.5},
		},
		{
			name:           "uncalibrated map",
			path:           "/maps/" + id.String() + "/latlon?x=1&y=2",
			mockCall:       true,
			x:              1,
			y:              2,
			mockError:      fmt.Errorf("service: failed to locate pixel: %w", mapfile.ErrNoCalibration),
			expectedStatus: http.StatusConflict,
			expectedBody:   map[string]interface{}{"error": "map is not calibrated"},
		},
		{
			name:           "unknown map",
			path:           "/maps/" + id.String() + "/latlon?x=1&y=2",
			mockCall:       true,
			x:              1,
			y:              2,
			mockError:      models.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"error": "map not found"},
		},
		{
			name:           "service error",
			path:           "/maps/" + id.String() + "/latlon?x=1&y=2",
			mockCall:       true,
			x:              1,
			y:              2,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockMapService)
			if tt.mockCall {
				mockSvc.On("Locate", mock.Anything, id, tt.x, tt.y).Return(tt.mockResult, tt.mockError)
			}

			// Execute
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			newTestRouter(mockSvc).ServeHTTP(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, w))
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestMapHandler_Import(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	body := "OziExplorer Map Data File Version 2.2\n..."

	t.Run("created", func(t *testing.T) {
		mockSvc := new(MockMapService)
		mockSvc.On("Import", mock.Anything, "trail", []byte(body)).
			Return(&models.MapSummary{ID: id, Name: "trail", Valid: true}, nil)

		// Create request
		req := httptest.NewRequest(http.MethodPost, "/maps?name=trail", strings.NewReader(body))
		w := httptest.NewRecorder()

		// Create Gin context
		c, _ := gin.CreateTestContext(w)
		c.Request = req

		NewMapHandler(mockSvc).Import(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		got := decodeBody(t, w)
		assert.Equal(t, id.String(), got["id"])
		assert.Equal(t, true, got["valid"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("format error reports kind and line", func(t *testing.T) {
		mockSvc := new(MockMapService)
		ferr := &mapfile.FormatError{Kind: mapfile.OutOfOrderCorner, Line: 12, Text: "MMPXY,3,0,0"}
		mockSvc.On("Import", mock.Anything, "", []byte(body)).
			Return((*models.MapSummary)(nil), fmt.Errorf("service: failed to parse map: %w", ferr))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(body))
		newTestRouter(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		got := decodeBody(t, w)
		assert.Equal(t, "out_of_order_corner", got["kind"])
		assert.Equal(t, 12.0, got["line"])
	})

	t.Run("too large", func(t *testing.T) {
		mockSvc := new(MockMapService)
		mockSvc.On("Import", mock.Anything, "", []byte(body)).
			Return((*models.MapSummary)(nil), service.ErrMapTooLarge)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/maps", strings.NewReader(body))
		newTestRouter(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestMapHandler_Recalibrate(t *testing.T) {
	id := uuid.New()
	valid := models.CalibrationRequest{
		Width:  100,
		Height: 50,
		Points: []models.CalibrationPoint{
			{X: 0, Y: 0, Lat: 1, Lon: 1},
			{X: 100, Y: 0, Lat: 1, Lon: 2},
			{X: 100, Y: 50, Lat: 0, Lon: 2},
			{X: 0, Y: 50, Lat: 0, Lon: 1},
		},
	}

	tests := []struct {
		name           string
		body           interface{}
		mockCall       bool
		mockError      error
		expectedStatus int
	}{
		{
			name:           "missing size",
			body:           map[string]interface{}{"points": valid.Points},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too few points",
			body:           models.CalibrationRequest{Width: 100, Height: 50, Points: valid.Points[:2]},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "recalibrated",
			body:           valid,
			mockCall:       true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "degenerate geometry",
			body:           valid,
			mockCall:       true,
			mockError:      fmt.Errorf("service: failed to calibrate map: %w", mapfile.ErrDegenerate),
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockMapService)
			if tt.mockCall {
				var result *models.MapSummary
				if tt.mockError == nil {
					result = &models.MapSummary{ID: id, Valid: true, Points: 4}
				}
				mockSvc.On("Recalibrate", mock.Anything, id, valid).Return(result, tt.mockError)
			}

			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/maps/"+id.String()+"/points", strings.NewReader(string(payload)))
			req.Header.Set("Content-Type", "application/json")
			newTestRouter(mockSvc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestMapHandler_Export(t *testing.T) {
	id := uuid.New()
	mockSvc := new(MockMapService)
	mockSvc.On("Export", mock.Anything, id).Return(mapfile.Header+"\n", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/maps/"+id.String()+"/file", nil)
	newTestRouter(mockSvc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, mapfile.Header+"\n", w.Body.String())
}

func TestMapHandler_ListAndDelete(t *testing.T) {
	id := uuid.New()
	mockSvc := new(MockMapService)
	mockSvc.On("List", mock.Anything, 5).Return([]models.MapSummary{{ID: id, Name: "a"}}, nil)
	mockSvc.On("Delete", mock.Anything, id).Return(nil)
	router := newTestRouter(mockSvc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maps?limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0]["name"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maps?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/maps/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockSvc.AssertExpectations(t)
}
