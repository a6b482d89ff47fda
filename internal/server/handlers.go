package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridedash/internal/analysis"
	"ridedash/internal/export"
	"ridedash/internal/store"
)

// Pagination bounds of the ride list
const (
	defaultLimit = 20
	maxLimit     = 200
)

// rideItem is one entry of the ride list
type rideItem struct {
	ID                 int64                    `json:"id"`
	Name               string                   `json:"name"`
	Type               string                   `json:"type"`
	SportType          string                   `json:"sport_type"`
	StartDateLocal     time.Time                `json:"start_date_local"`
	Distance           float64                  `json:"distance"`
	MovingTime         int                      `json:"moving_time"`
	TotalElevationGain float64                  `json:"total_elevation_gain"`
	AverageWatts       float64                  `json:"average_watts"`
	AverageHeartrate   float64                  `json:"average_heartrate"`
	Source             string                   `json:"source"`
	Metrics            *analysis.DisplayMetrics `json:"metrics"`
}

func newRideItem(r store.RideWithMetrics) rideItem {
	item := rideItem{
		ID:                 r.ID,
		Name:               r.Name,
		Type:               r.Type,
		SportType:          r.SportType,
		StartDateLocal:     r.StartDateLocal,
		Distance:           r.Distance,
		MovingTime:         r.MovingTime,
		TotalElevationGain: r.TotalElevationGain,
		AverageWatts:       r.AverageWatts,
		AverageHeartrate:   r.AverageHeartrate,
		Source:             r.Source,
	}
	if r.Metrics != nil {
		d := r.Metrics.Rounded()
		item.Metrics = &d
	}
	return item
}

// listRides handles GET /api/rides
func (s *Server) listRides(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil || limit < 1 {
		errorJSON(c, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		errorJSON(c, http.StatusBadRequest, "invalid offset")
		return
	}
	limit = min(limit, maxLimit)

	rides, err := s.query.ListRides(limit, offset)
	if err != nil {
		s.internalError(c, err)
		return
	}
	total, err := s.query.TotalRides()
	if err != nil {
		s.internalError(c, err)
		return
	}

	items := make([]rideItem, len(rides))
	for i, r := range rides {
		items[i] = newRideItem(r)
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// getRide handles GET /api/rides/:id
func (s *Server) getRide(c *gin.Context) {
	id, ok := rideID(c)
	if !ok {
		return
	}

	detail, err := s.query.RideDetail(id)
	if err != nil {
		s.rideError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// exportText handles GET /api/rides/:id/export.txt
func (s *Server) exportText(c *gin.Context) {
	id, ok := rideID(c)
	if !ok {
		return
	}

	detail, err := s.query.RideDetail(id)
	if err != nil {
		s.rideError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteText(&buf, export.FromDetail(detail)); err != nil {
		s.internalError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(detail.Summary.Name, export.FormatText)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// fitness handles GET /api/fitness
func (s *Server) fitness(c *gin.Context) {
	days, err := queryInt(c, "days", 0)
	if err != nil || days < 0 {
		errorJSON(c, http.StatusBadRequest, "invalid days")
		return
	}

	trend, err := s.query.FitnessTrend(days)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if trend == nil {
		trend = []analysis.FitnessMetrics{}
	}
	c.JSON(http.StatusOK, gin.H{"data": trend})
}

func rideID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid ride id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) rideError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrRideNotFound) {
		errorJSON(c, http.StatusNotFound, "ride not found")
		return
	}
	s.internalError(c, err)
}

func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	errorJSON(c, http.StatusInternalServerError, "internal error")
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
