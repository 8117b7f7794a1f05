package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// maxTopN bounds the street ranking size a client may ask for.
const maxTopN = 100

// viewQuery is the widget state as sent by the page form.
type viewQuery struct {
	Injured int    `form:"injured"`
	Hour    int    `form:"hour"`
	Type    string `form:"type"`
	Raw     bool   `form:"raw"`
}

func (q viewQuery) controls() (dashboard.Controls, error) {
	c := dashboard.DefaultControls()
	c.InjuredPersons = q.Injured
	c.Hour = q.Hour
	c.ShowRaw = q.Raw
	if q.Type != "" {
		category, err := domain.ParseCategory(q.Type)
		if err != nil {
			return dashboard.Controls{}, err
		}
		c.Category = category
	}
	return c.Normalize(), nil
}

type streetsQuery struct {
	Type string `form:"type"`
	N    int    `form:"n"`
}

// bindControls parses the widget state, answering 400 when it is malformed.
func bindControls(c *gin.Context) (dashboard.Controls, bool) {
	var q viewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, fmt.Errorf("invalid query: %w", err))
		return dashboard.Controls{}, false
	}
	controls, err := q.controls()
	if err != nil {
		badRequest(c, err)
		return dashboard.Controls{}, false
	}
	return controls, true
}

func (s *Server) handleViews(c *gin.Context) {
	controls, ok := bindControls(c)
	if !ok {
		return
	}
	page, err := s.dash.Build(c.Request.Context(), controls)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleInjuries(c *gin.Context) {
	controls, ok := bindControls(c)
	if !ok {
		return
	}
	view, err := s.dash.InjuryMap(c.Request.Context(), controls.InjuredPersons)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleHour(c *gin.Context) {
	hour, ok := hourParam(c, c.Param("hour"))
	if !ok {
		return
	}
	view, err := s.dash.Hour(c.Request.Context(), hour)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleMinutes(c *gin.Context) {
	hour, ok := hourParam(c, c.Param("hour"))
	if !ok {
		return
	}
	bins, err := s.dash.Minutes(c.Request.Context(), hour)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, bins)
}

func (s *Server) handleStreets(c *gin.Context) {
	var q streetsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, fmt.Errorf("invalid query: %w", err))
		return
	}
	if q.N < 0 || q.N > maxTopN {
		badRequest(c, fmt.Errorf("n must be between 0 and %d, 0 for the default", maxTopN))
		return
	}
	category := domain.Pedestrians
	if q.Type != "" {
		parsed, err := domain.ParseCategory(q.Type)
		if err != nil {
			badRequest(c, err)
			return
		}
		category = parsed
	}

	view, err := s.dash.Streets(c.Request.Context(), category, q.N)
	if err != nil {
		s.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleMinutesChart(c *gin.Context) {
	hour, ok := hourParam(c, c.DefaultQuery("hour", "0"))
	if !ok {
		return
	}
	bins, err := s.dash.Minutes(c.Request.Context(), hour)
	if err != nil {
		s.serverError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.charts.RenderMinutes(&buf, dashboard.BreakdownTitle(hour), bins); err != nil {
		s.serverError(c, fmt.Errorf("render minute chart: %w", err))
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func hourParam(c *gin.Context, raw string) (int, bool) {
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour >= domain.HoursPerDay {
		badRequest(c, fmt.Errorf("hour must be an integer between 0 and %d, got %q", domain.HoursPerDay-1, raw))
		return 0, false
	}
	return hour, true
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	s.logger.Error("view failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "view unavailable"})
}
