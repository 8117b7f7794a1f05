package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var funcMap = template.FuncMap{
	// thousands groups digits, e.g. 12,345.
	"thousands": func(n int) string { return printer.Sprintf("%d", n) },
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
	"breakdown": dashboard.BreakdownTitle,
}

var pageTemplate = template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplDashboard))

type pageData struct {
	Page        *dashboard.Page
	MapboxToken string
	Categories  []domain.Category
	MaxInjured  int
	LastHour    int
}

func (s *Server) handlePage(c *gin.Context) {
	controls, ok := bindControls(c)
	if !ok {
		return
	}
	page, err := s.dash.Build(c.Request.Context(), controls)
	if err != nil {
		_ = c.Error(err)
		s.logger.Error("page failed", "error", err)
		c.String(http.StatusInternalServerError, "The collision data could not be loaded.")
		return
	}

	var buf bytes.Buffer
	err = pageTemplate.ExecuteTemplate(&buf, "base", pageData{
		Page:        page,
		MapboxToken: s.opts.MapboxToken,
		Categories:  domain.Categories,
		MaxInjured:  dashboard.MaxInjuredPersons,
		LastHour:    domain.HoursPerDay - 1,
	})
	if err != nil {
		_ = c.Error(err)
		s.logger.Error("page render failed", "error", err)
		c.String(http.StatusInternalServerError, "The page could not be rendered.")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
