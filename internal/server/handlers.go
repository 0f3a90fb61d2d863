package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/pagescore/internal/model"
)

var errNoReport = errors.New("rescanner returned no report")

// errorBody is the JSON body of every error response.
func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ready":  s.report.Load() != nil,
	})
}

// currentReport writes 503 and returns nil when no report exists yet.
func (s *Server) currentReport(c *gin.Context) *model.Report {
	r := s.report.Load()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("no report available yet"))
		return nil
	}
	return r
}

func (s *Server) handleReport(c *gin.Context) {
	r := s.currentReport(c)
	if r == nil {
		return
	}

	filter := c.Query("filter")
	if filter == "" || filter == "all" {
		c.JSON(http.StatusOK, r)
		return
	}

	tier, err := model.ParseOptimizationTier(filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("unknown filter "+filter))
		return
	}

	pages := make([]model.PageReportEntry, 0)
	for _, entry := range r.Pages {
		if entry.Tier == tier {
			pages = append(pages, entry)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"runId":       r.RunID,
		"generatedAt": r.GeneratedAt,
		"filter":      tier.FilterKey(),
		"pages":       pages,
		"stats":       r.Stats,
	})
}

func (s *Server) handlePage(c *gin.Context) {
	r := s.currentReport(c)
	if r == nil {
		return
	}

	entry := r.Entry(c.Param("id"))
	if entry == nil {
		c.JSON(http.StatusNotFound, errorBody("page not found"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleStats(c *gin.Context) {
	r := s.currentReport(c)
	if r == nil {
		return
	}
	c.JSON(http.StatusOK, r.Stats)
}

func (s *Server) handleRescan(c *gin.Context) {
	if s.rescanner == nil {
		c.JSON(http.StatusNotImplemented, errorBody("rescan is not configured"))
		return
	}
	if !s.rescanMu.TryLock() {
		c.JSON(http.StatusConflict, errorBody("a rescan is already running"))
		return
	}
	defer s.rescanMu.Unlock()

	start := time.Now()
	report, err := s.rescanner(c.Request.Context())
	if err == nil && report == nil {
		err = errNoReport
	}
	if err != nil {
		s.logger.Error("rescan failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("rescan failed"))
		return
	}

	s.report.Store(report)
	s.logger.Info("rescan completed", "run_id", report.RunID, "pages", report.Stats.TotalPages, "elapsed", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"runId": report.RunID,
		"stats": report.Stats,
	})
}
