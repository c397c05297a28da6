package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

var errInvalidRunID = fmt.Errorf("%w: invalid run id", common.ErrInvalidArgument)

func parseRunID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidRunID
	}

	return id, nil
}

func parseMeasurementFilter(c *gin.Context) (common.MeasurementFilter, error) {
	filter := common.MeasurementFilter{}

	if loadStr, ok := c.GetQuery("load"); ok && loadStr != "" {
		load, err := strconv.Atoi(loadStr)
		if err != nil {
			return filter, fmt.Errorf("%w: load must be an integer", common.ErrInvalidArgument)
		}
		filter.UsersLoad = &load
	}
	if endpoint := c.Query("endpoint"); endpoint != "" {
		filter.EndpointName = &endpoint
	}

	return filter, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "request id", c.GetString(requestIDHeader), "error", err)
	} else {
		log.Debug("request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *server) handleListRuns(c *gin.Context) {
	runs, err := s.engine.ListRuns(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (s *server) handleImportRun(c *gin.Context) {
	var batch common.ImportBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Debug("received import", "sender", c.Request.RemoteAddr, "run", batch.Run.RunName, "num measurements", len(batch.Measurements))

	runID, err := s.engine.ImportRun(c.Request.Context(), batch)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.importedRuns.Inc()
		s.metrics.importedRows.Add(float64(len(batch.Measurements)))
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "run_id": runID, "measurements": len(batch.Measurements)})
}

func (s *server) handleSetBaseline(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	err = s.engine.PromoteBaseline(c.Request.Context(), runID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "baseline_run_id": runID})
}

func (s *server) handleExclude(c *gin.Context) {
	s.handleSetExcluded(c, true)
}

func (s *server) handleInclude(c *gin.Context) {
	s.handleSetExcluded(c, false)
}

func (s *server) handleSetExcluded(c *gin.Context, excluded bool) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if excluded {
		err = s.engine.Exclude(c.Request.Context(), runID)
	} else {
		err = s.engine.Include(c.Request.Context(), runID)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "run_id": runID, "is_excluded": excluded})
}

func (s *server) handleDelete(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	err = s.engine.Delete(c.Request.Context(), runID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted_run_id": runID})
}

func (s *server) handleUpdateThresholds(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var thresholds common.Thresholds
	if err = c.ShouldBindJSON(&thresholds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err = s.engine.UpdateThresholds(c.Request.Context(), runID, thresholds)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "run_id": runID, "thresholds": thresholds})
}

func (s *server) handleRunData(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	filter, err := parseMeasurementFilter(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	data, err := s.engine.RunData(c.Request.Context(), runID, filter)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

func (s *server) handleRunSummary(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	summary, err := s.engine.RunSummary(c.Request.Context(), runID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *server) handleExecSummary(c *gin.Context) {
	runID, err := parseRunID(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	summary, err := s.engine.ExecSummary(c.Request.Context(), runID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.execSummaryTotal.WithLabelValues(summary.Status).Inc()
	}

	c.JSON(http.StatusOK, summary)
}

func (s *server) handleCompare(c *gin.Context) {
	var req common.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := s.engine.Compare(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
