package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lysyi3m/pulse-comb/app/content"
	"github.com/lysyi3m/pulse-comb/app/database"
	"github.com/lysyi3m/pulse-comb/app/profile"
	"github.com/lysyi3m/pulse-comb/app/quality"
	"github.com/lysyi3m/pulse-comb/app/rank"
)

const (
	statusOK     = "ok"
	statusNoData = "no_data"
)

func NewHandler(aggregator AggregatorInterface, ranker RankerInterface, assessor *quality.Assessor,
	profiles *profile.Store, runs RunStoreInterface, sources []SourceStatsInterface,
	defaults Defaults, version string) *Handler {
	return &Handler{
		aggregator: aggregator,
		ranker:     ranker,
		assessor:   assessor,
		profiles:   profiles,
		runs:       runs,
		sources:    sources,
		defaults:   defaults,
		version:    version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   len(h.aggregator.Sources()),
		"profiles":  h.profiles.Names(),
	}

	if runs, err := h.runs.ListRuns(h.defaults.RunHistory); err == nil {
		health["runs"] = len(runs)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSources(c *gin.Context) {
	sources := make([]interface{}, 0, len(h.sources))
	for _, s := range h.sources {
		sources = append(sources, s.Stats())
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

// APIResetSource drops a source's cached results and rate window.
func (h *Handler) APIResetSource(c *gin.Context) {
	name := c.Param("name")

	for _, s := range h.sources {
		if s.Name() != name {
			continue
		}

		s.Reset()
		slog.Info("Source reset", "source", name)

		c.JSON(http.StatusOK, s.Stats())
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
}

// APIPulse runs the aggregate and rank pipeline for the requested queries and
// records the run.
func (h *Handler) APIPulse(c *gin.Context) {
	var req PulseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No queries provided"})
		return
	}
	if req.MinTargets < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_targets must be non-negative"})
		return
	}

	profileName := req.Profile
	if profileName == "" {
		profileName = h.defaults.Profile
	}

	p, err := h.profiles.Get(profileName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown profile", "message": err.Error()})
		return
	}

	opts := p.RankOptions(h.defaults.MinTargets, h.defaults.PrivilegedOrigin, h.defaults.QuotaFloor)
	if req.MinTargets > 0 {
		opts.MinTotal = req.MinTargets
	}

	ctx := c.Request.Context()
	if h.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.defaults.Timeout)
		defer cancel()
	}

	start := time.Now()

	result, err := h.aggregator.Aggregate(ctx, req.Queries)
	if err != nil {
		slog.Error("Aggregation failed", "profile", profileName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Aggregation failed", "message": err.Error()})
		return
	}

	targets := h.ranker.Rank(result.Items, opts)
	if targets == nil {
		targets = []rank.Target{}
	}
	items := result.Items
	if items == nil {
		items = []content.Item{}
	}

	status := statusOK
	if result.Degraded() {
		status = statusNoData
	}

	resp := PulseResponse{
		Status:          status,
		Profile:         profileName,
		GeneratedAt:     time.Now().UTC(),
		Duration:        time.Since(start).Round(time.Millisecond).String(),
		PoolSize:        len(result.Items),
		Rejected:        result.Rejected,
		Failures:        result.Failures,
		PerSourceCounts: result.PerSourceCounts,
		Targets:         targets,
		Items:           items,
	}

	resp.RunID = h.recordRun(&resp)

	slog.Info("Pulse completed",
		"run", resp.RunID,
		"profile", profileName,
		"status", status,
		"items", resp.PoolSize,
		"targets", len(targets),
		"failures", len(resp.Failures),
		"duration", resp.Duration)

	c.JSON(http.StatusOK, resp)
}

// recordRun stores the response and returns the run id. Storage failures are
// logged and do not fail the request.
func (h *Handler) recordRun(resp *PulseResponse) string {
	run := &database.Run{
		Profile:     resp.Profile,
		Status:      resp.Status,
		CreatedAt:   resp.GeneratedAt,
		ItemCount:   resp.PoolSize,
		TargetCount: len(resp.Targets),
		Failures:    resp.Failures,
	}

	// The id is assigned up front so the stored payload carries it.
	run.ID = uuid.NewString()
	resp.RunID = run.ID

	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode run", "run", run.ID, "error", err)
		return run.ID
	}
	run.Payload = payload

	if err := h.runs.SaveRun(run); err != nil {
		slog.Error("Database error", "operation", "save_run", "run", run.ID, "error", err)
		return run.ID
	}

	if h.defaults.RunHistory > 0 {
		if removed, err := h.runs.Prune(h.defaults.RunHistory); err != nil {
			slog.Error("Database error", "operation", "prune_runs", "error", err)
		} else if removed > 0 {
			slog.Debug("Pruned run history", "removed", removed)
		}
	}

	return run.ID
}

func (h *Handler) APIListRuns(c *gin.Context) {
	limit := h.defaults.RunHistory
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit < 1 {
		limit = 50
	}

	runs, err := h.runs.ListRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	summaries := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, map[string]interface{}{
			"id":           run.ID,
			"profile":      run.Profile,
			"status":       run.Status,
			"created_at":   run.CreatedAt.Format(time.RFC3339),
			"item_count":   run.ItemCount,
			"target_count": run.TargetCount,
			"failures":     run.Failures,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  summaries,
		"count": len(summaries),
	})
}

func (h *Handler) APIGetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.runs.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", run.Payload)
}

// APIAssess scores a raw analysis document. The optional profile query
// parameter supplies the forbidden claims for the alignment check.
func (h *Handler) APIAssess(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body", "message": err.Error()})
		return
	}

	var domain *quality.DomainContext
	if name := c.Query("profile"); name != "" {
		p, err := h.profiles.Get(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown profile", "message": err.Error()})
			return
		}
		domain = &quality.DomainContext{ForbiddenClaims: p.ForbiddenClaims}
	}

	score := h.assessor.AssessJSON(body, domain)

	slog.Debug("Analysis assessed", "overall", score.Overall, "errors", score.Count(quality.SeverityError))

	c.JSON(http.StatusOK, AssessResponse{
		Score:      score,
		Grade:      quality.Grade(score.Overall),
		ReportCard: score.ReportCard(),
	})
}
