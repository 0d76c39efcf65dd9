package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/james-see/ledcostume/pkg/document"
	"github.com/james-see/ledcostume/pkg/merge"
	"github.com/james-see/ledcostume/pkg/resolve"
	"github.com/james-see/ledcostume/pkg/timeline"
)

// ResolveRequest asks for LED colors of a pattern at one instant
type ResolveRequest struct {
	Pattern json.RawMessage `json:"pattern" binding:"required"`
	Time    int64           `json:"t"`
	// Leds defaults to every LED named by the pattern
	Leds []string `json:"leds"`
}

// ResolveResponse holds the resolved colors
type ResolveResponse struct {
	Time   int64                             `json:"t"`
	Colors map[timeline.LedID]timeline.Color `json:"colors"`
}

// MergeEntry is one pattern of a merge request
type MergeEntry struct {
	Pattern  json.RawMessage `json:"pattern" binding:"required"`
	Pause    int64           `json:"pause"`
	Duration *int64          `json:"duration"`
	Source   string          `json:"source"`
}

// MergeRequest lists patterns to lay end to end
type MergeRequest struct {
	Entries []MergeEntry `json:"entries" binding:"required"`
}

// MergeResponse is a composite timeline
type MergeResponse struct {
	TotalDuration int64           `json:"totalDuration"`
	Offsets       []int64         `json:"offsets"`
	Pattern       json.RawMessage `json:"pattern"`
}

// TimelineRow summarizes one composed scenario row
type TimelineRow struct {
	Costume       string   `json:"costume"`
	Patterns      []string `json:"patterns"`
	Leds          int      `json:"leds"`
	TotalDuration int64    `json:"totalDuration"`
	Offsets       []int64  `json:"offsets"`
}

// TimelineResponse summarizes a composed scenario
type TimelineResponse struct {
	Duration int64         `json:"duration"`
	Rows     []TimelineRow `json:"rows"`
}

func offsets(c *merge.Composite) []int64 {
	out := make([]int64, len(c.Offsets))
	for i, o := range c.Offsets {
		out[i] = int64(o)
	}
	return out
}

// handleCatalog godoc
// @Summary List patterns, costumes and music
// @Description Lists the files in the data directory
// @Tags catalog
// @Produce json
// @Success 200 {object} document.Catalog
// @Failure 500 {object} map[string]string
// @Router /api/v1/catalog [get]
func (s *Server) handleCatalog(c *gin.Context) {
	cat, err := document.ReadCatalog(s.dataDir)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// handleResolve godoc
// @Summary Resolve LED colors
// @Description Returns the color of each LED of a pattern at time t (ms)
// @Tags timeline
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Pattern document and time"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/resolve [post]
func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := document.DecodePattern(req.Pattern)
	if err != nil {
		writeError(c, err)
		return
	}

	leds := doc.Pattern.Leds()
	if len(req.Leds) > 0 {
		leds = make([]timeline.LedID, len(req.Leds))
		for i, l := range req.Leds {
			leds[i] = timeline.LedID(l)
		}
	}
	c.JSON(http.StatusOK, ResolveResponse{
		Time:   req.Time,
		Colors: resolve.All(doc.Pattern, leds, timeline.Milliseconds(req.Time)),
	})
}

// handleMerge godoc
// @Summary Merge patterns
// @Description Lays patterns end to end, each occupying its audio duration plus pause
// @Tags timeline
// @Accept json
// @Produce json
// @Param request body MergeRequest true "Entries to merge"
// @Success 200 {object} MergeResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/merge [post]
func (s *Server) handleMerge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := make([]merge.Entry, len(req.Entries))
	for i, e := range req.Entries {
		doc, err := document.DecodePattern(e.Pattern)
		if err != nil {
			writeError(c, fmt.Errorf("entry %d: %w", i, err))
			return
		}
		entries[i] = merge.Entry{
			Pattern: doc.Pattern,
			Pause:   timeline.Milliseconds(e.Pause),
			Source:  e.Source,
		}
		if e.Duration != nil {
			entries[i].AudioDuration = merge.Duration(timeline.Milliseconds(*e.Duration))
		}
	}

	comp, err := s.cache.Merge(entries)
	if err != nil {
		writeError(c, err)
		return
	}
	data, err := document.EncodePattern(&document.PatternDocument{Pattern: comp.Pattern})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MergeResponse{
		TotalDuration: int64(comp.TotalDuration),
		Offsets:       offsets(comp),
		Pattern:       data,
	})
}

// handleScenarioTimeline godoc
// @Summary Compose a scenario
// @Description Merges every row of a scenario file and reports row lengths
// @Tags timeline
// @Produce json
// @Param path query string true "Scenario path relative to the data directory"
// @Success 200 {object} TimelineResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/scenario/timeline [get]
func (s *Server) handleScenarioTimeline(c *gin.Context) {
	sh, err := s.loadShow(c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := TimelineResponse{Duration: int64(sh.Duration), Rows: []TimelineRow{}}
	for _, r := range sh.Rows {
		resp.Rows = append(resp.Rows, TimelineRow{
			Costume:       r.CostumePath,
			Patterns:      r.Patterns,
			Leds:          len(r.Leds),
			TotalDuration: int64(r.Composite.TotalDuration),
			Offsets:       offsets(r.Composite),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// handleExportMIDI godoc
// @Summary Convert a pattern to MIDI
// @Description Upload a pattern document and receive a MIDI file
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "Pattern document to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/export/midi [post]
func (s *Server) handleExportMIDI(c *gin.Context) {
	s.handleConversion(c, ".mid", "audio/midi", s.conv.PatternToMIDI)
}

// handleImportMIDI godoc
// @Summary Convert MIDI to a pattern
// @Description Upload a MIDI file and receive a pattern document
// @Tags convert
// @Accept multipart/form-data
// @Produce application/json
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/import/midi [post]
func (s *Server) handleImportMIDI(c *gin.Context) {
	s.handleConversion(c, ".json", "application/json", s.conv.MIDIToPattern)
}

func (s *Server) handleConversion(c *gin.Context, outputExt, contentType string, convert func([]byte) ([]byte, error)) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	result, err := convert(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outputName := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	if outputName == "" {
		outputName = "converted"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName+outputExt))
	c.Data(http.StatusOK, contentType, result)
}
