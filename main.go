package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/striking-distance/backend/crawler"
	"github.com/striking-distance/backend/ingest"
	"github.com/striking-distance/backend/logging"
	"github.com/striking-distance/backend/middleware"
	"github.com/striking-distance/backend/pipeline"
	"github.com/striking-distance/backend/report"
	"github.com/striking-distance/backend/stats"
)

// loadEnv tries .env.development first (local development), then regular
// .env. It reports whether either file was loaded.
func loadEnv() bool {
	if err := godotenv.Load(".env.development"); err == nil {
		return true
	}
	return godotenv.Load() == nil
}

func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

type server struct {
	pipe *pipeline.Pipeline
	st   *stats.Storage
	log  *logging.Logger
}

func main() {
	envLoaded := loadEnv()
	setupGinMode()

	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if !envLoaded {
		log.Info("no .env file found, using environment variables")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	st, err := stats.NewStorage(dataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize stats storage")
	}
	defer st.Shutdown()

	timeout := time.Duration(envInt("CRAWL_TIMEOUT_SECONDS", 10)) * time.Second
	fetcher := crawler.NewHTTPFetcher(timeout)
	srv := &server{
		pipe: pipeline.New(fetcher, log, st),
		st:   st,
		log:  log,
	}

	rateLimiter := middleware.NewRateLimiter(2, 5) // 2 requests per second, bucket of 5

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(rateLimiter.RateLimit())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/report", srv.generateReport)
		api.POST("/report/upload", srv.generateReportFromUpload)
		api.POST("/report/export", srv.exportReport)
		api.GET("/report/sample", srv.generateSampleReport)

		api.GET("/statistics", srv.statistics)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type reportRequest struct {
	Records []pipeline.KeywordRecord `json:"records" binding:"required"`
	Options *pipeline.Options        `json:"options"`
}

type reportResponse struct {
	*pipeline.Result
	Summary map[string]int `json:"summary"`
}

// resolveOptions fills defaults for omitted fields. For JSON input the
// impressions filter applies whenever a positive threshold is set, since
// every JSON record carries an impressions field.
func resolveOptions(opts *pipeline.Options) pipeline.Options {
	if opts == nil {
		return pipeline.DefaultOptions()
	}
	resolved := *opts
	if resolved.PositionMin <= 0 {
		resolved.PositionMin = 3
	}
	if resolved.PositionMax <= 0 {
		resolved.PositionMax = 20
	}
	if resolved.MaxURLs <= 0 {
		resolved.MaxURLs = 50
	}
	if resolved.Workers <= 0 {
		resolved.Workers = crawler.DefaultWorkers
	}
	resolved.HasImpressions = resolved.MinImpressions > 0
	return resolved
}

func (s *server) generateReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	result, err := s.pipe.Run(c.Request.Context(), req.Records, resolveOptions(req.Options))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newReportResponse(result))
}

func (s *server) generateReportFromUpload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file part 'file' required"})
		return
	}
	defer file.Close()

	records, hasImpressions, err := ingest.ParseCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := formOptions(c)
	opts.HasImpressions = hasImpressions

	result, err := s.pipe.Run(c.Request.Context(), records, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newReportResponse(result))
}

func (s *server) exportReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	result, err := s.pipe.Run(c.Request.Context(), req.Records, resolveOptions(req.Options))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("striking_distance_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := report.WriteExcel(c.Writer, result, req.Records); err != nil {
		s.log.WithError(err).Error("failed to write excel report")
		c.Status(http.StatusInternalServerError)
	}
}

func (s *server) generateSampleReport(c *gin.Context) {
	opts := pipeline.DefaultOptions()
	opts.LiveCrawl = false

	result, err := s.pipe.Run(c.Request.Context(), ingest.SampleRecords(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newReportResponse(result))
}

func (s *server) statistics(c *gin.Context) {
	current := s.st.GetCurrentStats()
	response := gin.H{
		"reportsGenerated": current.ReportsGenerated,
		"pagesCrawled":     current.PagesCrawled,
		"crawlFailures":    current.CrawlFailures,
		"keywordsAnalyzed": current.KeywordsAnalyzed,
	}

	// Per-month breakdown only in development mode.
	if os.Getenv("DEV_MODE") == "true" {
		months := gin.H{}
		for _, month := range s.st.GetAllMonths() {
			if m, ok := s.st.GetMonthlyStats(month); ok {
				months[month] = m
			}
		}
		response["months"] = months
	}

	c.JSON(http.StatusOK, response)
}

func newReportResponse(result *pipeline.Result) reportResponse {
	return reportResponse{
		Result: result,
		Summary: map[string]int{
			"strikingDistance": len(result.StrikingDistance),
			"fullyOptimized":   len(result.FullyOptimized),
			"blocklistRemoved": len(result.BlocklistRemoved),
			"urlsNotFound":     len(result.URLsNotFound),
			"crawlErrors":      len(result.CrawlErrors),
		},
	}
}

// formOptions reads pipeline options from multipart form fields, falling
// back to defaults for anything absent.
func formOptions(c *gin.Context) pipeline.Options {
	opts := pipeline.DefaultOptions()

	if v, err := strconv.Atoi(c.PostForm("positionMin")); err == nil && v > 0 {
		opts.PositionMin = v
	}
	if v, err := strconv.Atoi(c.PostForm("positionMax")); err == nil && v > 0 {
		opts.PositionMax = v
	}
	if v, err := strconv.Atoi(c.PostForm("minImpressions")); err == nil && v >= 0 {
		opts.MinImpressions = v
	}
	if v, err := strconv.Atoi(c.PostForm("maxUrls")); err == nil && v > 0 {
		opts.MaxURLs = v
	}
	if v, err := strconv.Atoi(c.PostForm("workers")); err == nil && v > 0 {
		opts.Workers = v
	}
	if v := c.PostForm("liveCrawl"); v != "" {
		opts.LiveCrawl = v == "true" || v == "1"
	}
	if v := c.PostForm("blocklist"); v != "" {
		for _, term := range strings.Split(v, "\n") {
			if term = strings.TrimSpace(term); term != "" {
				opts.Blocklist = append(opts.Blocklist, term)
			}
		}
	}

	return opts
}
