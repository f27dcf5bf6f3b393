package data

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/metrics"
)

// API serves data types over HTTP.
type API struct {
	source  Source
	logger  *logging.Logger
	metrics *metrics.Collectors
}

// NewAPI creates the data API. Metrics may be nil.
func NewAPI(source Source, logger *logging.Logger, m *metrics.Collectors) *API {
	if logger == nil {
		logger = logging.Default()
	}
	return &API{source: source, logger: logger, metrics: m}
}

// Router returns a gin engine serving GET /api/:dataType with an optional
// JSON "options" query parameter. /api/graph serves the CSV graph source.
func (a *API) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), a.requestID(), a.accessLog())
	router.GET("/api/:dataType", func(c *gin.Context) { a.getData(c) })
	return router
}

func (a *API) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (a *API) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.WithField("request", c.GetString("requestID")).Debug("%s %s %d %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (a *API) getData(c *gin.Context) {
	dataType := strings.ToUpper(c.Param("dataType"))

	if raw := c.Query("options"); raw != "" {
		if opts := gjson.Parse(raw); !gjson.Valid(raw) || !opts.IsObject() {
			c.JSON(http.StatusBadRequest, gin.H{"errorMessage": ErrInvalidOptions.Error()})
			return
		}
	}

	if dataType != chart.DataGraph {
		c.JSON(http.StatusNotFound, gin.H{"errorMessage": ErrUnknownDataType.Error() + ": " + c.Param("dataType")})
		return
	}

	var done func(error)
	if a.metrics != nil {
		done = a.metrics.LoadStarted(dataType)
	}
	data, err := a.source.Load(c.Request.Context())
	if done != nil {
		done(err)
	}
	if err != nil {
		a.logger.WithField("request", c.GetString("requestID")).Error("loading %s: %v", dataType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error()})
		return
	}

	c.JSON(http.StatusOK, data)
}
