package gin

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus grades a health check result.
type HealthStatus string

const (
	// HealthStatusHealthy means the dependency answered normally.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded means the service works with reduced capability.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy means the service cannot do useful work.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime,omitempty"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one named dependency's contribution to the health response.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker probes one dependency.
type HealthChecker func() CheckResult

// HealthOptions configures the health endpoints.
type HealthOptions struct {
	ServiceName    string
	ServiceVersion string
	Checks         map[string]HealthChecker
}

// healthState records when the process first registered health routes, for
// uptime reporting. Shared across servers in the same process on purpose.
var healthState = struct {
	sync.Once
	startTime time.Time
}{}

// RegisterHealthRoutes adds the standard probe surface to a router:
//
//   - GET /health: overall status plus per-dependency check results
//   - HEAD /health: cheap liveness probe for load balancers
//   - GET /health/memory: runtime memory statistics
func RegisterHealthRoutes(router *gin.Engine, opts HealthOptions) {
	healthState.Do(func() {
		healthState.startTime = time.Now()
	})

	router.GET("/health", healthHandler(opts))
	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health/memory", memoryHandler())
}

func healthHandler(opts HealthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: opts.ServiceName,
			Version: opts.ServiceVersion,
			Uptime:  formatUptime(time.Since(healthState.startTime)),
		}

		if len(opts.Checks) > 0 {
			response.Checks = make(map[string]CheckResult, len(opts.Checks))
			for name, checker := range opts.Checks {
				result := checker()
				response.Checks[name] = result
				response.Status = worseOf(response.Status, result.Status)
			}
		}

		statusCode := http.StatusOK
		if response.Status == HealthStatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}

// worseOf keeps the overall status at the worst level any check reported.
// One unhealthy dependency makes the whole service unhealthy; degraded only
// downgrades from healthy.
func worseOf(current, reported HealthStatus) HealthStatus {
	switch {
	case reported == HealthStatusUnhealthy:
		return HealthStatusUnhealthy
	case reported == HealthStatusDegraded && current == HealthStatusHealthy:
		return HealthStatusDegraded
	default:
		return current
	}
}

// memoryStats is the response body for GET /health/memory.
type memoryStats struct {
	Timestamp     time.Time `json:"timestamp"`
	HeapAllocMB   float64   `json:"heap_alloc_mb"`
	HeapInuseMB   float64   `json:"heap_inuse_mb"`
	HeapIdleMB    float64   `json:"heap_idle_mb"`
	StackInuseMB  float64   `json:"stack_inuse_mb"`
	NumGC         uint32    `json:"num_gc"`
	NumGoroutine  int       `json:"num_goroutine"`
	GOMaxProcs    int       `json:"gomaxprocs"`
	LastGCPauseMs float64   `json:"last_gc_pause_ms,omitempty"`
}

func memoryHandler() gin.HandlerFunc {
	const bytesPerMB = 1024 * 1024

	return func(c *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		body := memoryStats{
			Timestamp:    time.Now().UTC(),
			HeapAllocMB:  float64(stats.Alloc) / bytesPerMB,
			HeapInuseMB:  float64(stats.HeapInuse) / bytesPerMB,
			HeapIdleMB:   float64(stats.HeapIdle) / bytesPerMB,
			StackInuseMB: float64(stats.StackInuse) / bytesPerMB,
			NumGC:        stats.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
			GOMaxProcs:   runtime.GOMAXPROCS(0),
		}
		if stats.NumGC > 0 {
			body.LastGCPauseMs = float64(stats.PauseNs[(stats.NumGC+255)%256]) / 1e6
		}

		c.JSON(http.StatusOK, body)
	}
}

// formatUptime renders a duration as "2d 4h 11m", dropping units that would
// always read zero.
func formatUptime(d time.Duration) string {
	const (
		hoursPerDay    = 24
		minutesPerHour = 60
		secondsPerMin  = 60
	)

	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	minutes := int(d.Minutes()) % minutesPerHour
	seconds := int(d.Seconds()) % secondsPerMin

	switch {
	case days > 0:
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case hours > 0:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case minutes > 0:
		return strconv.Itoa(minutes) + "m " + strconv.Itoa(seconds) + "s"
	default:
		return strconv.Itoa(seconds) + "s"
	}
}

// DatabaseHealthChecker probes the database with pingFunc. The repositories
// cannot serve anything without it, so a failure is unhealthy.
func DatabaseHealthChecker(pingFunc func() error) HealthChecker {
	return checkWith(pingFunc, "database", HealthStatusUnhealthy)
}

// RedisHealthChecker probes Redis with pingFunc. Status lookups fall back to
// recomputation when the cache is away, so a failure only degrades.
func RedisHealthChecker(pingFunc func() error) HealthChecker {
	return checkWith(pingFunc, "redis", HealthStatusDegraded)
}

func checkWith(pingFunc func() error, name string, onFailure HealthStatus) HealthChecker {
	return func() CheckResult {
		start := time.Now()
		err := pingFunc()
		latency := time.Since(start)

		if err != nil {
			return CheckResult{
				Status:  onFailure,
				Message: name + " connection failed",
				Latency: latency.String(),
			}
		}

		return CheckResult{
			Status:  HealthStatusHealthy,
			Message: name + " connection OK",
			Latency: latency.String(),
		}
	}
}
