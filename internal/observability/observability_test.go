package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cleantownship/cleantown-service/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordRequest("/issues", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/issues", "POST", 201, 30*time.Millisecond)
	m.RecordError("/auth/login", "POST", "UNAUTHORIZED")

	requests, errs := m.Snapshot()
	stat, ok := requests["/issues|POST|201"]
	if !ok {
		t.Fatalf("missing request stat, got %v", requests)
	}
	if stat.Count != 2 || stat.AvgDurationMS != 20 {
		t.Errorf("unexpected stat %+v", stat)
	}
	if errs["/auth/login|POST|UNAUTHORIZED"] != 1 {
		t.Errorf("unexpected errors %v", errs)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	requests, errs := m.Snapshot()
	if len(requests) != 0 || len(errs) != 0 {
		t.Error("nil metrics should report nothing")
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/dashboard", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/broken", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })

	for _, path := range []string{"/dashboard", "/broken"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
	}

	if logs.FilterMessage("request").FilterField(zap.Int("status", 200)).Len() != 1 {
		t.Error("expected one info entry for the 200 response")
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Error("expected one error entry for the 502 response")
	}

	requests, _ := metrics.Snapshot()
	if requests["/dashboard|GET|200"].Count != 1 {
		t.Errorf("dashboard request not counted: %v", requests)
	}
}

func TestRequestLogger_UnmatchedPathsShareOneKey(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/issues/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	paths := []string{"/nope-1", "/nope-2", "/deep/nope/3", "/issues/a", "/issues/b"}
	for _, path := range paths {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
	}

	requests, _ := metrics.Snapshot()
	if len(requests) != 2 {
		t.Fatalf("expected 2 request keys, got %v", requests)
	}
	if requests[UnmatchedRoute+"|GET|404"].Count != 3 {
		t.Errorf("unmatched requests not collapsed: %v", requests)
	}
	if requests["/issues/:id|GET|200"].Count != 2 {
		t.Errorf("parameterized route not keyed by pattern: %v", requests)
	}
}

func TestNewLogger_UnknownLevelFallsBack(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, "production")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected info level fallback")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled")
	}
}
