package e2e

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/app"
	testconfig "github.com/sharmarobin1121-cmyk/yikyak2/internal/tests/config"
)

// TestSuite holds the E2E test infrastructure
type TestSuite struct {
	Container *app.Container
	Server    *httptest.Server
	Logs      *observer.ObservedLogs
}

var (
	globalSuite *TestSuite
	phoneSeq    atomic.Int64
)

// TestMain starts the service against real Postgres and Redis when they are configured
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	cfg, err := testconfig.LoadTestConfig()
	if err != nil {
		log.Fatalf("Failed to load test config: %v", err)
	}
	if cfg == nil {
		os.Exit(m.Run())
	}

	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.NewContainer(ctx, cfg, zap.New(core))
	cancel()
	if err != nil {
		log.Fatalf("Failed to setup test suite: %v", err)
	}

	globalSuite = &TestSuite{
		Container: container,
		Server:    httptest.NewServer(container.Router()),
		Logs:      logs,
	}
	phoneSeq.Store(time.Now().UnixNano() % 1_000_000)

	code := m.Run()

	globalSuite.Server.Close()
	_ = container.Close()
	os.Exit(code)
}

func suite(t *testing.T) *TestSuite {
	t.Helper()
	if globalSuite == nil {
		testconfig.SkipWithoutServices(t, nil)
	}
	return globalSuite
}

// uniquePhone returns a fresh national-format number so runs never share state
func uniquePhone() string {
	return fmt.Sprintf("555%07d", phoneSeq.Add(1)%10_000_000)
}

// lastCode returns the most recent code the logging SMS sender emitted
func (s *TestSuite) lastCode(t *testing.T) string {
	t.Helper()
	entries := s.Logs.FilterMessage("mock sms").All()
	if len(entries) == 0 {
		t.Fatal("no verification code was delivered")
	}
	code, ok := entries[len(entries)-1].ContextMap()["code"].(string)
	if !ok {
		t.Fatal("delivered message carried no code")
	}
	return code
}
