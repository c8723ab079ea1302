package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/mindnet/internal/api"
	"github.com/terraincognita07/mindnet/internal/config"
	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/notify"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve test file path")
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}

func TestCSRFMiddlewareConfigUsesCookieSecureFlag(t *testing.T) {
	secureConfig := csrfMiddlewareConfig(true)
	if !secureConfig.CookieSecure {
		t.Fatal("expected csrf cookie secure flag to be enabled")
	}
	if secureConfig.CookieName != "mindnet_csrf" {
		t.Fatalf("expected csrf cookie name mindnet_csrf, got %q", secureConfig.CookieName)
	}
	if secureConfig.KeyLookup != "form:csrf_token" {
		t.Fatalf("expected csrf key lookup form:csrf_token, got %q", secureConfig.KeyLookup)
	}
	if csrfMiddlewareConfig(false).CookieSecure {
		t.Fatal("expected csrf cookie secure flag to be disabled")
	}
}

func TestNewDispatcherWithoutProvidersReportsUnconfiguredChannels(t *testing.T) {
	dispatcher := newDispatcher(config.Config{}, zap.NewNop(), prometheus.NewRegistry())

	report := dispatcher.Dispatch(context.Background(), notify.Incident{Username: "alice"})
	if len(report.Results) != 2 {
		t.Fatalf("expected two channel results, got %d", len(report.Results))
	}
	for _, result := range report.Results {
		if result.Delivered {
			t.Fatalf("channel %s must not report delivery without credentials", result.Channel)
		}
	}
}

func TestLoadConfigRejectsMissingSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("MINDNET_SECRET_KEY", "")
	t.Chdir(t.TempDir())

	if _, err := loadConfig(""); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestAppServesMetricsAndProtectsForms(t *testing.T) {
	root := repoRoot(t)
	cfg := config.Config{
		SecretKey:    testSecret,
		TemplatesDir: filepath.Join(root, "internal", "templates"),
		StaticDir:    filepath.Join(root, "web", "static"),
	}
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mindnet-main.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	handler, err := api.NewHandler(database, newDispatcher(cfg, zap.NewNop(), prometheus.NewRegistry()), api.Options{
		SecretKey:    cfg.SecretKey,
		TemplatesDir: cfg.TemplatesDir,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	app := newApp(cfg, handler)

	metrics, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	metrics.Body.Close()
	if metrics.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", metrics.StatusCode)
	}

	static, err := app.Test(httptest.NewRequest(http.MethodGet, "/static/app.css", nil), -1)
	if err != nil {
		t.Fatalf("GET /static/app.css: %v", err)
	}
	static.Body.Close()
	if static.StatusCode != http.StatusOK {
		t.Fatalf("expected static asset 200, got %d", static.StatusCode)
	}

	request := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=alice&password=secret"))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	login, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	login.Body.Close()
	if login.StatusCode != http.StatusForbidden {
		t.Fatalf("expected csrf rejection 403, got %d", login.StatusCode)
	}
}

func TestResetPasswordCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "mindnet.db")
	database, err := db.OpenSQLite(dbPath, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Create(&models.Therapist{
		Username: "drbob", PasswordHash: "old", Email: "bob@example.com", FirstName: "Bob", LastName: "Stone",
	}).Error; err != nil {
		t.Fatalf("create therapist: %v", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}

	configPath := filepath.Join(dir, "mindnet.yaml")
	content := "secret_key: " + testSecret + "\ndatabase:\n  driver: sqlite\n  path: " + dbPath + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	command := newRootCommand()
	command.SetOut(&out)
	command.SetArgs([]string{"reset-password", "--config", configPath, "--username", "drbob", "--therapist"})
	if err := command.Execute(); err != nil {
		t.Fatalf("reset-password: %v", err)
	}
	if !strings.Contains(out.String(), "Temporary password: ") {
		t.Fatalf("expected temporary password in output, got %q", out.String())
	}

	command = newRootCommand()
	command.SetOut(&bytes.Buffer{})
	command.SetArgs([]string{"reset-password", "--config", configPath, "--username", "ghost"})
	if err := command.Execute(); err == nil {
		t.Fatal("expected unknown account to fail")
	}
}
