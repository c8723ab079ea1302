package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/notify"
	"github.com/terraincognita07/mindnet/internal/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecretKey = "test-secret-key-0123456789abcdef0123"

type recordingDispatcher struct {
	mu        sync.Mutex
	incidents []notify.Incident
	inner     services.IncidentDispatcher
}

func (dispatcher *recordingDispatcher) Dispatch(ctx context.Context, incident notify.Incident) notify.Report {
	dispatcher.mu.Lock()
	dispatcher.incidents = append(dispatcher.incidents, incident)
	dispatcher.mu.Unlock()
	if dispatcher.inner != nil {
		return dispatcher.inner.Dispatch(ctx, incident)
	}
	return notify.Report{
		IncidentID: "incident-test",
		Results: []notify.ChannelResult{
			{Channel: notify.ChannelEmail, Delivered: true, Reference: "email-1"},
			{Channel: notify.ChannelSMS, Delivered: true, Reference: "SM1"},
		},
	}
}

func (dispatcher *recordingDispatcher) count() int {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	return len(dispatcher.incidents)
}

func newTestApp(t *testing.T, dispatcher services.IncidentDispatcher) (*fiber.App, *gorm.DB) {
	t.Helper()

	_, testFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve current test file path")
	}
	templatesDir := filepath.Join(filepath.Dir(filepath.Dir(testFile)), "templates")

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mindnet-api-test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := NewHandler(database, dispatcher, Options{
		SecretKey:    testSecretKey,
		TemplatesDir: templatesDir,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func createTestUser(t *testing.T, database *gorm.DB, username string, password string) models.User {
	t.Helper()
	user := models.User{
		Username:              username,
		PasswordHash:          hashTestPassword(t, password),
		Email:                 username + "@example.com",
		BirthDate:             "1990-01-01",
		FirstName:             strings.ToUpper(username[:1]) + username[1:],
		LastName:              "Tester",
		Stage:                 models.DefaultStage,
		EmergencyContactEmail: "contact+" + username + "@example.com",
		CreatedAt:             time.Now().UTC(),
	}
	if err := database.Omit("Entries").Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestTherapist(t *testing.T, database *gorm.DB, username string, password string) models.Therapist {
	t.Helper()
	therapist := models.Therapist{
		Username:     username,
		PasswordHash: hashTestPassword(t, password),
		Email:        username + "@clinic.example.com",
		FirstName:    "Bob",
		LastName:     "Stone",
		CreatedAt:    time.Now().UTC(),
	}
	if err := database.Create(&therapist).Error; err != nil {
		t.Fatalf("create therapist: %v", err)
	}
	return therapist
}

func hashTestPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values, cookie string, accept string) *http.Response {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return response
}

func getPath(t *testing.T, app *fiber.App, path string, cookie string, accept string) *http.Response {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, loginPath string, username string, password string) string {
	t.Helper()
	response := postForm(t, app, loginPath, url.Values{
		"username": {username},
		"password": {password},
	}, "", "")
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login status 303, got %d", response.StatusCode)
	}
	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("auth cookie is missing in login response")
	}
	return cookie.Name + "=" + cookie.Value
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readFlash(t *testing.T, response *http.Response) FlashPayload {
	t.Helper()
	cookie := responseCookie(response.Cookies(), flashCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("flash cookie is missing")
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		t.Fatalf("decode flash cookie: %v", err)
	}
	payload := FlashPayload{}
	if err := json.Unmarshal(decoded, &payload); err != nil {
		t.Fatalf("unmarshal flash cookie: %v", err)
	}
	return payload
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}
