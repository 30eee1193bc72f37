package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/an-furnish/furnish-api/middleware"
	"github.com/an-furnish/furnish-api/services"
	"github.com/an-furnish/furnish-api/testutil"
)

func TestMain(m *testing.M) {
	testutil.MustEnsureTestEnvironment()
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	return testutil.NewSQLiteDB(t)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// steppingClock advances one second per reading so creation order is unambiguous
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

// setupOrderService installs an order service backed by sqlite and an in-memory S3
func setupOrderService(t *testing.T) (*services.GormOrderStore, *services.MockS3Service) {
	t.Helper()

	store := services.NewGormOrderStore(setupTestDB(t), 10, nil)
	require.NoError(t, store.Migrate())

	mockS3 := services.NewMockS3Service()
	services.SetOrderService(services.NewOrderService(services.OrderServiceOptions{
		Store:  store,
		Images: services.NewS3ImageService(mockS3),
		Now:    steppingClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)),
	}))
	t.Cleanup(func() { services.SetOrderService(nil) })

	return store, mockS3
}

// mockAuthMiddleware sets up the context the way the real auth middleware does
func mockAuthMiddleware(userID, accessToken string) gin.HandlerFunc {
	claims := testutil.ValidatedClaims(userID, "https://test.auth0.com/", &middleware.CustomClaims{Scope: "read:orders write:orders"})
	return testutil.MockAuthMiddleware(claims, accessToken)
}

func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performUpload(t *testing.T, router *gin.Engine, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func validOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"flowType": "custom",
		"category": "Bedroom",
		"specifications": map[string]interface{}{
			"style":      "Minimalist",
			"materials":  []string{"Walnut", "Brass"},
			"dimensions": map[string]interface{}{"w": 180, "d": "90", "h": 75},
			"headboard":  "upholstered",
		},
		"contact": map[string]interface{}{
			"name":  "Tanvir Ahmed",
			"phone": "+8801812345678",
			"city":  "Chattogram",
		},
		"budget":   "BDT 80,000 - 1,00,000",
		"timeline": "1-2 months",
	}
}
