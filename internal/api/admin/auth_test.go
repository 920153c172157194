package admin

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/eastern-erp/eastern-erp/internal/auth"
	"github.com/eastern-erp/eastern-erp/internal/config"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
)

// ---------------------------------------------------------------------------
// Test setup helpers
// ---------------------------------------------------------------------------

// newAuthRouter creates a gin router with the auth routes registered.
func newAuthRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Auth.SessionTTL = time.Hour

	h := NewAuthHandlers(cfg, db)

	r := gin.New()
	r.POST("/auth/login", h.LoginHandler())
	r.GET("/auth/me", h.MeHandler())

	return mock, r
}

// userRowWithPassword returns a user row whose password_hash matches the given
// plaintext password.
func userRowWithPassword(t *testing.T, password string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return sqlmock.NewRows(userSQLCols).
		AddRow("user-1", "alice@example.com", "Alice", hash, "auditor", active, time.Now(), time.Now())
}

func loginRequest(email, password string) *http.Request {
	return httptest.NewRequest("POST", "/auth/login",
		jsonBody(map[string]string{"email": email, "password": password}))
}

// ---------------------------------------------------------------------------
// LoginHandler
// ---------------------------------------------------------------------------

func TestLoginHandler_InvalidJSON(t *testing.T) {
	_, r := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString("{bad")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginHandler_MissingPassword(t *testing.T) {
	_, r := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/auth/login",
		jsonBody(map[string]string{"email": "alice@example.com"})))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginHandler_UnknownEmail(t *testing.T) {
	mock, r := newAuthRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("ghost@example.com").
		WillReturnRows(emptyUserRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest("ghost@example.com", "whatever1"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	resp := getJSON(w)
	if resp["error"] != "Invalid email or password" {
		t.Errorf("error = %v, want generic credentials message", resp["error"])
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	mock, r := newAuthRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "correct-password", true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest("alice@example.com", "wrong-password"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	resp := getJSON(w)
	if resp["error"] != "Invalid email or password" {
		t.Errorf("error = %v, want generic credentials message", resp["error"])
	}
}

func TestLoginHandler_DeactivatedAccount(t *testing.T) {
	// Deactivated accounts get the same generic 401 as a wrong password so the
	// endpoint does not reveal account status.
	mock, r := newAuthRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "correct-password", false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest("alice@example.com", "correct-password"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	resp := getJSON(w)
	if resp["error"] != "Invalid email or password" {
		t.Errorf("error = %v, want generic credentials message", resp["error"])
	}
}

func TestLoginHandler_DBError(t *testing.T) {
	mock, r := newAuthRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("alice@example.com").
		WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest("alice@example.com", "correct-password"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestLoginHandler_Success(t *testing.T) {
	mock, r := newAuthRouter(t)

	mock.ExpectQuery("SELECT").WithArgs("alice@example.com").
		WillReturnRows(userRowWithPassword(t, "correct-password", true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, loginRequest("alice@example.com", "correct-password"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Error("response missing 'token'")
	}
	if resp["expires_at"] == nil {
		t.Error("response missing 'expires_at'")
	}
	user, _ := resp["user"].(map[string]interface{})
	if user == nil {
		t.Fatal("response missing 'user'")
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("response leaked password_hash")
	}

	// Token should round-trip through validation
	claims, err := auth.ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("claims.UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != "auditor" {
		t.Errorf("claims.Role = %q, want auditor", claims.Role)
	}
}

// ---------------------------------------------------------------------------
// MeHandler
// ---------------------------------------------------------------------------

func TestMeHandler_NoUserInContext(t *testing.T) {
	_, r := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMeHandler_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := &config.Config{}
	h := NewAuthHandlers(cfg, db)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user", &models.User{
			ID:    "user-1",
			Email: "alice@example.com",
			Name:  "Alice",
			Role:  "auditor",
		})
		c.Next()
	})
	r.GET("/auth/me", h.MeHandler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/auth/me", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := getJSON(w)
	user, _ := resp["user"].(map[string]interface{})
	if user == nil {
		t.Fatal("response missing 'user'")
	}
	if user["email"] != "alice@example.com" {
		t.Errorf("user.email = %v, want alice@example.com", user["email"])
	}
}
