package rugs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Test setup helpers
// ---------------------------------------------------------------------------

// rugSQLCols are the columns returned by rugs SELECT * queries.
var rugSQLCols = []string{"id", "design_name", "construction", "size", "color", "company", "status", "created_at", "updated_at"}

func sampleRugRow() *sqlmock.Rows {
	return sqlmock.NewRows(rugSQLCols).
		AddRow("rug-1", "Kashan Medallion", "Hand Knotted", "8x10", "Ivory", "Eastern Mills", "active", time.Now(), time.Now())
}

func emptyRugRows() *sqlmock.Rows {
	return sqlmock.NewRows(rugSQLCols)
}

// newRugRouter creates a gin router with all rug routes registered.
func newRugRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewHandlers(sqlx.NewDb(db, "sqlmock"))

	r := gin.New()
	r.GET("/rugs", h.ListRugsHandler())
	r.GET("/rugs/search", h.SearchRugsHandler())
	r.GET("/rugs/:id", h.GetRugHandler())
	r.POST("/rugs", h.CreateRugHandler())
	r.PUT("/rugs/:id", h.UpdateRugHandler())
	r.DELETE("/rugs/:id", h.DeleteRugHandler())

	return mock, r
}

func jsonBody(v interface{}) *bytes.Buffer {
	b, _ := json.Marshal(v)
	return bytes.NewBuffer(b)
}

func getJSON(resp *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &m)
	return m
}

// errDB is a sentinel error for DB failures in tests.
var errDB = &dbError{"database error"}

type dbError struct{ msg string }

func (e *dbError) Error() string { return e.msg }

// ---------------------------------------------------------------------------
// ListRugsHandler
// ---------------------------------------------------------------------------

func TestListRugsHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs").
		WillReturnRows(sampleRugRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	rugList, _ := resp["rugs"].([]interface{})
	if len(rugList) != 1 {
		t.Errorf("len(rugs) = %d, want 1", len(rugList))
	}
	if resp["pagination"] == nil {
		t.Error("response missing 'pagination' key")
	}
}

func TestListRugsHandler_CompanyAndStatusFilters(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE 1=1 AND company = \\$1 AND status = \\$2").
		WithArgs("Eastern Mills", "active", 20, 0).
		WillReturnRows(sampleRugRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs?company=Eastern+Mills&status=active", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListRugsHandler_DBError(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs").
		WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---------------------------------------------------------------------------
// SearchRugsHandler
// ---------------------------------------------------------------------------

func TestSearchRugsHandler_MissingQuery(t *testing.T) {
	_, r := newRugRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs/search", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchRugsHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs\\s+WHERE design_name ILIKE").
		WithArgs("%kashan%", 20, 0).
		WillReturnRows(sampleRugRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs/search?q=kashan", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	if resp["rugs"] == nil {
		t.Error("response missing 'rugs' key")
	}
}

// ---------------------------------------------------------------------------
// GetRugHandler
// ---------------------------------------------------------------------------

func TestGetRugHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("rug-1").
		WillReturnRows(sampleRugRow())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs/rug-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	rug, _ := resp["rug"].(map[string]interface{})
	if rug == nil {
		t.Fatal("response missing 'rug' key")
	}
	if rug["design_name"] != "Kashan Medallion" {
		t.Errorf("design_name = %v, want Kashan Medallion", rug["design_name"])
	}
}

func TestGetRugHandler_NotFound(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("missing").
		WillReturnRows(emptyRugRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rugs/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ---------------------------------------------------------------------------
// CreateRugHandler
// ---------------------------------------------------------------------------

func TestCreateRugHandler_InvalidJSON(t *testing.T) {
	_, r := newRugRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/rugs", bytes.NewBufferString("{bad")))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateRugHandler_MissingRequiredFields(t *testing.T) {
	_, r := newRugRouter(t)

	// Missing construction and company
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/rugs",
		jsonBody(map[string]string{"design_name": "Kashan Medallion"})))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateRugHandler_InvalidStatus(t *testing.T) {
	_, r := newRugRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/rugs",
		jsonBody(map[string]string{
			"design_name": "Kashan Medallion", "construction": "Hand Knotted",
			"company": "Eastern Mills", "status": "archived",
		})))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateRugHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectExec("INSERT INTO rugs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/rugs",
		jsonBody(map[string]string{
			"design_name": "Kashan Medallion", "construction": "Hand Knotted",
			"company": "Eastern Mills",
		})))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	rug, _ := resp["rug"].(map[string]interface{})
	if rug == nil {
		t.Fatal("response missing 'rug' key")
	}
	// Status defaults to active when omitted
	if rug["status"] != "active" {
		t.Errorf("status = %v, want active", rug["status"])
	}
	if rug["id"] == "" {
		t.Error("created rug has no ID")
	}
}

func TestCreateRugHandler_DBError(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectExec("INSERT INTO rugs").
		WillReturnError(errDB)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/rugs",
		jsonBody(map[string]string{
			"design_name": "Kashan Medallion", "construction": "Hand Knotted",
			"company": "Eastern Mills",
		})))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---------------------------------------------------------------------------
// UpdateRugHandler
// ---------------------------------------------------------------------------

func TestUpdateRugHandler_NotFound(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("missing").
		WillReturnRows(emptyRugRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/rugs/missing",
		jsonBody(map[string]string{"color": "Navy"})))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateRugHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("rug-1").
		WillReturnRows(sampleRugRow())
	mock.ExpectExec("UPDATE rugs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	newColor := "Navy"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/rugs/rug-1",
		jsonBody(map[string]*string{"color": &newColor})))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", w.Code, w.Body.String())
	}
	resp := getJSON(w)
	rug, _ := resp["rug"].(map[string]interface{})
	if rug["color"] != "Navy" {
		t.Errorf("color = %v, want Navy", rug["color"])
	}
}

func TestUpdateRugHandler_InvalidStatus(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("rug-1").
		WillReturnRows(sampleRugRow())

	badStatus := "archived"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("PUT", "/rugs/rug-1",
		jsonBody(map[string]*string{"status": &badStatus})))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---------------------------------------------------------------------------
// DeleteRugHandler
// ---------------------------------------------------------------------------

func TestDeleteRugHandler_NotFound(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("missing").
		WillReturnRows(emptyRugRows())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/rugs/missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteRugHandler_Success(t *testing.T) {
	mock, r := newRugRouter(t)

	mock.ExpectQuery("SELECT \\* FROM rugs WHERE id = \\$1").WithArgs("rug-1").
		WillReturnRows(sampleRugRow())
	mock.ExpectExec("DELETE FROM rugs").WithArgs("rug-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/rugs/rug-1", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
