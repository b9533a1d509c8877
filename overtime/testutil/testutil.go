package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"crewtime.app/crewtime/overtime/model"
	"crewtime.app/crewtime/security"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SigningSecret is the base64 HS256 secret shared by test tokens and
// test routers.
var SigningSecret = base64.StdEncoding.EncodeToString([]byte("crewtime-test-signing-secret"))

// NewTestDB opens a fresh in-memory database with the overtime schema
// migrated. Each call is fully isolated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.OvertimeRequest{},
		&model.OvertimeSession{},
		&model.TimecardEntry{},
		&model.Notification{},
		&model.OvertimePolicy{},
		&model.OrgUser{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewToken mints a signed identity token for the given member.
func NewToken(t *testing.T, userID, userName, orgID, role string) string {
	t.Helper()

	token, err := security.CreateIdentityToken(&security.CrewIdentity{
		Id:             userID,
		UserName:       userName,
		OrganizationId: orgID,
		Role:           role,
	}, SigningSecret, 3600)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	return token
}

// JWTSecret is the decoded signing secret for wiring middleware directly.
func JWTSecret(t *testing.T) []byte {
	t.Helper()

	secret, err := base64.StdEncoding.DecodeString(SigningSecret)
	if err != nil {
		t.Fatalf("failed to decode signing secret: %v", err)
	}
	return secret
}

// NewRouter returns a quiet gin engine for endpoint tests.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// DoRequest performs one request against the router with an optional
// JSON body and bearer token.
func DoRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseData unmarshals the "data" member of a response envelope into out.
func ParseData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to parse response envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("failed to parse response data: %v", err)
	}
}

// SeedUser inserts one org member row.
func SeedUser(t *testing.T, db *gorm.DB, id, orgID, name, role string) {
	t.Helper()

	user := model.OrgUser{
		ID:             id,
		OrganizationID: orgID,
		Name:           name,
		Email:          name + "@example.com",
		Role:           role,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

// SeedOpenEntry inserts an open clock-in for the user at start.
func SeedOpenEntry(t *testing.T, db *gorm.DB, id, orgID, userID string, start time.Time) {
	t.Helper()

	entry := model.TimecardEntry{
		ID:             id,
		OrganizationID: orgID,
		UserID:         userID,
		ClockInTime:    start,
		Status:         model.TimecardStatusClockedIn,
		CreatedAt:      start,
		UpdatedAt:      start,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed timecard entry %s: %v", id, err)
	}
}
