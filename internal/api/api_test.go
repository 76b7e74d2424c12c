package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"househunt/server/internal/api"
	"househunt/server/internal/config"
	"househunt/server/internal/models"
	"househunt/server/internal/services"
	"househunt/server/internal/storage"
	"househunt/server/internal/utils"
)

// noopTaskClient swallows thumbnail tasks so the flow test needs no Redis.
type noopTaskClient struct{}

func (noopTaskClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{}, nil
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *apiClient) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.router.ServeHTTP(w, req)
	return w
}

func (c *apiClient) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(c.t, err)
	return c.do("POST", path, data, "application/json")
}

func (c *apiClient) get(path string) *httptest.ResponseRecorder {
	return c.do("GET", path, nil, "")
}

func (c *apiClient) register(name, email, role string) {
	w := c.postJSON("/api/user/register", gin.H{
		"name": name, "email": email, "password": "secret123", "type": role, "phone": "5550001111",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
}

func (c *apiClient) login(email string) {
	w := c.postJSON("/api/user/login", gin.H{"email": email, "password": "secret123"})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(c.t, resp.Token)
	c.token = resp.Token
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// TestRentalFlow walks the whole lifecycle: accounts are created, the admin
// approves the owner, the owner lists a property, a renter requests it, the
// owner confirms, and the property drops out of the bookable pool.
func TestRentalFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := utils.SetupTestDB(t, "househunt_test_api", "users", "properties", "bookings")

	cfg := &config.Config{
		JwtSecret:      "api-test-secret",
		JwtTTL:         time.Hour,
		StorageBackend: "local",
		UploadDir:      t.TempDir(),
	}
	store, err := storage.NewLocalStorage(cfg.UploadDir)
	require.NoError(t, err)

	router := api.SetupRouter(cfg, db, store, noopTaskClient{})

	// The bootstrap admin is seeded outside the API.
	_, err = services.NewUserService(db).Register(context.Background(), services.RegisterInput{
		Name: "Ada Admin", Email: "admin@example.com", Password: "secret123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	admin := &apiClient{t: t, router: router}
	owner := &apiClient{t: t, router: router}
	renter := &apiClient{t: t, router: router}
	rival := &apiClient{t: t, router: router}

	owner.register("Oscar Owner", "oscar@example.com", "Owner")
	renter.register("Rita Renter", "rita@example.com", "Renter")
	rival.register("Remy Renter", "remy@example.com", "Renter")
	admin.login("admin@example.com")
	owner.login("oscar@example.com")
	renter.login("rita@example.com")
	rival.login("remy@example.com")

	// An unapproved owner is held at the gate.
	w := owner.get("/api/owner/getallproperties")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "pending admin approval")

	// A renter can never reach the admin surface.
	w = renter.get("/api/admin/getallusers")
	require.Equal(t, http.StatusForbidden, w.Code)

	// The admin approves the owner.
	var users []models.User
	w = admin.get("/api/admin/getallusers")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &users)
	var ownerID string
	for _, u := range users {
		if u.Email == "oscar@example.com" {
			ownerID = u.ID.Hex()
		}
	}
	require.NotEmpty(t, ownerID)
	w = admin.postJSON("/api/admin/handlestatus", gin.H{"userid": ownerID, "status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The owner lists a property.
	form := &bytes.Buffer{}
	mw := multipart.NewWriter(form)
	require.NoError(t, mw.WriteField("propertyType", "flat"))
	require.NoError(t, mw.WriteField("propertyAdType", "rent"))
	require.NoError(t, mw.WriteField("propertyAddress", "12 Elm St"))
	require.NoError(t, mw.WriteField("propertyAmt", "1200"))
	fw, err := mw.CreateFormFile("propertyImages", "front.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	w = owner.do("POST", "/api/owner/postproperty", form.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The renter finds it in the public catalog.
	var catalog []models.Property
	w = renter.get("/api/user/getallproperties")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &catalog)
	require.Len(t, catalog, 1)
	property := catalog[0]
	assert.Equal(t, models.Available, property.IsAvailable)
	require.Len(t, property.Images, 1)

	// The renter requests a booking; repeating the request is rejected.
	bookingBody := gin.H{"userDetails": gin.H{"fullName": "Rita Renter", "phone": "5559998888"}}
	w = renter.postJSON("/api/user/bookinghandle/"+property.ID.Hex(), bookingBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = renter.postJSON("/api/user/bookinghandle/"+property.ID.Hex(), bookingBody)
	require.Equal(t, http.StatusConflict, w.Code)

	// The owner sees the request and confirms it.
	var ownerBookings []models.Booking
	w = owner.get("/api/owner/getallbookings")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &ownerBookings)
	require.Len(t, ownerBookings, 1)
	booking := ownerBookings[0]
	assert.Equal(t, models.BookingPending, booking.Status)

	w = owner.postJSON("/api/owner/handlebookingstatus", gin.H{
		"bookingId":  booking.ID.Hex(),
		"propertyId": property.ID.Hex(),
		"status":     "booked",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The confirmed property is out of the bookable pool.
	w = rival.postJSON("/api/user/bookinghandle/"+property.ID.Hex(), gin.H{
		"userDetails": gin.H{"fullName": "Remy Renter", "phone": "5557776666"},
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already booked")

	// The renter sees the confirmed status.
	var myBookings []models.Booking
	w = renter.get("/api/user/getallbookings")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &myBookings)
	require.Len(t, myBookings, 1)
	assert.Equal(t, models.BookingBooked, myBookings[0].Status)

	// Admin oversight sees everything.
	var allBookings []models.Booking
	w = admin.get("/api/admin/getallbookings")
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &allBookings)
	assert.Len(t, allBookings, 1)

	// Deleting the property takes its bookings with it.
	w = owner.do("DELETE", "/api/owner/deleteproperty/"+property.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = renter.get("/api/user/getallbookings")
	require.Equal(t, http.StatusOK, w.Code)
	myBookings = nil
	decodeData(t, w, &myBookings)
	assert.Empty(t, myBookings)
}
