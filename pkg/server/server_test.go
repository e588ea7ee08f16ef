package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/query"
	"github.com/transport-authority/vehicle-registry/pkg/registration"
	"github.com/transport-authority/vehicle-registry/pkg/transfer"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single pooled connection keeps the in-memory database shared across
	// concurrent requests.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&owner.Owner{}, &vehicle.Vehicle{}, &plate.Plate{},
		&ownership.Record{}, &audit.Event{},
	))

	owners := owner.NewStore(db)
	vehicles := vehicle.NewStore(db)
	plates := plate.NewStore(db)
	ledger := ownership.NewStore(db)
	audits := audit.NewStore(db)

	reg := registration.NewService(db, vehicles, owners, plates, ledger,
		registration.WithAuditStore(audits))
	coordinator := transfer.NewCoordinator(db, vehicles, owners, plates, ledger,
		transfer.WithAuditStore(audits))
	queries := query.NewService(db, vehicles, owners, plates, ledger)

	srv := New(db, owners, vehicles, plates, ledger, reg, coordinator, queries, audits, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createOwner(t *testing.T, baseURL, suffix string) string {
	t.Helper()
	var created struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, baseURL+"/api/v1/owners", map[string]any{
		"firstName":   "Owner",
		"lastName":    suffix,
		"email":       "owner" + suffix + "@example.com",
		"phoneNumber": "078800000" + suffix,
		"nationalId":  "119908000000" + suffix,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.ID)
	return created.ID
}

func registerVehicle(t *testing.T, baseURL, ownerID, chassis, plateNumber string) string {
	t.Helper()
	var created struct {
		Vehicle struct {
			ID string `json:"id"`
		} `json:"vehicle"`
	}
	resp := doJSON(t, http.MethodPost, baseURL+"/api/v1/vehicles", map[string]any{
		"chassisNumber":    chassis,
		"modelName":        "Corolla",
		"manufacturedYear": 2020,
		"price":            5000000,
		"ownerId":          ownerID,
		"plateNumber":      plateNumber,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.Vehicle.ID)
	return created.Vehicle.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var resp map[string]string
	r := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "ok", resp["status"])
}

func TestRegisterTransferAndHistoryFlow(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	b := createOwner(t, ts.URL, "2")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	// Transfer ownership from A to B.
	var result struct {
		FromOwnerID    string `json:"fromOwnerId"`
		ToOwnerID      string `json:"toOwnerId"`
		OldPlateNumber string `json:"oldPlateNumber"`
		NewPlateNumber string `json:"newPlateNumber"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/ownership/transfers", map[string]any{
		"vehicleId":      vehicleID,
		"currentOwnerId": a,
		"newOwnerId":     b,
		"transferAmount": 4500000,
		"newPlateNumber": "RAB 002 B",
	}, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, a, result.FromOwnerID)
	assert.Equal(t, b, result.ToOwnerID)
	assert.Equal(t, "RAA 001 A", result.OldPlateNumber)
	assert.Equal(t, "RAB 002 B", result.NewPlateNumber)

	// The vehicle view reflects the new owner and plate.
	var state struct {
		CurrentPlate struct {
			PlateNumber string `json:"plateNumber"`
		} `json:"currentPlate"`
		CurrentOwner struct {
			ID string `json:"id"`
		} `json:"currentOwner"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vehicles/"+vehicleID, nil, &state)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RAB 002 B", state.CurrentPlate.PlateNumber)
	assert.Equal(t, b, state.CurrentOwner.ID)

	// History is available through all three lookups.
	for _, path := range []string{
		"/api/v1/ownership/history/by-vehicle/" + vehicleID,
		"/api/v1/ownership/history/by-chassis?chassisNumber=CH-001",
		"/api/v1/ownership/history/by-plate?plateNumber=RAA+001+A",
	} {
		var history []struct {
			Owner struct {
				ID string `json:"id"`
			} `json:"owner"`
			EndDate *string `json:"endDate"`
		}
		resp = doJSON(t, http.MethodGet, ts.URL+path, nil, &history)
		require.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
		require.Len(t, history, 2, "path %s", path)
		assert.Equal(t, b, history[0].Owner.ID)
		assert.Nil(t, history[0].EndDate)
		assert.Equal(t, a, history[1].Owner.ID)
		assert.NotNil(t, history[1].EndDate)
	}

	// The audit trail recorded registration and transfer.
	var events []struct {
		EventType string `json:"eventType"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/audit/by-vehicle/"+vehicleID, nil, &events)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, events, 2)
}

func TestTransfer_ErrorStatuses(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	b := createOwner(t, ts.URL, "2")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			"declared owner mismatch",
			map[string]any{
				"vehicleId": vehicleID, "currentOwnerId": b, "newOwnerId": a,
				"transferAmount": 1, "newPlateNumber": "RAB 002 B",
			},
			http.StatusUnprocessableEntity,
		},
		{
			"self transfer",
			map[string]any{
				"vehicleId": vehicleID, "currentOwnerId": a, "newOwnerId": a,
				"transferAmount": 1, "newPlateNumber": "RAB 002 B",
			},
			http.StatusUnprocessableEntity,
		},
		{
			"unknown vehicle",
			map[string]any{
				"vehicleId": "missing", "currentOwnerId": a, "newOwnerId": b,
				"transferAmount": 1, "newPlateNumber": "RAB 002 B",
			},
			http.StatusNotFound,
		},
		{
			"missing amount",
			map[string]any{
				"vehicleId": vehicleID, "currentOwnerId": a, "newOwnerId": b,
				"newPlateNumber": "RAB 002 B",
			},
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/ownership/transfers", tt.body, &errResp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestRegisterVehicle_DuplicateChassis(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/vehicles", map[string]any{
		"chassisNumber":    "CH-001",
		"modelName":        "Civic",
		"manufacturedYear": 2021,
		"price":            1000,
		"ownerId":          a,
		"plateNumber":      "RAB 002 B",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPlateLifecycleEndpoints(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	// Find the issued plate through the owner listing.
	var plates []struct {
		ID          string `json:"id"`
		PlateNumber string `json:"plateNumber"`
		Status      string `json:"status"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/plates/by-owner/"+a, nil, &plates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, plates, 1)
	assert.Equal(t, "IN_USE", plates[0].Status)
	plateID := plates[0].ID

	// Issue a replacement plate; the old one is released automatically.
	var issued struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/plates", map[string]any{
		"plateNumber": "RAB 002 B",
		"ownerId":     a,
		"vehicleId":   vehicleID,
	}, &issued)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "IN_USE", issued.Status)

	var old struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/plates/"+plateID, nil, &old)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TRANSFERRED_OUT", old.Status)

	// Admin status change honors the state machine.
	var updated struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/v1/plates/"+plateID+"/status",
		map[string]any{"status": "AVAILABLE"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AVAILABLE", updated.Status)

	// RETIRED is terminal.
	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/v1/plates/"+plateID+"/status",
		map[string]any{"status": "RETIRED"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPatch, ts.URL+"/api/v1/plates/"+plateID+"/status",
		map[string]any{"status": "IN_USE"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestIssuePlate_RejectsNonOwner(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	b := createOwner(t, ts.URL, "2")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	// B holds no ownership record for the vehicle; issuing a plate to B
	// must fail and leave A's plate untouched.
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/plates", map[string]any{
		"plateNumber": "RAB 002 B",
		"ownerId":     b,
		"vehicleId":   vehicleID,
	}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation", errResp.Code)

	var plates []struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/plates/by-owner/"+a, nil, &plates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, plates, 1)
	assert.Equal(t, "IN_USE", plates[0].Status)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/plates/by-owner/"+b, nil, &plates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, plates)
}

func TestDeleteVehicle(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/v1/vehicles/"+vehicleID, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The vehicle is gone from normal lookups.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vehicles/"+vehicleID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Its plate was force-retired.
	var plates []struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/plates/by-owner/"+a, nil, &plates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, plates, 1)
	assert.Equal(t, "RETIRED", plates[0].Status)

	// Deleting again is a 404.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/vehicles/"+vehicleID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The chassis number stays burned.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/vehicles", map[string]any{
		"chassisNumber":    "CH-001",
		"modelName":        "Corolla",
		"manufacturedYear": 2020,
		"price":            1,
		"ownerId":          a,
		"plateNumber":      "RAC 003 C",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestBadRequestBodies(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/owners", "/api/v1/vehicles", "/api/v1/ownership/transfers", "/api/v1/plates"} {
		req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "path %s", path)
	}
}

func TestHistoryQueryParamRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/ownership/history/by-chassis",
		"/api/v1/ownership/history/by-plate",
	} {
		resp := doJSON(t, http.MethodGet, ts.URL+path, nil, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "path %s", path)
	}
}

func TestGetOwner(t *testing.T) {
	ts := newTestServer(t)
	a := createOwner(t, ts.URL, "1")

	var got struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/owners/"+a, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, a, got.ID)
	assert.Equal(t, "owner1@example.com", got.Email)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/owners/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDuplicateOwnerIdentity(t *testing.T) {
	ts := newTestServer(t)
	createOwner(t, ts.URL, "1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/owners", map[string]any{
		"firstName":   "Other",
		"lastName":    "Person",
		"email":       "owner1@example.com",
		"phoneNumber": "0788000001",
		"nationalId":  "1199080000001",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestConcurrentTransfersSerialize(t *testing.T) {
	ts := newTestServer(t)

	a := createOwner(t, ts.URL, "1")
	b := createOwner(t, ts.URL, "2")
	c := createOwner(t, ts.URL, "3")
	vehicleID := registerVehicle(t, ts.URL, a, "CH-001", "RAA 001 A")

	// Two buyers race for the same vehicle. Whatever the interleaving, at
	// most one transfer succeeds and the registry stays consistent.
	type outcome struct{ status int }
	results := make(chan outcome, 2)
	for i, buyer := range []string{b, c} {
		go func(i int, buyer string) {
			data, _ := json.Marshal(map[string]any{
				"vehicleId":      vehicleID,
				"currentOwnerId": a,
				"newOwnerId":     buyer,
				"transferAmount": 4500000,
				"newPlateNumber": fmt.Sprintf("RAB 00%d B", i+2),
			})
			resp, err := http.Post(ts.URL+"/api/v1/ownership/transfers", "application/json", bytes.NewReader(data))
			if err != nil {
				results <- outcome{status: 0}
				return
			}
			resp.Body.Close()
			results <- outcome{status: resp.StatusCode}
		}(i, buyer)
	}

	succeeded := 0
	for i := 0; i < 2; i++ {
		r := <-results
		if r.status == http.StatusOK {
			succeeded++
		}
	}
	assert.LessOrEqual(t, succeeded, 1)

	// Exactly one open ownership record and one active plate remain.
	var history []struct {
		EndDate *string `json:"endDate"`
	}
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/ownership/history/by-vehicle/"+vehicleID, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	open := 0
	for _, r := range history {
		if r.EndDate == nil {
			open++
		}
	}
	assert.Equal(t, 1, open)
}
