/*
handlers_test.go - HTTP tests for the campground API

Tests for:
- Availability verdicts (200 with the verdict, never an error status)
- Booking submission and validation errors
- Reservation moves, status changes and archive
- Blackout placement and removal
- Error kind to status mapping
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
	"github.com/warp/campsite-engine/store/sqlite"
)

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger, _ := test.NewNullLogger()
	engine := campground.NewEngine(store, campground.WithLogger(logger))
	h := NewHandler(engine, logger)
	h.now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }
	return h, NewRouter(h, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"`+id+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// =============================================================================
// AVAILABILITY
// =============================================================================

func TestAvailability_BackToBack(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	// GIVEN: S1 is confirmed July 1-4
	// WHEN: Asking for S1 from the 4th
	rec := do(t, router, http.MethodGet, "/api/availability?checkIn=2025-07-04&checkOut=2025-07-06&guests=2&siteId=S1", "")

	// THEN: It is available and quoted for two nights
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AvailabilityResponse](t, rec)
	assert.True(t, resp.Available)
	assert.Equal(t, "S1", resp.RecommendedSiteID)
	assert.Equal(t, 2, resp.Nights)
	require.Len(t, resp.EligibleSites, 1)
	assert.Equal(t, "96", resp.EligibleSites[0].EstimatedTotal.String())
}

func TestAvailability_Overlap(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodGet, "/api/availability?checkIn=2025-07-03&checkOut=2025-07-05&guests=2&siteId=S1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AvailabilityResponse](t, rec)
	assert.False(t, resp.Available)
	assert.Equal(t, string(generic.KindConflict), resp.Kind)
	assert.Empty(t, resp.RecommendedSiteID)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "R-1001", resp.Conflicts[0].ID)
	assert.Equal(t, "Alice Walker", resp.Conflicts[0].Label)
}

func TestAvailability_WinterClosure(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "winter-closure")

	rec := do(t, router, http.MethodGet, "/api/availability?checkIn=2025-12-22&checkOut=2025-12-24&guests=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AvailabilityResponse](t, rec)
	assert.False(t, resp.Available)
	assert.Contains(t, resp.Message, "Winter closure")
}

func TestAvailability_FullParty(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "full-party")

	eight := decode[AvailabilityResponse](t, do(t, router, http.MethodGet, "/api/availability?checkIn=2025-08-08&checkOut=2025-08-10&guests=8", ""))
	seven := decode[AvailabilityResponse](t, do(t, router, http.MethodGet, "/api/availability?checkIn=2025-08-08&checkOut=2025-08-10&guests=7", ""))

	assert.Equal(t, string(generic.KindCapacityExceeded), eight.Kind)
	assert.Equal(t, "No site can accommodate a party of 8", eight.Message)
	assert.Equal(t, string(generic.KindConflict), seven.Kind, "C2 holds seven but is booked")
}

func TestAvailability_BadParams(t *testing.T) {
	_, router := setupTestHandler(t)

	cases := []string{
		"/api/availability?checkOut=2025-07-06",
		"/api/availability?checkIn=07/04/2025&checkOut=2025-07-06",
		"/api/availability?checkIn=2025-07-04&checkOut=2025-07-06&guests=two",
		"/api/availability?checkIn=2025-07-04&checkOut=2025-07-06&guests=0",
		"/api/availability?checkIn=2025-07-04&checkOut=2025-07-06&type=yurt",
	}
	for _, path := range cases {
		rec := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestAvailability_InvalidRangeIsAVerdict(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodGet, "/api/availability?checkIn=2025-07-06&checkOut=2025-07-04", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AvailabilityResponse](t, rec)
	assert.Equal(t, string(generic.KindInvalidRange), resp.Kind)
	assert.Empty(t, resp.EligibleSites)
}

// =============================================================================
// BOOKINGS
// =============================================================================

func TestCreateBooking(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/bookings", `{
		"check_in": "2025-08-01",
		"check_out": "2025-08-03",
		"adults": 2,
		"camping_unit": "Motorhome",
		"vehicle_length": 30,
		"guest": {"first_name": "Ivy", "last_name": "Nguyen", "email": "ivy@example.com"}
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[BookingResponse](t, rec)
	assert.Equal(t, "S1", resp.Reservation.SiteID)
	assert.Equal(t, "pending", resp.Reservation.Status)
	assert.Equal(t, 2, resp.Reservation.Nights)
	assert.Equal(t, "96", resp.Reservation.Total.String())
	assert.Equal(t, "S1", resp.Site.Code)
	assert.Empty(t, resp.PaymentReference)
}

func TestCreateBooking_FormDetails(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	// GIVEN: A booking form with the guest's address and contact preference
	rec := do(t, router, http.MethodPost, "/api/bookings", `{
		"check_in": "2025-08-01",
		"check_out": "2025-08-03",
		"adults": 2,
		"camping_unit": "5th Wheel",
		"vehicle_length": 34,
		"vehicle_year": 2018,
		"guest": {
			"first_name": "Ivy",
			"last_name": "Nguyen",
			"email": "ivy@example.com",
			"phone": "555-0101",
			"address1": "4 Pine St",
			"city": "Bemidji",
			"postal_code": "56601",
			"contact_method": "Either"
		}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[BookingResponse](t, rec)

	// WHEN: The reservation is fetched back
	rec = do(t, router, http.MethodGet, "/api/commitments/"+created.Reservation.ID, "")

	// THEN: Every form field was kept
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[CommitmentDTO](t, rec)
	assert.Equal(t, GuestDTO{
		FirstName:     "Ivy",
		LastName:      "Nguyen",
		Email:         "ivy@example.com",
		Phone:         "555-0101",
		Address1:      "4 Pine St",
		City:          "Bemidji",
		PostalCode:    "56601",
		ContactMethod: "Either",
	}, got.Guest)
	require.NotNil(t, got.VehicleYear)
	assert.Equal(t, 2018, *got.VehicleYear)
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	cases := map[string]string{
		"missing email":   `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":2,"guest":{"first_name":"Ivy","last_name":"Nguyen"}}`,
		"no adults":       `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":0,"guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
		"bad date":        `{"check_in":"Aug 1","check_out":"2025-08-03","adults":2,"guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
		"unknown unit":    `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":2,"camping_unit":"Hovercraft","guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
		"negative total":  `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":2,"total":"-5","guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
		"malformed json":  `{"check_in":`,
		"too many guests": `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":8,"guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
		"contact by fax":  `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":2,"guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com","contact_method":"Fax"}}`,
		"ancient rv":      `{"check_in":"2025-08-01","check_out":"2025-08-03","adults":2,"vehicle_year":1850,"guest":{"first_name":"Ivy","last_name":"Nguyen","email":"ivy@example.com"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/bookings", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodPost, "/api/bookings", cases["missing email"])
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "email is required")
}

func TestCreateBooking_Conflict(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/bookings", `{
		"check_in": "2025-07-02",
		"check_out": "2025-07-03",
		"adults": 2,
		"site_id": "S1",
		"guest": {"first_name": "Ivy", "last_name": "Nguyen", "email": "ivy@example.com"}
	}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, string(generic.KindConflict), resp.Kind)
	assert.Equal(t, "Site S1 is not available for the selected dates", resp.Error)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "R-1001", resp.Conflicts[0].ID)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func TestValidateAndMove_InactiveSite(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "inactive-site")

	// GIVEN: S2 is deactivated
	// WHEN: The calendar asks whether R-4001 can be dropped on S2
	rec := do(t, router, http.MethodPost, "/api/commitments/R-4001/validate",
		`{"site_id":"S2","check_in":"2025-07-10","check_out":"2025-07-13"}`)

	// THEN: The verdict says no, with a 200
	require.Equal(t, http.StatusOK, rec.Code)
	verdict := decode[ValidationResponse](t, rec)
	assert.False(t, verdict.Valid)
	assert.Equal(t, string(generic.KindSiteInactive), verdict.Kind)
	assert.Equal(t, "Site S2 is inactive", verdict.Error)

	// AND: Actually moving it is rejected
	rec = do(t, router, http.MethodPost, "/api/commitments/R-4001/move", `{"site_id":"S2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(generic.KindSiteInactive), decode[ErrorResponse](t, rec).Kind)

	// AND: Moving it to S3 works and keeps its dates
	rec = do(t, router, http.MethodPost, "/api/commitments/R-4001/move", `{"site_id":"S3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[CommitmentDTO](t, rec)
	assert.Equal(t, "S3", moved.SiteID)
	assert.Equal(t, "2025-07-10", moved.CheckIn)
	assert.Equal(t, "2025-07-13", moved.CheckOut)
}

func TestMove_DatesOnly(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/commitments/R-1001/move", `{"check_in":"2025-07-20"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[CommitmentDTO](t, rec)
	assert.Equal(t, "S1", moved.SiteID)
	assert.Equal(t, "2025-07-23", moved.CheckOut)
}

func TestAssign(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/commitments/R-1002/assign", `{"site_id":"S1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/commitments/R-1002/assign", `{"site_id":"S9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/commitments/R-1002/assign", `{"site_id":"unassigned"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[CommitmentDTO](t, rec).SiteID)

	rec = do(t, router, http.MethodPost, "/api/commitments/nope/assign", `{"site_id":"S1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusAndArchive(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/commitments/R-1002/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode[CommitmentDTO](t, rec).Status)

	rec = do(t, router, http.MethodPost, "/api/commitments/R-1003/status", `{"status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "checked_out is final")

	rec = do(t, router, http.MethodPost, "/api/commitments/R-1002/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Reinstating the cancelled R-1004 is fine: R-1001 checks out on its check-in day.
	rec = do(t, router, http.MethodPost, "/api/commitments/R-1004/status", `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/commitments/R-1001/archive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[CommitmentDTO](t, rec).Archived)

	list := decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments", ""))
	assert.Len(t, list, 4)
	list = decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments?include_archived=true", ""))
	assert.Len(t, list, 5)

	rec = do(t, router, http.MethodGet, "/api/commitments/R-1001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[CommitmentDTO](t, rec).Archived)
}

func TestListCommitments_Filters(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	pending := decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments?status=pending", ""))
	require.Len(t, pending, 1)
	assert.Equal(t, "R-1002", pending[0].ID)

	occupying := decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments?status=pending,confirmed,checked_in", ""))
	assert.Len(t, occupying, 3)

	// to is inclusive: the night of the 5th is in the window.
	late := decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments?from=2025-07-05&to=2025-07-05", ""))
	ids := make([]string, 0, len(late))
	for _, c := range late {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"R-1002", "R-1004"}, ids)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/commitments?status=lost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/commitments?from=2025-07-05&to=2025-07-01", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/commitments/nope", "").Code)
}

// =============================================================================
// BLACKOUTS AND CALENDAR
// =============================================================================

func TestBlocks(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	// Over R-1001.
	rec := do(t, router, http.MethodPost, "/api/blocks", `{"site_id":"S1","start_date":"2025-07-02","end_date":"2025-07-02","reason":"Tree removal"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Contains(t, errResp.Error, "Blackout overlaps 1 existing reservation")
	require.Len(t, errResp.Conflicts, 1)

	// A global closure in the new year.
	rec = do(t, router, http.MethodPost, "/api/blocks", `{"start_date":"2026-01-05","end_date":"2026-01-06","reason":"Ice storm"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[BlockDTO](t, rec)
	assert.True(t, created.Global)
	assert.Equal(t, "2026-01-06", created.EndDate)

	// Moved onto the July stays on every site.
	rec = do(t, router, http.MethodPost, "/api/blocks/"+created.ID+"/move", `{"start_date":"2025-07-02","end_date":"2025-07-03"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Moved to S6, which is free.
	rec = do(t, router, http.MethodPost, "/api/blocks/"+created.ID+"/move", `{"site_id":"S6","start_date":"2025-07-02","end_date":"2025-07-03"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[BlockDTO](t, rec)
	assert.Equal(t, "S6", moved.SiteID)
	assert.Equal(t, "Ice storm", moved.Reason)

	blocks := decode[[]BlockDTO](t, do(t, router, http.MethodGet, "/api/blocks", ""))
	assert.Len(t, blocks, 1)

	rec = do(t, router, http.MethodDelete, "/api/blocks/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/blocks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendar(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "winter-closure")

	rec := do(t, router, http.MethodGet, "/api/calendar?from=2025-12-01&to=2025-12-31", "")

	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]CalendarItemDTO](t, rec)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"B-2002", "R-2001", "B-2001"}, []string{items[0].ID, items[1].ID, items[2].ID})

	closure := items[2]
	assert.Equal(t, "blackout", closure.Kind)
	assert.Equal(t, "2025-12-28", closure.End, "calendar items are half-open")
	require.NotNil(t, closure.Blackout)
	assert.Equal(t, "2025-12-27", closure.Blackout.EndDate)
	assert.Equal(t, "2025-12-27", closure.LastDay)
	assert.Equal(t, 8, closure.Blackout.Days)
	assert.Equal(t, "Winter closure", closure.Label)
}

func TestCalendar_DefaultWindowIsTwoWeeks(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	// now is 2025-07-01, so the window is July 1 through July 14.
	items := decode[[]CalendarItemDTO](t, do(t, router, http.MethodGet, "/api/calendar", ""))

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"R-1001", "R-1002", "R-1004", "R-1005"}, ids)
}

func TestCalendar_EmptyIsArray(t *testing.T) {
	_, router := setupTestHandler(t)
	rec := do(t, router, http.MethodGet, "/api/calendar?from=2030-01-01&to=2030-01-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// =============================================================================
// SITES AND HEALTH
// =============================================================================

func TestSites(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "inactive-site")

	sites := decode[[]SiteDTO](t, do(t, router, http.MethodGet, "/api/sites", ""))
	require.Len(t, sites, 8)
	assert.Equal(t, "S1", sites[0].Code)
	require.NotNil(t, sites[1].IsActive)
	assert.False(t, *sites[1].IsActive)

	rec := do(t, router, http.MethodPost, "/api/sites", `{"code":"S7","name":"Overflow","type":"tent","max_guests":3,"nightly_rate":"25.00","sort_order":9}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "S7", decode[SiteDTO](t, rec).ID)

	rec = do(t, router, http.MethodPost, "/api/sites", `{"code":"S8","name":"Bad","type":"yurt","max_guests":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/sites/S7/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *decode[SiteDTO](t, rec).IsActive)

	rec = do(t, router, http.MethodPost, "/api/sites/S99/deactivate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSiteTypes(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodGet, "/api/site-types", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []SiteTypeDTO{
		{ID: "cabin", Label: "Cabin"},
		{ID: "rv", Label: "RV"},
		{ID: "tent", Label: "Tent"},
	}, decode[[]SiteTypeDTO](t, rec))
}

func TestHealth(t *testing.T) {
	_, router := setupTestHandler(t)
	rec := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// =============================================================================
// HELPERS
// =============================================================================

func TestStatusForKind(t *testing.T) {
	cases := map[generic.Kind]int{
		generic.KindInvalid:          http.StatusBadRequest,
		generic.KindInvalidRange:     http.StatusBadRequest,
		generic.KindCapacityExceeded: http.StatusBadRequest,
		generic.KindSiteInactive:     http.StatusBadRequest,
		generic.KindNotFound:         http.StatusNotFound,
		generic.KindSiteNotFound:     http.StatusNotFound,
		generic.KindConflict:         http.StatusConflict,
		generic.KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusForKind(kind), string(kind))
	}
}

func TestWriteEngineError_LogLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	h := NewHandler(nil, logger)

	// GIVEN: A rejected request and a storage failure
	rejected := &campground.MutationError{Kind: generic.KindSiteInactive, Message: "Site S2 is inactive"}
	failed := &campground.MutationError{Kind: generic.KindInternal, Message: "failed to save reservation", Err: errors.New("disk full")}

	// WHEN: Each is written
	rec := httptest.NewRecorder()
	h.writeEngineError(rec, rejected)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)

	rec = httptest.NewRecorder()
	h.writeEngineError(rec, failed)

	// THEN: Only the failure is logged as an error, with its cause in the body
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "disk full", decode[ErrorResponse](t, rec).Details)
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("2025-07-01", "2025-07-14")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", w.Start.String())
	assert.Equal(t, "2025-07-15", w.End.String())

	w, err = parseWindow("2025-07-01", "")
	require.NoError(t, err)
	assert.Equal(t, 366, w.Nights())

	w, err = parseWindow("", "2025-07-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-02", w.End.String())

	_, err = parseWindow("2025-07-02", "2025-07-01")
	assert.Error(t, err)
	_, err = parseWindow("July", "")
	assert.Error(t, err)
}
