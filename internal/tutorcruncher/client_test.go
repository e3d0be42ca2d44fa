package tutorcruncher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return New(&Config{
		BaseURL:     url,
		Token:       "secret",
		Enabled:     true,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	})
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.Validate(), "disabled config is not validated")

	c.Enabled = true
	assert.Error(t, c.Validate(), "token is required")

	c.Token = "t"
	assert.NoError(t, c.Validate())

	c.BaseURL = "not a url"
	assert.Error(t, c.Validate())
}

func TestFetchAllPages(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"next":"%s/services/?page=2","results":[{"id":1},{"id":2}]}`, srv.URL)
		case "2":
			fmt.Fprint(w, `{"next":null,"results":[{"id":3}]}`)
		}
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).FetchAllPages(context.Background(), "/services/")
	require.NoError(t, err)
	require.Len(t, res, 3)
	id, ok := RecordId(res[2])
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestFetchAllPages_UnexpectedFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"detail":"nope"}`)
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).FetchAllPages(context.Background(), "/tenders/")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestFetchAllPages_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchAllPages(context.Background(), "/clients/")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestFetchInstance_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "/appointments/7/", r.URL.Path)
		fmt.Fprint(w, `{"id":7}`)
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).FetchInstance(context.Background(), "/appointments/", 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(raw))
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchInstance_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchInstance(context.Background(), "/appointments/", 7)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchInstance_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchInstance(context.Background(), "/clients/", 1)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchAllDetailed_SkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clients/":
			fmt.Fprint(w, `{"next":null,"results":[{"id":1},{"id":2},{"name":"no id"}]}`)
		case "/clients/1/":
			fmt.Fprint(w, `{"id":1,"first_name":"Ada"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).FetchAllDetailed(context.Background(), "/clients/")
	require.NoError(t, err)
	require.Len(t, res, 1)
	c, err := DecodeClient(res[0])
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.FirstName)
}

func TestRecordId(t *testing.T) {
	for name, tc := range map[string]struct {
		raw string
		id  int
		ok  bool
	}{
		"id":              {`{"id":5}`, 5, true},
		"string id":       {`{"id":"6"}`, 6, true},
		"url":             {`{"url":"https://x/api/recipients/9/"}`, 9, true},
		"appointment url": {`{"appointment":{"url":"https://x/api/appointments/11/"}}`, 11, true},
		"nothing":         {`{"name":"x"}`, 0, false},
		"not an object":   {`[1]`, 0, false},
	} {
		t.Run(name, func(t *testing.T) {
			id, ok := RecordId(json.RawMessage(tc.raw))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.id, id)
		})
	}
}

func TestDecodeAppointment(t *testing.T) {
	raw := `{
		"id": 12,
		"start": "2024-03-05T10:00:00Z",
		"finish": "not a date",
		"units": "1.5",
		"status": "complete",
		"service": {"id": 3, "name": "Maths", "dft_charge_rate": "40.00", "dft_contractor_rate": 25},
		"rcras": [{"recipient": 8, "paying_client": 80, "charge_rate": "abc"}, "junk", null],
		"cjas": [{"contractor": 2, "pay_rate": "20.50"}]
	}`
	a, err := DecodeAppointment(json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, 12, a.Id)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), a.Start.UTC())
	assert.True(t, a.Finish.IsZero())
	assert.Equal(t, "Maths", a.Service.Name)
	assert.Equal(t, "40", a.Service.DefaultChargeRate.Decimal.String())
	assert.Equal(t, "25", a.Service.DefaultContractorRate.Decimal.String())

	require.Len(t, a.Rcras, 1)
	assert.False(t, a.Rcras[0].ChargeRate.Valid)
	require.Len(t, a.Cjas, 1)
	assert.Equal(t, "20.5", a.Cjas[0].PayRate.Decimal.String())

	links := a.RecipientAppointments()
	require.Len(t, links, 1)
	assert.Equal(t, 12, links[0].Appointment)
	assert.Equal(t, 80, links[0].PayingClient)
}

func TestDecodeAdHocCharge(t *testing.T) {
	c, err := DecodeAdHocCharge(json.RawMessage(`{
		"id": 4, "date_occurred": "2024-01-10T09:00:00Z",
		"client_cost": "100.00", "pay_contractor": null, "client": {"id": 77}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 77, c.ClientId)
	assert.True(t, c.ClientCost.Valid)
	assert.False(t, c.PayContractor.Valid)
	assert.Equal(t, "100", c.Net().String())
}

func TestDecodeReport(t *testing.T) {
	r, err := DecodeReport(json.RawMessage(`{
		"appointment": {"url": "https://x/api/appointments/31/"},
		"extra_attrs": [
			{"machine_name": "client_report", "value": "Great lesson"},
			{"machine_name": "student_engagement", "value": "4"},
			{"machine_name": "progress_score", "value": 5}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 31, r.Id)
	assert.Equal(t, 31, r.AppointmentId)
	assert.Equal(t, "Great lesson", r.SessionReport)
	assert.Equal(t, "4", r.AttitudeRating)
	assert.Equal(t, "5", r.ProgressRating)
}
