package skipengine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOutput = `{
	"Output": {
		"Identity": {
			"Phones": {
				"Phone":  {"Phone": "704-555-1234"},
				"Phone2": {"Phone": 7045555678},
				"Phone4": {"Phone": null}
			}
		},
		"Property": {
			"CurrentDeed": {"MortgageAmount": 120000, "EquityPercentage": "55", "LoanToValue": 45.5},
			"Tax": {"TaxDelinquentYear": ""},
			"PropertyUseInfo": {"YearBuilt": 1987},
			"PropertyDetails": {"Foreclosure": "N", "PreForeclosure": "Y", "BankOwned": "Y", "Auction": "N"},
			"SaleInfo": {"AssessorLastSaleDate": "2004-06-01T00:00:00", "AssessorLastSaleAmount": 210000},
			"PropertySize": {"LivingSqFt": 2100, "AreaLotAcres": 0.3456, "ParkingGarage": "Y"},
			"Pool": {"Pool": "N"},
			"IntRoomInfo": {"BathCount": "2.0", "BathPartialCount": 1, "BedroomsCount": 4, "StoriesCount": 2},
			"EstimatedValue": {"EstimatedValue": 385000}
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func TestLookup_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/service", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, Request{FName: "JOHN", LName: "SMITH", Address1: "123 Main St", City: "Charlotte", State: "NC", Zip: "28202"}, req)

		_, _ = io.WriteString(w, sampleOutput)
	})

	out, err := c.Lookup(context.Background(), Request{
		FName: "JOHN", LName: "SMITH", Address1: "123 Main St", City: "Charlotte", State: "NC", Zip: "28202",
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, []string{"704-555-1234", "7045555678", "", "", ""}, out.Identity.Phones.Slots())
	assert.Equal(t, "120000", out.Property.CurrentDeed.MortgageAmount.String())
	assert.Equal(t, "45.5", out.Property.CurrentDeed.LoanToValue.String())
	assert.Equal(t, "1987", out.Property.PropertyUseInfo.YearBuilt.String())
	assert.Equal(t, "Y", out.Property.PropertyDetails.PreForeclosure.String())
	assert.Equal(t, "0.3456", out.Property.PropertySize.AreaLotAcres.String())
	assert.Equal(t, "2.0", out.Property.IntRoomInfo.BathCount.String())
	assert.Equal(t, "385000", out.Property.EstimatedValue.EstimatedValue.String())
}

func TestLookup_NoOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"Output": null}`)
	})

	out, err := c.Lookup(context.Background(), Request{FName: "A", LName: "B"})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestLookup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"bad key"}`, wantErr: "unexpected status 401"},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`, wantErr: "unexpected status 500"},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: "unmarshal response"},
		{name: "bad field type", status: http.StatusOK, body: `{"Output":{"Tax":{"TaxDelinquentYear":[1]}}}`, wantErr: "unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Lookup(context.Background(), Request{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestText_Unmarshal(t *testing.T) {
	var v struct {
		A, B, C, D Text
	}
	require.NoError(t, json.Unmarshal([]byte(`{"A":"x","B":12.5,"C":true,"D":null}`), &v))
	assert.Equal(t, Text("x"), v.A)
	assert.Equal(t, Text("12.5"), v.B)
	assert.Equal(t, Text("true"), v.C)
	assert.Equal(t, Text(""), v.D)
}

func TestPhones_SlotsNil(t *testing.T) {
	var p *Phones
	assert.Nil(t, p.Slots())
}
