package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/source"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Owner: "owner-1"})
	require.NoError(t, err)
	// Keep retry backoff out of test runtime.
	client.retryOpts = service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	return client
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "valid", cfg: Config{BaseURL: "https://api.example.com", Owner: "o"}},
		{name: "missing base url", cfg: Config{Owner: "o"}, wantErr: common.ErrMissingConfig},
		{name: "bad scheme", cfg: Config{BaseURL: "ftp://x", Owner: "o"}, wantErr: common.ErrInvalidConfig},
		{name: "missing owner", cfg: Config{BaseURL: "https://api.example.com"}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListExpenses_PathAndPagination(t *testing.T) {
	var gotPath, gotOffset, gotCount string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOffset = r.URL.Query().Get("offset")
		gotCount = r.URL.Query().Get("count")
		_ = json.NewEncoder(w).Encode([]source.ManualRecord{{ID: "1", Label: "Rent"}})
	}))

	records, err := client.ListExpenses(context.Background(), 50, 25)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Rent", records[0].Label)

	assert.Equal(t, "/owners/owner-1/expenses", gotPath)
	assert.Equal(t, "50", gotOffset)
	assert.Equal(t, "25", gotCount)
}

func TestListMessages_DecodesRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/owners/owner-1/messages", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]source.MessageRecord{{ID: "m1", Type: "payment_sent"}})
	}))

	records, err := client.ListMessages(context.Background(), 0, 25)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].ID)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode([]source.ManualRecord{})
	}))

	_, err := client.ListExpenses(context.Background(), 0, 25)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.ListExpenses(context.Background(), 0, 25)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestInsertExpenses_BatchEndpoint(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/owners/owner-1/expenses/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var recs []source.ManualRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&recs))
		for i := range recs {
			recs[i].ID = "srv" + recs[i].Label
		}
		_ = json.NewEncoder(w).Encode(recs)
	}))

	stored, err := client.InsertExpenses(context.Background(), []source.ManualRecord{
		{Label: "a"}, {Label: "b"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "srva", stored[0].ID)
	assert.Equal(t, "srvb", stored[1].ID)
}

func TestDeleteExpense_EscapesID(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		assert.Equal(t, http.MethodDelete, r.Method)
	}))

	require.NoError(t, client.DeleteExpense(context.Background(), "id/with/slashes"))
	assert.Equal(t, "/owners/owner-1/expenses/id%2Fwith%2Fslashes", gotPath)
}

func TestGetCredential_MissingIsEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	credential, err := client.GetCredential(context.Background())
	require.NoError(t, err)
	assert.Empty(t, credential)
}

func TestCredentialRoundTrip(t *testing.T) {
	var stored string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/owners/owner-1/settings/ocr-credential", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			var payload credentialPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			stored = payload.Value
		case http.MethodGet:
			if stored == "" {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode(credentialPayload{Value: stored})
		case http.MethodDelete:
			if stored == "" {
				http.NotFound(w, r)
				return
			}
			stored = ""
		}
	}))
	ctx := context.Background()

	require.NoError(t, client.SetCredential(ctx, "secret"))
	credential, err := client.GetCredential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", credential)

	require.NoError(t, client.ClearCredential(ctx))
	// Clearing again hits the 404 path and still succeeds.
	require.NoError(t, client.ClearCredential(ctx))
}
