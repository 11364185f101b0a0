package airtable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-enricher/internal/retry"
)

var testPolicy = retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("AIRTABLE_API_KEY", "")

	_, err := NewClient(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AIRTABLE_API_KEY")
}

func TestUpdateDescription(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Options{
		APIKey:  "key-123",
		BaseURL: server.URL,
		BaseID:  "appTest",
		TableID: "tblTest",
		Policy:  &testPolicy,
	})
	require.NoError(t, err)

	err = client.UpdateDescription(context.Background(), "recABC", "- New bio")
	require.NoError(t, err)

	assert.Equal(t, "/v0/appTest/tblTest/recABC", gotPath)
	assert.Equal(t, "Bearer key-123", gotAuth)

	var req updateRequest
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "- New bio", req.Fields["Description"])
}

func TestUpdateDescription_EmptyRecordSkips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty record id")
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL, Policy: &testPolicy})
	require.NoError(t, err)

	assert.NoError(t, client.UpdateDescription(context.Background(), "", "text"))
}

func TestUpdateDescription_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL, Policy: &testPolicy})
	require.NoError(t, err)

	err = client.UpdateDescription(context.Background(), "recABC", "text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUpdateDescription_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL, Policy: &testPolicy})
	require.NoError(t, err)

	err = client.UpdateDescription(context.Background(), "recABC", "text")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, err.Error(), "status 422")
}
