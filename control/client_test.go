package control_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hathora/fleetsdk/control"
	"github.com/hathora/fleetsdk/controltest"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestReadyServer_Success(t *testing.T) {
	fake := controltest.New(controltest.Script{ReadyStatus: http.StatusOK})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan struct{})

	c.ReadyServer(context.Background(), 12345, "alloc-1", func() { close(done) }, func(f *control.FailureDetail) {
		t.Fatalf("unexpected failure: %v", f)
	})

	waitFor(t, done)
	require.Len(t, fake.Requests(), 1)
	assert.Equal(t, "/v1/ready", fake.Requests()[0].URL.Path)
}

func TestReadyServer_ErrorBodyDecoded(t *testing.T) {
	fake := controltest.New(controltest.Script{
		ReadyStatus: http.StatusBadRequest,
		ReadyBody:   map[string]any{"status": 400, "title": "Invalid Allocation ID", "detail": "no allocation"},
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan *control.FailureDetail, 1)

	c.ReadyServer(context.Background(), 1, "", func() { t.Fatal("unexpected success") }, func(f *control.FailureDetail) { done <- f })

	select {
	case f := <-done:
		assert.Equal(t, 400, f.Status)
		assert.Equal(t, "Invalid Allocation ID", f.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestReadyServer_UndecodableErrorBodySynthesizes500(t *testing.T) {
	fake := controltest.New(controltest.Script{
		ReadyStatus: http.StatusInternalServerError,
		ReadyBody:   "not json",
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan *control.FailureDetail, 1)

	c.ReadyServer(context.Background(), 1, "a", func() { t.Fatal("unexpected success") }, func(f *control.FailureDetail) { done <- f })

	select {
	case f := <-done:
		assert.Equal(t, 500, f.Status)
		assert.Equal(t, "deserialization failed", f.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestUnreadyServer_Success(t *testing.T) {
	fake := controltest.New(controltest.Script{UnreadyStatus: http.StatusOK})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan struct{})
	c.UnreadyServer(context.Background(), 1, func() { close(done) }, func(f *control.FailureDetail) {
		t.Fatalf("unexpected failure: %v", f)
	})
	waitFor(t, done)
}

func TestGetPayloadAllocation_ReturnsRawBody(t *testing.T) {
	fake := controltest.New(controltest.Script{
		PayloadAllocationStatus: http.StatusOK,
		PayloadAllocationBody:   `{"matchId":"m-1"}`,
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan string, 1)
	c.GetPayloadAllocation(context.Background(), "alloc-1", func(body string) { done <- body }, func(f *control.FailureDetail) {
		t.Fatalf("unexpected failure: %v", f)
	})

	select {
	case body := <-done:
		assert.JSONEq(t, `{"matchId":"m-1"}`, body)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestGetPayloadAllocation_ErrorBodyDecoded(t *testing.T) {
	fake := controltest.New(controltest.Script{
		PayloadAllocationStatus: http.StatusNotFound,
		PayloadAllocationBody:   map[string]any{"status": 404, "errorMessage": "allocation not found"},
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan *control.FailureDetail, 1)
	c.GetPayloadAllocation(context.Background(), "missing", func(string) { t.Fatal("unexpected success") }, func(f *control.FailureDetail) { done <- f })

	select {
	case f := <-done:
		assert.Equal(t, 404, f.Status)
		assert.Equal(t, "allocation not found", f.Detail)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestGetPayloadToken_Success(t *testing.T) {
	fake := controltest.New(controltest.Script{
		PayloadTokenStatus: http.StatusOK,
		PayloadTokenBody:   map[string]any{"token": "tok-123"},
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan string, 1)
	c.GetPayloadToken(context.Background(), func(token string) { done <- token }, func(f *control.FailureDetail) {
		t.Fatalf("unexpected failure: %v", f)
	})

	select {
	case token := <-done:
		assert.Equal(t, "tok-123", token)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestGetPayloadToken_ErrorFieldTreatedAsFailure(t *testing.T) {
	fake := controltest.New(controltest.Script{
		PayloadTokenStatus: http.StatusOK,
		PayloadTokenBody:   map[string]any{"error": "no allocation"},
	})
	defer fake.Close()

	c := control.New(fake.URL)
	done := make(chan *control.FailureDetail, 1)
	c.GetPayloadToken(context.Background(), func(string) { t.Fatal("unexpected success") }, func(f *control.FailureDetail) { done <- f })

	select {
	case f := <-done:
		assert.Equal(t, "no allocation", f.Detail)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
