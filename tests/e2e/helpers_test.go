//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"messages-service/internal/domain"
)

// response is a decoded API response
type response struct {
	Status int
	Body   []byte
}

// do sends a request with an optional JSON body
func do(t *testing.T, method, path string, body any) response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := testClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return response{Status: resp.StatusCode, Body: data}
}

func decode[T any](t *testing.T, r response) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("failed to decode %s: %v", string(r.Body), err)
	}
	return out
}

func createMessage(t *testing.T, text string) *domain.Message {
	t.Helper()
	r := do(t, http.MethodPost, "/messages", map[string]string{"message_text": text})
	if r.Status != http.StatusCreated {
		t.Fatalf("create failed with status %d: %s", r.Status, string(r.Body))
	}
	msg := decode[domain.Message](t, r)
	return &msg
}

func messagePath(id int64) string {
	return fmt.Sprintf("/messages/%d", id)
}
