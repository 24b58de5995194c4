package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
	"github.com/sirupsen/logrus"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv := httptest.NewServer(newServer(logger, 1<<20).routes())
	t.Cleanup(srv.Close)
	return srv
}

func postTool(t *testing.T, srv *httptest.Server, body string) (*http.Response, gocas.ToolResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out gocas.ToolResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp, out
}

func TestToolEndpointSimplify(t *testing.T) {
	srv := testServer(t)
	body := `{"tool":"simplify","params":{"expr":{"type":"add","terms":[
		{"type":"sym","name":"x"},{"type":"sym","name":"x"}]}}}`
	resp, out := postTool(t, srv, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if out.Error != "" {
		t.Fatalf("unexpected error: %s", out.Error)
	}
	if out.String != "2*x" {
		t.Errorf("want 2*x, got %s", out.String)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("want a request id header")
	}
}

func TestToolEndpointEchoesRequestID(t *testing.T) {
	srv := testServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/tool",
		strings.NewReader(`{"tool":"cache_stats","params":{}}`))
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("want abc-123, got %q", got)
	}
}

func TestToolEndpointRejectsBadJSON(t *testing.T) {
	srv := testServer(t)
	cases := []string{
		`{"tool":`,
		`{"tool":"simplify","params":{},"extra":1}`,
		`{"tool":"simplify","params":{}} {}`,
	}
	for _, body := range cases {
		resp, _ := postTool(t, srv, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: want 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestToolEndpointMethod(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/tool")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", resp.StatusCode)
	}
}

func TestToolEndpointReportsToolErrors(t *testing.T) {
	srv := testServer(t)
	_, out := postTool(t, srv, `{"tool":"no_such_tool","params":{}}`)
	if !strings.Contains(out.Error, "unknown tool") {
		t.Errorf("want unknown tool error, got %q", out.Error)
	}
}

func TestSchemaAndHealth(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/schema")
	if err != nil {
		t.Fatal(err)
	}
	var schema struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	err = json.NewDecoder(resp.Body).Decode(&schema)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Tools) != len(gocas.ToolNames()) {
		t.Errorf("want %d tools, got %d", len(gocas.ToolNames()), len(schema.Tools))
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" {
		t.Errorf("want status ok, got %v", health["status"])
	}
}
