// Command test_integration smoke-tests a running rhymenet server that was
// seeded with internal/driver/testdata/songs.json.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	session := uuid.NewString()
	client := &http.Client{Timeout: 30 * time.Second}

	// Wait for server to start
	if !waitHealthy(client, baseURL) {
		fmt.Println("FAILED: server never became healthy")
		os.Exit(1)
	}

	fmt.Println("Starting Integration Test...")

	steps := []struct {
		name     string
		method   string
		endpoint string
		payload  interface{}
		check    func(map[string]interface{}) error
	}{
		{
			name: "Network search", method: http.MethodPost, endpoint: "/network",
			payload: map[string]interface{}{"seed": "phone", "max_depth": 2},
			check: func(body map[string]interface{}) error {
				if body["status"] != "ok" {
					return fmt.Errorf("status %v", body["status"])
				}
				if records, _ := body["records"].([]interface{}); len(records) == 0 {
					return fmt.Errorf("no records")
				}
				return nil
			},
		},
		{
			name: "Re-derive records", method: http.MethodPost, endpoint: "/network/records",
			payload: map[string]interface{}{"filters": map[string]interface{}{"depths": []int{1}}},
		},
		{
			name: "Simple search", method: http.MethodPost, endpoint: "/simple",
			payload: map[string]interface{}{"word": "phone"},
		},
		{
			name: "Figurative search", method: http.MethodPost, endpoint: "/figurative",
			payload: map[string]interface{}{"type": "simile"},
		},
		{
			name: "Facets", method: http.MethodGet, endpoint: "/facets",
		},
	}

	for i, step := range steps {
		fmt.Printf("%d. %s...\n", i+1, step.name)
		body, ok := sendRequest(client, baseURL, session, step.method, step.endpoint, step.payload)
		if ok && step.check != nil {
			if err := step.check(body); err != nil {
				fmt.Printf("Unexpected response: %v\n", err)
				ok = false
			}
		}
		if !ok {
			fmt.Printf("FAILED: %s\n", step.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", step.name)
	}
}

func waitHealthy(client *http.Client, baseURL string) bool {
	for i := 0; i < 20; i++ {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

func sendRequest(client *http.Client, baseURL, session, method, endpoint string, payload interface{}) (map[string]interface{}, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", session)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		fmt.Printf("Invalid JSON response: %v\n", err)
		return nil, false
	}
	return decoded, true
}
