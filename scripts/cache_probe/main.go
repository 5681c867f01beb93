// Command cache_probe compares the cached and freshly computed leaderboard of
// each listed department against a running gateway. A drift between the two
// within the freshness window points at a missed invalidation.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type probeConfig struct {
	Departments []string `json:"departments"`
}

type probe struct {
	DepartmentID   string
	CachedStatus   int
	FreshStatus    int
	StatusMatch    bool
	EntriesMatch   bool
	CachedDuration time.Duration
	FreshDuration  time.Duration
	Error          error
}

func main() {
	var (
		base       string
		token      string
		configPath string
		timeout    time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for the leaderboard routes")
	flag.StringVar(&configPath, "config", filepath.Join("scripts", "cache_probe", "departments.json"), "Path to JSON department list")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	departments, err := loadDepartments(configPath)
	if err != nil {
		log.Fatalf("failed to load department list: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		probes []probe
		drifts int
	)

	for _, departmentID := range departments {
		result := probeDepartment(client, base, token, departmentID)
		if result.Error != nil || !result.StatusMatch || !result.EntriesMatch {
			drifts++
		}
		probes = append(probes, result)
	}

	printReport(probes)

	fmt.Printf("Departments probed: %d, drifts: %d\n", len(probes), drifts)
	if drifts > 0 {
		os.Exit(1)
	}
}

func loadDepartments(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg probeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Departments) == 0 {
		return nil, fmt.Errorf("no departments defined in %s", path)
	}
	return cfg.Departments, nil
}

func probeDepartment(client *http.Client, base, token, departmentID string) probe {
	result := probe{DepartmentID: departmentID}
	path := fmt.Sprintf("/departments/%s/leaderboard", departmentID)

	cachedBody, cachedStatus, cachedDur, err := fetch(client, base, token, path)
	if err != nil {
		result.Error = fmt.Errorf("cached fetch failed: %w", err)
		return result
	}
	freshBody, freshStatus, freshDur, err := fetch(client, base, token, path+"?forceRefresh=true")
	if err != nil {
		result.Error = fmt.Errorf("fresh fetch failed: %w", err)
		return result
	}

	result.CachedStatus = cachedStatus
	result.FreshStatus = freshStatus
	result.CachedDuration = cachedDur
	result.FreshDuration = freshDur
	result.StatusMatch = cachedStatus == freshStatus
	result.EntriesMatch = entriesEqual(cachedBody, freshBody)
	return result
}

func fetch(client *http.Client, base, token, path string) ([]byte, int, time.Duration, error) {
	url := strings.TrimRight(base, "/") + path
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// entriesEqual compares only the ranked entries of the two payloads. The
// envelope differs by construction: from_cache, last_updated and the
// processing time metadata change on every fresh computation.
func entriesEqual(cached, fresh []byte) bool {
	cachedEntries, err := extractEntries(cached)
	if err != nil {
		return bytes.Equal(cached, fresh)
	}
	freshEntries, err := extractEntries(fresh)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(cachedEntries, freshEntries)
}

func extractEntries(body []byte) (interface{}, error) {
	var envelope struct {
		Data struct {
			Entries interface{} `json:"entries"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data.Entries, nil
}

func printReport(results []probe) {
	fmt.Println("Leaderboard Cache Probe Report")
	fmt.Println("==============================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.EntriesMatch {
			status = "DRIFT"
		}
		fmt.Printf("[%s] department %s\n", status, res.DepartmentID)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Cached: %d (%s) | Fresh: %d (%s)\n", res.CachedStatus, res.CachedDuration, res.FreshStatus, res.FreshDuration)
		fmt.Printf("  Status match: %t | Entries match: %t\n", res.StatusMatch, res.EntriesMatch)
	}
}
