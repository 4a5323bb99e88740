// Package main provides a health probe for container orchestrators. It calls
// the running server's health endpoint and maps the result to an exit code.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/savvykitchen/savvy/internal/infrastructure/config"
	"github.com/savvykitchen/savvy/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL            string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
	ConfigPath     string
}

// report is the subset of the health response the probe reads
type report struct {
	Status healthcheck.Status `json:"status"`
	Checks []struct {
		Name    string             `json:"name"`
		Status  healthcheck.Status `json:"status"`
		Message string             `json:"message"`
	} `json:"checks"`
}

func main() {
	opts := parseFlags()

	if opts.URL == "" {
		url, err := urlFromConfig(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot determine health URL: %v\n", err)
			os.Exit(exitCodeError)
		}
		opts.URL = url
	}

	os.Exit(run(opts))
}

// parseFlags parses command-line flags
func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.URL, "url", os.Getenv("HEALTH_CHECK_URL"), "Health check endpoint URL (e.g., http://localhost:8000/health)")
	flag.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	flag.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json")
	flag.StringVar(&opts.ExpectedStatus, "expect", string(healthcheck.StatusDegraded), "Worst acceptable status: healthy, degraded")
	flag.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	flag.DurationVar(&opts.RetryDelay, "retry-delay", 1*time.Second, "Delay between retries")
	flag.StringVar(&opts.ConfigPath, "config", os.Getenv("SAVVY_CONFIG"), "Configuration file used to derive the URL")

	flag.Parse()
	return opts
}

// urlFromConfig builds the local health URL from the server configuration
func urlFromConfig(path string) (string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)) + cfg.Monitoring.HealthCheckPath, nil
}

func run(opts Options) int {
	client := &http.Client{Timeout: opts.Timeout}

	var lastErr error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				fmt.Printf("Retrying in %v... (attempt %d/%d)\n", opts.RetryDelay, attempt, opts.RetryCount)
			}
			time.Sleep(opts.RetryDelay)
		}

		rep, err := fetch(client, opts.URL)
		if err != nil {
			lastErr = err
			if opts.Verbose {
				fmt.Printf("Request failed: %v\n", err)
			}
			continue
		}
		return evaluate(rep, opts)
	}

	fmt.Fprintf(os.Stderr, "Health check failed: %v\n", lastErr)
	return exitCodeError
}

func fetch(client *http.Client, url string) (*report, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var rep report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	return &rep, nil
}

func evaluate(rep *report, opts Options) int {
	switch opts.OutputFormat {
	case "json":
		out, _ := json.Marshal(rep)
		fmt.Println(string(out))
	default:
		fmt.Printf("Status: %s\n", rep.Status)
		if opts.Verbose {
			for _, c := range rep.Checks {
				fmt.Printf("  %-16s %-10s %s\n", c.Name, c.Status, c.Message)
			}
		}
	}

	if acceptable(rep.Status, healthcheck.Status(opts.ExpectedStatus)) {
		return exitCodeSuccess
	}
	return exitCodeFailure
}

func acceptable(got, worst healthcheck.Status) bool {
	rank := map[healthcheck.Status]int{
		healthcheck.StatusHealthy:   0,
		healthcheck.StatusDegraded:  1,
		healthcheck.StatusUnhealthy: 2,
	}
	g, ok := rank[got]
	if !ok {
		return false
	}
	return g <= rank[worst]
}
