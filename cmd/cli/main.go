package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

const version = "1.0.0"

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "OpticsCore REST API address")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	command := os.Args[1]

	switch command {
	case "run":
		handleRun(os.Args[2:])
	case "get":
		handleGet(os.Args[2:])
	case "clusters":
		handleClusters(os.Args[2:])
	case "peaks":
		handlePeaks(os.Args[2:])
	case "owner":
		handleOwner(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "version":
		fmt.Printf("opticscore-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		datasetFile      = fs.String("dataset", "", "path to a JSON file containing a [[float64]] dataset (required)")
		ownerID          = fs.String("owner", "default", "owner ID submitting the run")
		epsilon          = fs.Float64("epsilon", 1.0, "neighborhood radius")
		minPts           = fs.Int("min-pts", 5, "density threshold")
		peakMode         = fs.String("peak-mode", "topk", "peak selection mode: topk or threshold")
		topK             = fs.Int("top-k", 5, "number of clusters to extract in topk mode")
		persistenceTau   = fs.Float64("persistence-tau", 0, "minimum persistence in threshold mode")
		outlierThreshold = fs.Float64("outlier-threshold", 0, "reachability above which a point is an outlier (0 disables)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	if *datasetFile == "" {
		fmt.Println("Error: -dataset is required")
		fs.Usage()
		os.Exit(1)
	}

	raw, err := os.ReadFile(*datasetFile)
	if err != nil {
		fmt.Printf("Error reading dataset file: %v\n", err)
		os.Exit(1)
	}

	var dataset [][]float64
	if err := json.Unmarshal(raw, &dataset); err != nil {
		fmt.Printf("Error parsing dataset JSON: %v\n", err)
		os.Exit(1)
	}

	// Caller-side conventions: a negative epsilon means "no radius limit"
	// and a negative persistence threshold means 0. The server normalizes
	// too, but clamping here keeps the submitted request self-describing.
	if *epsilon < 0 {
		*epsilon = math.MaxFloat64
	}
	if *persistenceTau < 0 {
		*persistenceTau = 0
	}

	body := map[string]interface{}{
		"owner_id": *ownerID,
		"dataset":  dataset,
		"params": map[string]interface{}{
			"epsilon":           *epsilon,
			"min_pts":           *minPts,
			"peak_mode":         *peakMode,
			"top_k":             *topK,
			"persistence_tau":   *persistenceTau,
			"outlier_threshold": *outlierThreshold,
		},
	}

	resp := postJSON("/v1/runs", body)
	printJSON(resp)
}

func handleGet(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	runID := fs.String("id", "", "run ID (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	if *runID == "" {
		fmt.Println("Error: -id is required")
		fs.Usage()
		os.Exit(1)
	}

	resp := getJSON(fmt.Sprintf("/v1/runs/%s", *runID))
	printJSON(resp)
}

func handleClusters(args []string) {
	fs := flag.NewFlagSet("clusters", flag.ExitOnError)
	runID := fs.String("id", "", "run ID (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	if *runID == "" {
		fmt.Println("Error: -id is required")
		fs.Usage()
		os.Exit(1)
	}

	resp := getJSON(fmt.Sprintf("/v1/runs/%s/clusters", *runID))
	printJSON(resp)
}

func handlePeaks(args []string) {
	fs := flag.NewFlagSet("peaks", flag.ExitOnError)
	runID := fs.String("id", "", "run ID (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	if *runID == "" {
		fmt.Println("Error: -id is required")
		fs.Usage()
		os.Exit(1)
	}

	raw := getJSON(fmt.Sprintf("/v1/runs/%s", *runID))

	var run struct {
		Borders []int `json:"borders"`
	}
	if err := json.Unmarshal(raw, &run); err != nil {
		fmt.Printf("Error parsing run response: %v\n", err)
		os.Exit(1)
	}

	out, err := json.Marshal(run.Borders)
	if err != nil {
		fmt.Printf("Error encoding borders: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func handleOwner(args []string) {
	if len(args) == 0 {
		fmt.Println("Error: owner requires a subcommand: create, get")
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("owner create", flag.ExitOnError)
		id := fs.String("id", "", "owner ID (required)")
		maxPoints := fs.Int64("max-points", 200000, "max points per run")
		maxDimensions := fs.Int("max-dimensions", 4096, "max dimensionality per run")
		rateLimitRPS := fs.Int("rate-limit-rps", 5, "run submissions per second")
		fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
		fs.Parse(args[1:])

		if *id == "" {
			fmt.Println("Error: -id is required")
			fs.Usage()
			os.Exit(1)
		}

		body := map[string]interface{}{
			"id": *id,
			"quota": map[string]interface{}{
				"max_points":          *maxPoints,
				"max_dimensions":      *maxDimensions,
				"max_runs_per_owner":  10000,
				"rate_limit_rps":      *rateLimitRPS,
			},
		}
		printJSON(postJSON("/v1/owners", body))
	case "get":
		fs := flag.NewFlagSet("owner get", flag.ExitOnError)
		id := fs.String("id", "", "owner ID (required)")
		fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
		fs.Parse(args[1:])

		if *id == "" {
			fmt.Println("Error: -id is required")
			fs.Usage()
			os.Exit(1)
		}
		printJSON(getJSON(fmt.Sprintf("/v1/owners/%s", *id)))
	default:
		fmt.Printf("Unknown owner subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	printJSON(getJSON("/v1/stats"))
}

func handleHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "OpticsCore REST API address")
	fs.Parse(args)

	var result map[string]interface{}
	raw := getJSON("/v1/health")
	if err := json.Unmarshal(raw, &result); err != nil {
		fmt.Printf("Error parsing health response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %v\n", result["status"])
	fmt.Printf("Runs:   %v\n", result["runs"])

	if result["status"] != "ok" {
		os.Exit(1)
	}
}

func getJSON(path string) []byte {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(serverAddr + path)
	if err != nil {
		fmt.Printf("Error contacting server at %s: %v\n", serverAddr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Server returned %d: %s\n", resp.StatusCode, body)
		os.Exit(1)
	}

	return body
}

func postJSON(path string, payload interface{}) []byte {
	encoded, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Post(serverAddr+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		fmt.Printf("Error contacting server at %s: %v\n", serverAddr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		os.Exit(1)
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("Server returned %d: %s\n", resp.StatusCode, body)
		os.Exit(1)
	}

	return body
}

func printJSON(raw []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}

func showUsage() {
	fmt.Println(`OpticsCore CLI - Client for the OpticsCore REST API

Usage:
  opticscore-cli <command> [options]

Commands:
  run             Submit a dataset as an OPTICS run
  get             Fetch a run's ordering, borders, and clusters by ID
  clusters        Fetch just a run's extracted clusters by ID
  peaks           Fetch just a run's cluster border indices by ID
  owner create    Register a new run owner with a quota
  owner get       Fetch a run owner's quota and usage
  stats           Get server statistics
  health          Check server health
  version         Show version
  help            Show this help message

Global Options:
  -server ADDRESS   OpticsCore REST API address (default: http://localhost:8080)

Requests to the server time out after 30s.

Examples:

  # Submit a dataset for clustering
  opticscore-cli run -dataset points.json -owner team-a -epsilon 1.5 -min-pts 4

  # Fetch a completed run
  opticscore-cli get -id run_team-a_1700000000000000000

  # Fetch just the extracted clusters
  opticscore-cli clusters -id run_team-a_1700000000000000000

  # Register a new owner
  opticscore-cli owner create -id team-a -max-points 500000

  # Check server health
  opticscore-cli health`)
}
