package main

import (
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultBaseURL = "http://127.0.0.1:8085"
	numWorkers     = 20
	testDuration   = 10 * time.Second
	burstSize      = 10
)

// Reads served from local state never reach the backend; the rest do.
var localReads = []string{"/health", "/session", "/device"}
var remoteReads = []string{"/attendance/today", "/attendance/month", "/holidays", "/leave/types", "/profile"}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	baseURL := strings.TrimRight(os.Getenv("ESS_API_URL"), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	fmt.Println("=== essd Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	fmt.Print("Waiting for essd... ")
	state := ""
	for i := 0; i < 30; i++ {
		s, err := sessionState(baseURL)
		if err == nil {
			state = s
			break
		}
		if i == 29 {
			fmt.Println("FAILED: essd not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Printf("OK (session %s)\n", state)

	fmt.Println("\n--- Phase 1: Local reads ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doGet(baseURL, localReads[rng.Intn(len(localReads))])
	})

	if state != "authenticated" {
		fmt.Println("\nSession is not authenticated; skipping backend phases.")
		return
	}

	fmt.Println("\n--- Phase 2: Backend reads (30% local, 70% backend) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.30 {
			return doGet(baseURL, localReads[rng.Intn(len(localReads))])
		}
		return doGet(baseURL, remoteReads[rng.Intn(len(remoteReads))])
	})

	fmt.Println("\n--- Phase 3: Concurrent toggle burst ---")
	toggleBurst(baseURL)
}

func sessionState(baseURL string) (string, error) {
	resp, err := httpClient.Get(baseURL + "/session")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var env struct {
		Data struct {
			State string `json:"state"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", err
	}
	return env.Data.State, nil
}

// toggleBurst fires simultaneous toggles. At most one may be accepted; the
// others must be rejected with 409 while it is in flight.
func toggleBurst(baseURL string) {
	var wg sync.WaitGroup
	var accepted, conflicts, other atomic.Int64
	start := make(chan struct{})

	for i := 0; i < burstSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			resp, err := httpClient.Post(baseURL+"/attendance/toggle", "application/json", strings.NewReader(`{"location":"loadtest"}`))
			if err != nil {
				other.Add(1)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				accepted.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	fmt.Printf("  accepted: %d | in progress (409): %d | other: %d\n", accepted.Load(), conflicts.Load(), other.Load())
	if accepted.Load() > 1 {
		fmt.Println("  FAILED: more than one toggle was accepted")
	}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-24s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-24s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 90))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doGet(baseURL, path string) result {
	endpoint := "GET " + path
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
