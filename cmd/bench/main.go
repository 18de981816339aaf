package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/models"
)

// Hammers /events/click and then checks that the ledger holds exactly one
// click per accepted request.
func main() {
	concurrency := flag.Int("c", 50, "number of concurrent workers")
	duration := flag.Duration("d", 10*time.Second, "benchmark duration")
	adCount := flag.Int("ads", 4, "number of ads to spread clicks over")
	flag.Parse()

	fmt.Println("Ad click ledger benchmark")
	fmt.Println("=========================")

	fmt.Printf("Building server...     ")
	tmpDir, err := os.MkdirTemp("", "adpair-bench-*")
	if err != nil {
		fatal("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	binPath := filepath.Join(tmpDir, "adpair-server")
	build := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fatal("build server: %v", err)
	}
	fmt.Println("done")

	fmt.Printf("Seeding database...    ")
	dbPath := filepath.Join(tmpDir, "ads.db")
	database, err := db.Open(dbPath)
	if err != nil {
		fatal("open db: %v", err)
	}
	ids := make([]int64, *adCount)
	for i := range ids {
		ad := &models.Ad{
			ImgURL: fmt.Sprintf("/static/uploads/bench-%d.png", i),
			Link:   fmt.Sprintf("https://example.com/%d", i),
			IsMain: i%2 == 0,
		}
		if err := models.CreateAd(context.Background(), database, ad); err != nil {
			database.Close()
			fatal("seed ad %d: %v", i, err)
		}
		ids[i] = ad.ID
	}
	database.Close()
	fmt.Printf("done (%d ads)\n", len(ids))

	fmt.Printf("Starting server...     ")
	port, err := freePort()
	if err != nil {
		fatal("find free port: %v", err)
	}
	srv := exec.Command(binPath)
	srvLog, err := os.Create(filepath.Join(tmpDir, "server.log"))
	if err != nil {
		fatal("create server log: %v", err)
	}
	defer srvLog.Close()
	srv.Stdout = srvLog
	srv.Stderr = srvLog
	srv.Env = append(os.Environ(),
		fmt.Sprintf("ADS_PORT=%d", port),
		"ADS_DB_PATH="+dbPath,
		"ADS_STATIC_DIR="+filepath.Join(tmpDir, "static"),
		"ADS_LOG_LEVEL=warn",
		"ADS_RATE_LIMIT_RPS=1000000",
		"ADS_RATE_LIMIT_BURST=1000000",
	)
	if err := srv.Start(); err != nil {
		fatal("start server: %v", err)
	}
	defer func() {
		srv.Process.Signal(syscall.SIGINT)
		srv.Wait()
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitReady(baseURL+"/health", 5*time.Second); err != nil {
		fatal("server not ready: %v", err)
	}
	fmt.Printf("ready (port %d)\n", port)

	fmt.Printf("Benchmarking...        %s, %d workers\n", *duration, *concurrency)
	client := &http.Client{Transport: &http.Transport{MaxIdleConnsPerHost: *concurrency}}

	var (
		mu        sync.Mutex
		latencies []time.Duration
		failures  atomic.Int64
		accepted  = make([]atomic.Int64, len(ids))
		wg        sync.WaitGroup
	)
	deadline := time.Now().Add(*duration)

	for w := range *concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []time.Duration
			for n := 0; time.Now().Before(deadline); n++ {
				// Every worker cycles through all ads so the same rows
				// are incremented from many connections at once.
				idx := (w + n) % len(ids)
				body := fmt.Sprintf(`{"ad_id":%d,"domain":"bench.example"}`, ids[idx])
				req, _ := http.NewRequest(http.MethodPost, baseURL+"/events/click", bytes.NewBufferString(body))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.%d.1", w%256))

				start := time.Now()
				resp, err := client.Do(req)
				elapsed := time.Since(start)
				if err != nil {
					failures.Add(1)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					failures.Add(1)
					continue
				}
				accepted[idx].Add(1)
				local = append(local, elapsed)
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	total := int64(len(latencies)) + failures.Load()
	slices.Sort(latencies)

	fmt.Println()
	fmt.Println("Results")
	fmt.Println("-------")
	fmt.Printf("Requests:    %d\n", total)
	fmt.Printf("Errors:      %d\n", failures.Load())
	fmt.Printf("RPS:         %.1f\n", float64(total)/duration.Seconds())
	if len(latencies) > 0 {
		fmt.Printf("Latency p50: %s\n", fmtDur(percentile(latencies, 50)))
		fmt.Printf("Latency p95: %s\n", fmtDur(percentile(latencies, 95)))
		fmt.Printf("Latency p99: %s\n", fmtDur(percentile(latencies, 99)))
	}

	fmt.Println()
	fmt.Println("Ledger check")
	fmt.Println("------------")
	database, err = db.Open(dbPath)
	if err != nil {
		fatal("reopen db: %v", err)
	}
	defer database.Close()

	ok := true
	for i, id := range ids {
		var stored int64
		err := database.QueryRow(`SELECT COALESCE(SUM(clicks), 0) FROM ad_clicks WHERE ad_id = ?`, id).Scan(&stored)
		if err != nil {
			fatal("read clicks: %v", err)
		}
		want := accepted[i].Load()
		status := "ok"
		if stored != want {
			status = "MISMATCH"
			ok = false
		}
		fmt.Printf("ad %-4d accepted %-8d stored %-8d %s\n", id, want, stored, status)
	}
	if !ok {
		os.Exit(1)
	}
}

func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

func waitReady(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 500 * time.Millisecond}
	for time.Now().Before(deadline) {
		if resp, err := client.Get(url); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout after %s", timeout)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	idx := min(len(sorted)*p/100, len(sorted)-1)
	return sorted[idx]
}

func fmtDur(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", args...)
	os.Exit(1)
}
