// Package main implements the kfifobench load generator. It streams a
// deterministic pattern through a single fifo with one producer and one
// consumer goroutine, verifies every element that comes out the other end,
// and reports throughput together with the fifo's own statistics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ubrabbit/kfifo"
	"github.com/ubrabbit/kfifo/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "kfifobench"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run benchmark with proper error handling
	if err := run(); err != nil {
		slog.Error("Benchmark failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	runID := uuid.New().String()
	slog.Info("Starting stream",
		"run_id", runID,
		"mode", cliCfg.Mode,
		"capacity", cliCfg.Capacity,
		"chunk_size", cliCfg.ChunkSize,
		"duration", cliCfg.Duration)

	// Metrics are registered even when the HTTP server is disabled; the
	// stream result report reads the same numbers from Stats.
	metricsRegistry := metric.NewMetricsRegistry()
	if cliCfg.MetricsPort > 0 {
		metricsServer := metric.NewServer(cliCfg.MetricsPort, "/metrics", metricsRegistry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("Metrics server stopped", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		slog.Info("Metrics server listening", "address", metricsServer.Address())
	}

	// SIGINT/SIGTERM end the stream early but still drain and report.
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	ctx, cancel := context.WithTimeout(signalCtx, cliCfg.Duration)
	defer cancel()

	var result *streamResult
	switch cliCfg.Mode {
	case "element":
		result, err = runElementStream(ctx, cliCfg, metricsRegistry)
	case "record":
		result, err = runRecordStream(ctx, cliCfg, metricsRegistry)
	default:
		return fmt.Errorf("unknown mode: %s", cliCfg.Mode)
	}
	if err != nil {
		return err
	}

	reportResult(result)
	return nil
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	return cliCfg, false, nil
}

// streamResult aggregates what both sides of a stream observed.
type streamResult struct {
	mode     string
	elapsed  time.Duration
	produced int64 // elements the fifo accepted
	consumed int64 // elements the consumer verified
	records  int64 // record mode only
	summary  kfifo.StatsSummary
}

// runElementStream moves the counter byte pattern through a byte fifo until
// ctx expires, then drains the ring and verifies the tail.
func runElementStream(ctx context.Context, cfg *CLIConfig, registry *metric.MetricsRegistry) (*streamResult, error) {
	q, err := kfifo.New[byte](cfg.Capacity, kfifo.WithMetrics[byte](registry, "bench"))
	if err != nil {
		return nil, fmt.Errorf("create fifo: %w", err)
	}
	defer q.Free()

	var (
		produced, consumed int64
		wg                 sync.WaitGroup
		producerDone       = make(chan struct{})
		errCh              = make(chan error, 1)
	)

	start := time.Now()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(producerDone)

		src := make([]byte, cfg.ChunkSize)
		var next byte
		for ctx.Err() == nil {
			// Refill from the current counter; a partial accept resumes
			// the pattern at the right offset next round.
			for i := range src {
				src[i] = next + byte(i)
			}
			n := q.Enqueue(src)
			if n == 0 {
				runtime.Gosched()
				continue
			}
			next += byte(n)
			produced += int64(n)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		dst := make([]byte, cfg.ChunkSize)
		var want byte
		drain := false
		for {
			n := q.Dequeue(dst)
			if n == 0 {
				if drain {
					return
				}
				select {
				case <-producerDone:
					// Observing the close also makes every enqueue before
					// it visible; the next empty read means fully drained.
					drain = true
				default:
					runtime.Gosched()
				}
				continue
			}
			for i := 0; i < n; i++ {
				if dst[i] != want {
					errCh <- fmt.Errorf("integrity failure at element %d: expected %d, got %d",
						consumed+int64(i), want, dst[i])
					return
				}
				want++
			}
			consumed += int64(n)
		}
	}()

	wg.Wait()
	elapsed := time.Since(start)

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if consumed != produced {
		return nil, fmt.Errorf("element count mismatch: produced %d, consumed %d", produced, consumed)
	}

	return &streamResult{
		mode:     cfg.Mode,
		elapsed:  elapsed,
		produced: produced,
		consumed: consumed,
		summary:  q.Stats().Summary(),
	}, nil
}

// runRecordStream frames cycling variable-length records through a record
// fifo until ctx expires, then drains and verifies the tail.
func runRecordStream(ctx context.Context, cfg *CLIConfig, registry *metric.MetricsRegistry) (*streamResult, error) {
	width := kfifo.Header8
	if cfg.HeaderWidth == 2 {
		width = kfifo.Header16
	}

	rq, err := kfifo.NewRecord(cfg.Capacity, width, kfifo.WithMetrics[byte](registry, "bench"))
	if err != nil {
		return nil, fmt.Errorf("create record fifo: %w", err)
	}
	defer rq.Free()

	// Record lengths cycle deterministically and must stay inside the chunk
	// size and inside what an empty ring can accept in one piece.
	maxRec := cfg.ChunkSize
	if limit := rq.MaxRecordLen(); maxRec > limit {
		maxRec = limit
	}
	if avail := rq.Avail(); maxRec > avail {
		maxRec = avail
	}
	if maxRec < 1 {
		return nil, fmt.Errorf("capacity %d leaves no payload space after the header", cfg.Capacity)
	}
	recLen := func(i int64) int { return 1 + int((i*7)%int64(maxRec)) }

	var (
		produced, consumed, records int64
		wg                          sync.WaitGroup
		producerDone                = make(chan struct{})
		errCh                       = make(chan error, 1)
	)

	start := time.Now()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(producerDone)

		rec := make([]byte, maxRec)
		var i int64
		for ctx.Err() == nil {
			payload := rec[:recLen(i)]
			for j := range payload {
				payload[j] = byte(i + int64(j))
			}
			if rq.Enqueue(payload) == 0 {
				runtime.Gosched()
				continue
			}
			produced += int64(len(payload))
			i++
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		dst := make([]byte, maxRec)
		var i int64
		drain := false
		for {
			n := rq.Dequeue(dst)
			if n == 0 {
				if drain {
					return
				}
				select {
				case <-producerDone:
					drain = true
				default:
					runtime.Gosched()
				}
				continue
			}
			if want := recLen(i); n != want {
				errCh <- fmt.Errorf("record %d: expected length %d, got %d", i, want, n)
				return
			}
			for j := 0; j < n; j++ {
				if dst[j] != byte(i+int64(j)) {
					errCh <- fmt.Errorf("record %d byte %d: expected %d, got %d",
						i, j, byte(i+int64(j)), dst[j])
					return
				}
			}
			consumed += int64(n)
			records++
			i++
		}
	}()

	wg.Wait()
	elapsed := time.Since(start)

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if consumed != produced {
		return nil, fmt.Errorf("payload byte mismatch: produced %d, consumed %d", produced, consumed)
	}

	return &streamResult{
		mode:     cfg.Mode,
		elapsed:  elapsed,
		produced: produced,
		consumed: consumed,
		records:  records,
		summary:  rq.Stats().Summary(),
	}, nil
}

// reportResult logs throughput and the fifo's statistics snapshot.
func reportResult(result *streamResult) {
	throughput := float64(result.consumed) / result.elapsed.Seconds()

	attrs := []any{
		"mode", result.mode,
		"elapsed", result.elapsed.Round(time.Millisecond),
		"produced_elements", result.produced,
		"consumed_elements", result.consumed,
		"elements_per_second", throughput,
	}
	if result.mode == "record" {
		attrs = append(attrs, "records", result.records)
	}
	slog.Info("Stream complete", attrs...)

	s := result.summary
	slog.Info("Fifo statistics",
		"enqueues", s.Enqueues,
		"dequeues", s.Dequeues,
		"elements_in", s.ElementsIn,
		"elements_out", s.ElementsOut,
		"short_writes", s.ShortWrites,
		"rejects", s.Rejects,
		"reject_rate", s.RejectRate,
		"write_throughput", s.Throughput,
		"read_throughput", s.ReadThroughput)
}
