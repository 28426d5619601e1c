// Command serialperf stress-tests a serial link: it streams a
// self-verifying counting protocol (or, in loopback mode, raw bytes)
// across the wire and reports throughput and packet loss.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"go.bug.st/serial"
	"golang.org/x/term"

	"serialperf/byterate"
	"serialperf/capture"
	"serialperf/clock"
	"serialperf/counting"
	"serialperf/hwserial"
	"serialperf/limit"
	"serialperf/loopback"
	"serialperf/metrics"
	"serialperf/pkg/pcap"
	"serialperf/serialio"
	"serialperf/stats"
)

var Version = "dev"

// wouldBlockBackoff is slept once per ErrWouldBlock tick in the main
// loops below, so a link with nothing to send/receive doesn't spin a
// CPU core at 100%.
const wouldBlockBackoff = 200 * time.Microsecond

func parseParity(s string) (serial.Parity, error) {
	switch s {
	case "none":
		return serial.NoParity, nil
	case "odd":
		return serial.OddParity, nil
	case "even":
		return serial.EvenParity, nil
	case "mark":
		return serial.MarkParity, nil
	case "space":
		return serial.SpaceParity, nil
	default:
		return serial.NoParity, fmt.Errorf("invalid parity %q: use none, odd, even, mark, or space", s)
	}
}

func parseStopBits(n int) (serial.StopBits, error) {
	switch n {
	case 1:
		return serial.OneStopBit, nil
	case 2:
		return serial.TwoStopBits, nil
	default:
		return serial.OneStopBit, fmt.Errorf("invalid stop bits %d: use 1 or 2", n)
	}
}

func parseWidth(n int) (counting.Width, error) {
	switch n {
	case 1:
		return counting.Width1, nil
	case 2:
		return counting.Width2, nil
	case 4:
		return counting.Width4, nil
	case 8:
		return counting.Width8, nil
	default:
		return 0, fmt.Errorf("invalid counter width %d: use 1, 2, 4, or 8", n)
	}
}

type config struct {
	port     string
	baud     int
	databits int
	parity   string
	stopbits int

	mode       string
	width      int
	noCRC      bool
	byteLimit  uint64
	limitUs    uint64
	warmUp     time.Duration
	printEvery time.Duration

	metricsAddr string
	capturePath string
	capturePipe bool
	verbose     bool
}

func (c *config) validate() error {
	switch c.mode {
	case "client", "server", "double", "loopback":
	default:
		return fmt.Errorf("invalid mode %q: use client, server, double, or loopback", c.mode)
	}
	if _, err := parseParity(c.parity); err != nil {
		return err
	}
	if _, err := parseStopBits(c.stopbits); err != nil {
		return err
	}
	if c.mode != "loopback" {
		if _, err := parseWidth(c.width); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	var cfg config

	flag.StringVar(&cfg.mode, "mode", "double", "test mode: client, server, double, or loopback")
	flag.IntVar(&cfg.baud, "baud", 115200, "baud rate")
	flag.IntVar(&cfg.databits, "databits", 8, "data bits (5-8)")
	flag.StringVar(&cfg.parity, "parity", "none", "parity: none, odd, even, mark, space")
	flag.IntVar(&cfg.stopbits, "stopbits", 1, "stop bits: 1 or 2")
	flag.IntVar(&cfg.width, "width", 4, "counter width in bytes: 1, 2, 4, or 8")
	flag.BoolVar(&cfg.noCRC, "no-crc", false, "disable CRC-8/AUTOSAR validation")
	flag.Uint64Var(&cfg.byteLimit, "byte-limit", 0, "bytes per byte-limit-interval-us; 0 with a nonzero interval blocks all writes")
	flag.Uint64Var(&cfg.limitUs, "byte-limit-interval-us", 0, "window for byte-limit, in microseconds; 0 = unlimited")
	flag.DurationVar(&cfg.warmUp, "warm-up", 0, "discard traffic for this long before measuring")
	flag.DurationVar(&cfg.printEvery, "print-interval", 5*time.Second, "how often to print live rate stats")
	flag.StringVar(&cfg.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.StringVar(&cfg.capturePath, "capture", "", "if set, record raw wire bytes to this pcap file")
	flag.BoolVar(&cfg.capturePipe, "capture-pipe", false, "treat -capture as a named pipe for live streaming (Unix only)")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose: show live status on stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: serialperf [flags] <serial-port>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	cfg.port = flag.Arg(0)

	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}

	runID := xid.New().String()
	logger := log.New(os.Stderr, runID+" ", log.LstdFlags)

	parity, _ := parseParity(cfg.parity)
	stopbits, _ := parseStopBits(cfg.stopbits)

	adapter, err := hwserial.Open(cfg.port, &serial.Mode{
		BaudRate: cfg.baud,
		DataBits: cfg.databits,
		Parity:   parity,
		StopBits: stopbits,
	})
	if err != nil {
		logger.Fatalf("open serial port: %v", err)
	}
	defer func() { _ = adapter.Close() }()

	var endpoint serialio.Serial = adapter

	if cfg.byteLimit > 0 || cfg.limitUs > 0 {
		rate := byterate.New(cfg.byteLimit, time.Duration(cfg.limitUs)*time.Microsecond)
		limiter := limit.NewPollingLimiter(rate, clock.RealClock{})
		endpoint = limit.NewLimitedSerial(endpoint, limiter)
	}

	if cfg.capturePath != "" {
		endpoint, err = wrapWithCapture(logger, endpoint, cfg.capturePath, cfg.capturePipe)
		if err != nil {
			logger.Fatalf("start capture: %v", err)
		}
	}

	enableTerminalStatus()
	liveStatus := cfg.verbose && term.IsTerminal(int(os.Stderr.Fd()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if cfg.mode == "loopback" {
		runLoopback(logger, endpoint, cfg, sigChan)
		return
	}

	runCounting(logger, endpoint, cfg, runID, sigChan, liveStatus)
}

func wrapWithCapture(logger *log.Logger, endpoint serialio.Serial, path string, asPipe bool) (serialio.Serial, error) {
	var f *os.File
	var err error
	if asPipe {
		f, err = capture.CreatePipe(logger, path)
	} else {
		f, err = os.Create(path)
	}
	if err != nil {
		return nil, err
	}
	pw, err := pcap.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return capture.NewRecorder(endpoint, pw), nil
}

func runLoopback(logger *log.Logger, endpoint serialio.Serial, cfg config, sigChan chan os.Signal) {
	l := loopback.New(endpoint, stats.Dummy{}, stats.Dummy{})
	logger.Printf("loopback mode on %s (%d baud)", cfg.port, cfg.baud)

	for {
		select {
		case <-sigChan:
			logger.Printf("stopping")
			return
		default:
		}
		err := l.LoopNB()
		if err != nil && err != serialio.ErrWouldBlock {
			logger.Fatalf("loopback: %v", err)
		}
		if err == serialio.ErrWouldBlock {
			time.Sleep(wouldBlockBackoff)
		}
	}
}

func runCounting(logger *log.Logger, endpoint serialio.Serial, cfg config, runID string, sigChan chan os.Signal, liveStatus bool) {
	width, _ := parseWidth(cfg.width)
	clk := clock.RealClock{}

	txStats := stats.NewIntervalRate(clk, cfg.printEvery)
	rxStats := stats.NewIntervalRate(clk, cfg.printEvery)
	lossStats := &stats.Counting{}

	var counter *counting.Counting
	if cfg.noCRC {
		counter = counting.NewWithoutChecksum(endpoint, width, txStats, rxStats, lossStats)
	} else {
		counter = counting.New(endpoint, width, txStats, rxStats, lossStats)
	}

	if cfg.metricsAddr != "" {
		serveMetrics(logger, cfg.metricsAddr, runID, txStats, rxStats, lossStats)
	}

	if cfg.warmUp > 0 {
		logger.Printf("warming up for %s", cfg.warmUp)
		deadline := time.Now().Add(cfg.warmUp)
		for time.Now().Before(deadline) {
			err := counter.RecvNB()
			if err != nil && err != serialio.ErrWouldBlock {
				logger.Fatalf("warm up: %v", err)
			}
			if err == serialio.ErrWouldBlock {
				time.Sleep(wouldBlockBackoff)
			}
		}
		counter.Reset()
	}

	logger.Printf("test started: mode=%s width=%d crc=%v", cfg.mode, cfg.width, !cfg.noCRC)
	lastPrint := time.Now()

	for {
		select {
		case <-sigChan:
			logger.Printf("stopping")
			return
		default:
		}

		var err error
		switch cfg.mode {
		case "client":
			err = counter.SendNB()
		case "server":
			err = counter.RecvNB()
		default:
			err = counter.LoopNB()
		}
		if err != nil && err != serialio.ErrWouldBlock {
			logger.Fatalf("%s: %v", cfg.mode, err)
		}
		if err == serialio.ErrWouldBlock {
			time.Sleep(wouldBlockBackoff)
		}

		if time.Since(lastPrint) >= cfg.printEvery {
			printStats(logger, cfg.mode, counter, liveStatus)
			lastPrint = time.Now()
		}
	}
}

func printStats(logger *log.Logger, mode string, counter *counting.Counting, liveStatus bool) {
	if mode == "client" || mode == "double" {
		tx := counter.TxStats().(*stats.IntervalRate)
		logger.Printf("TX(bytes): sent: %s, errors: %s", formatRate(tx.SuccessRate()), formatRate(tx.FailedRate()))
	}
	if mode == "server" || mode == "double" {
		rx := counter.RxStats().(*stats.IntervalRate)
		logger.Printf("RX(bytes): success: %s, errors: %s", formatRate(rx.SuccessRate()), formatRate(rx.FailedRate()))

		loss := counter.LossStats().(*stats.Counting)
		if total := loss.Total(); total != 0 {
			logger.Printf("RX(packet): loss: %d, total: %d, %.02f%%",
				loss.Failed(), total, float64(loss.Failed())*100/float64(total))
		}
	}
	if liveStatus {
		fmt.Fprintf(os.Stderr, "\r")
	}
}

func formatRate(r byteRateLike) string {
	bps, ok := r.BPSFloat64()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f B/s", bps)
}

type byteRateLike interface {
	BPSFloat64() (float64, bool)
}

func serveMetrics(logger *log.Logger, addr, runID string, txStats, rxStats *stats.IntervalRate, lossStats *stats.Counting) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(runID, txStats, rxStats, lossStats))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		logger.Printf("serving metrics on %s/metrics (run %s)", addr, runID)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Printf("metrics server stopped: %v", err)
		}
	}()
}
