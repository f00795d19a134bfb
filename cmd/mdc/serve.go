package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jcorbin/mdc/internal/cliui"
	"github.com/jcorbin/mdc/scandown"
)

func init() {
	builtinServer("serve", serveServe, "run an HTTP render service", `# Serve

> {{ .Ctx.Command }} [ADDR]

Listens on ADDR, or the -listen address, until interrupted:

- POST /render renders the markdown request body; the dialect query
  parameter selects a dialect, format=text renders plain text
- GET /metrics serves Prometheus metrics
`)
}

func serveServe(sess *session, req *cliui.Request, res *cliui.Response) error {
	addr := sess.listen
	if req.ScanArg() {
		addr = req.Arg()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("serving on http://%v", ln.Addr())
	return runServer(ctx, ln, newRenderService(sess.opts))
}

// runServer serves h on ln until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ln) }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const maxRenderBytes = 4 << 20

// renderService renders markdown over HTTP, and exposes its own metrics.
type renderService struct {
	opts     scandown.Options
	mux      *http.ServeMux
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	bytes    prometheus.Counter
}

func newRenderService(opts scandown.Options) *renderService {
	svc := &renderService{
		opts: opts,
		mux:  http.NewServeMux(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdc",
			Name:      "render_requests_total",
			Help:      "Render requests, by response status code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mdc",
			Name:      "render_duration_seconds",
			Help:      "Time spent compiling markdown.",
			Buckets:   prometheus.DefBuckets,
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mdc",
			Name:      "render_output_bytes_total",
			Help:      "Bytes of rendered output.",
		}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(svc.requests, svc.duration, svc.bytes)

	svc.mux.HandleFunc("/render", svc.serveRender)
	svc.mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return svc
}

func (svc *renderService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.mux.ServeHTTP(w, r)
}

func (svc *renderService) serveRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		svc.fail(w, http.StatusMethodNotAllowed, "POST markdown to render")
		return
	}

	opts := svc.opts
	query := r.URL.Query()
	if name := query.Get("dialect"); name != "" {
		d, err := scandown.ParseDialect(name)
		if err != nil {
			svc.fail(w, http.StatusBadRequest, err.Error())
			return
		}
		d.Apply(&opts)
	}
	contentType := "text/html; charset=utf-8"
	if query.Get("format") == "text" {
		opts.Renderer = scandown.TextRenderer{}
		contentType = "text/plain; charset=utf-8"
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRenderBytes))
	if err != nil {
		svc.fail(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	start := time.Now()
	out, err := scandown.Compile(string(body), opts)
	svc.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("render failed: %v", err)
		svc.fail(w, http.StatusInternalServerError, "unable to render markdown")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	svc.requests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	svc.bytes.Add(float64(len(out)))
	io.WriteString(w, out)
}

func (svc *renderService) fail(w http.ResponseWriter, code int, msg string) {
	svc.requests.WithLabelValues(strconv.Itoa(code)).Inc()
	http.Error(w, msg, code)
}
