// Package preview serves the latest rendered page over HTTP and pushes a
// version number to connected viewers over a websocket so they reload when
// the page is replaced.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/alnah/go-mdlive/internal/pipeline"
)

// Defaults for Server.
const (
	DefaultHost          = "localhost"
	DefaultPort          = "0"
	DefaultHeartbeat     = 30 * time.Second
	DefaultShutdownGrace = 5 * time.Second
	writeTimeout         = 30 * time.Second
)

// Sentinel errors.
var (
	ErrServerClosed = errors.New("preview server is closed")
	ErrListen       = errors.New("failed to listen")
)

// waitingPage is served until the first Replace.
const waitingPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>mdlive</title></head>
<body><p>Waiting for content...</p></body>
</html>`

// Update is the message pushed to viewers on every replace.
type Update struct {
	Version int64 `json:"version"`
}

// Server holds the current page and the set of connected viewers.
type Server struct {
	log          slog.Logger
	liveReloadJS string
	heartbeat    time.Duration
	router       chi.Router

	l net.Listener

	mu        sync.Mutex
	page      string
	version   int64
	closing   bool
	clients   map[*wsclient]struct{}
	clientsWG sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithLiveReloadScript sets the client script injected into served pages.
// Without it pages are served as is and never reload.
func WithLiveReloadScript(js string) Option {
	return func(s *Server) {
		s.liveReloadJS = js
	}
}

// WithHeartbeat sets the websocket ping interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// New creates a Server. Call Listen then Serve, or mount Handler directly.
func New(opts ...Option) *Server {
	s := &Server{
		log:       slog.Make(),
		heartbeat: DefaultHeartbeat,
		clients:   make(map[*wsclient]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleRoot)
	r.Get("/watch", s.handleWatch)
	r.Get("/healthz", s.handleHealth)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Replace sets the page served at / and notifies viewers.
func (s *Server) Replace(ctx context.Context, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.page = html
	s.version++
	version := s.version
	n := len(s.clients)
	for cl := range s.clients {
		select {
		case cl.updateCh <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()

	s.log.Debug(ctx, "broadcasting update", slog.F("version", version), slog.F("clients", n))
	return nil
}

// Version returns the number of replaces so far.
func (s *Server) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Server) snapshot() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.version
}

// Listen binds host:port. Port "0" picks a free port.
func (s *Server) Listen(host, port string) error {
	l, err := net.Listen("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	s.l = l
	return nil
}

// URL returns the base URL of the bound listener, or "" before Listen.
func (s *Server) URL() string {
	if s.l == nil {
		return ""
	}
	return "http://" + s.l.Addr().String()
}

// Serve serves on the listener bound by Listen until ctx is done, then
// closes viewer connections and shuts down within DefaultShutdownGrace.
func (s *Server) Serve(ctx context.Context) error {
	if s.l == nil {
		return fmt.Errorf("%w: Listen not called", ErrListen)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(s.l)
	}()
	s.log.Info(ctx, "preview server listening", slog.F("url", s.URL()))

	select {
	case err := <-errc:
		s.close()
		return err
	case <-ctx.Done():
	}

	s.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// close marks the server closing, tells viewers to go away and waits for
// their goroutines.
func (s *Server) close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	for cl := range s.clients {
		cl.cancel()
	}
	s.mu.Unlock()

	s.clientsWG.Wait()
}

// OpenBrowser opens url in the user's default browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	page, version := s.snapshot()
	if page == "" {
		page = waitingPage
	}
	if s.liveReloadJS != "" {
		page = pipeline.InjectBodyEnd(page,
			"<script>window.mdliveVersion="+strconv.FormatInt(version, 10)+";</script>"+
				"<script>"+s.liveReloadJS+"</script>")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	// Register before upgrading so close waits for this client.
	s.clientsWG.Add(1)
	s.mu.Unlock()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		s.clientsWG.Done()
		s.log.Warn(r.Context(), "websocket accept failed", slog.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	cl := &wsclient{
		s:        s,
		c:        c,
		updateCh: make(chan struct{}, 1),
		cancel:   cancel,
	}

	s.mu.Lock()
	if s.closing {
		cancel()
	}
	s.clients[cl] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer s.clientsWG.Done()
		defer cancel()
		defer c.Close(websocket.StatusInternalError, "unexpected exit")
		defer func() {
			s.mu.Lock()
			delete(s.clients, cl)
			s.mu.Unlock()
		}()

		ctx = c.CloseRead(ctx)
		go heartbeat(ctx, c, s.heartbeat)
		_ = cl.writeLoop(ctx)
	}()
}

type wsclient struct {
	s        *Server
	c        *websocket.Conn
	updateCh chan struct{}
	cancel   context.CancelFunc
}

// writeLoop sends the current version on connect and after every replace.
func (cl *wsclient) writeLoop(ctx context.Context) error {
	for {
		if err := cl.write(ctx, Update{Version: cl.s.Version()}); err != nil {
			return err
		}

		select {
		case <-cl.updateCh:
		case <-ctx.Done():
			cl.c.Close(websocket.StatusGoingAway, "server shutting down")
			return ctx.Err()
		}
	}
}

func (cl *wsclient) write(ctx context.Context, u Update) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, cl.c, u)
}

func heartbeat(ctx context.Context, c *websocket.Conn, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := c.Ping(ctx); err != nil {
				c.Close(websocket.StatusGoingAway, "ping failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
