// Package web serves static files over plain HTTP with the
// cross-origin-isolation headers required for SharedArrayBuffer.
package web

import (
	"fmt"
	"net"
	"net/http"
	"sync"
)

// Server serves files from a root directory. File resolution (index.html
// lookup, 404s, MIME inference) is delegated to net/http's FileServer.
type Server struct {
	root     string
	listener net.Listener
	httpSrv  *http.Server
	port     int
	reload   *reloadHub
	reloadOn bool
	serveErr chan error
	stopOnce sync.Once
}

// NewServer creates a static file server for root.
func NewServer(root string) *Server {
	return &Server{
		root:     root,
		reload:   newReloadHub(),
		serveErr: make(chan error, 1),
	}
}

// EnableReload registers the reload endpoint on the handler chain.
// Without it the path falls through to the file server like any other.
// Must be called before Start.
func (s *Server) EnableReload() {
	s.reloadOn = true
}

// Handler returns the handler chain: file server, plus the reload endpoint
// in watch mode, with the isolation headers applied to every response.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.root)))
	if s.reloadOn {
		mux.Handle(reloadPath, s.reload)
	}
	return withIsolationHeaders(mux)
}

// Start binds the port and begins serving in the background.
// Port 0 picks an ephemeral port; Port() reports the bound one.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.httpSrv = &http.Server{Handler: s.Handler()}

	go func() {
		s.serveErr <- s.httpSrv.Serve(ln)
	}()
	return nil
}

// Wait blocks until the accept loop exits. Under normal operation it never
// returns; the process ends via external signal.
func (s *Server) Wait() error {
	err := <-s.serveErr
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop closes the listener and all active connections immediately; in-flight
// requests are not drained. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			s.httpSrv.Close()
		}
		s.reload.close()
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the serving URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// NotifyReload tells connected watch-mode clients to refresh.
func (s *Server) NotifyReload() {
	s.reload.broadcast()
}
