package enclaverpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/automata-network/sgx-prover/primitives"
)

// DefaultMaxBodyBytes is the request body-size cap applied when
// ServerConfig.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 50 * 1024 * 1024

// ServerConfig configures the HTTP transport wrapping an API. TLS is
// enabled only when both cert paths are set.
type ServerConfig struct {
	Addr         string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

func (c ServerConfig) maxBody() int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

// Server is the JSON-RPC HTTP server wrapping an API, grounded on the
// teacher's rpc.Server shape (a plain ServeMux dispatching "/" to a
// single handler).
type Server struct {
	api    *API
	cfg    ServerConfig
	mux    *http.ServeMux
	alive  *primitives.Alive
	server *http.Server
}

// NewServer builds a Server. alive is threaded into every RPC call so a
// long-running prove task can be cancelled when the process shuts down.
func NewServer(alive *primitives.Alive, api *API, cfg ServerConfig) *Server {
	s := &Server{api: api, cfg: cfg, mux: http.NewServeMux(), alive: alive}
	s.mux.HandleFunc("/", s.handleRPC)
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP handler, for tests that want to drive it
// directly with httptest instead of binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving RPCs until ctx is cancelled, then shuts
// the server down gracefully. TLS is used when both cert paths are set.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
			errc <- s.server.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			errc <- s.server.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.maxBody())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, errorResponse(nil, ErrCodeParse, "failed to read request body"))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, errorResponse(nil, ErrCodeParse, "invalid JSON"))
		return
	}

	resp := s.api.HandleRequest(s.alive, &req)
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
