package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/tinnitrack/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// fragmentRelayPage re-issues URL fragment parameters as a query string,
// since browsers never send the fragment to the server.
const fragmentRelayPage = `<!doctype html>
<html><head><meta charset="utf-8"><title>TinniTrack</title></head>
<body><p id="msg">Finishing sign-in...</p>
<script>
if (location.hash.length > 1) {
  location.replace(location.pathname + "?" + location.hash.substring(1));
} else {
  document.getElementById("msg").textContent = "Nothing to do here. You can close this tab.";
}
</script></body></html>`

const donePage = `<!doctype html>
<html><head><meta charset="utf-8"><title>TinniTrack</title></head>
<body><p>Done. Return to the TinniTrack terminal; you can close this tab.</p></body></html>`

// CallbackServer receives auth redirects (email confirmation, password
// recovery) on a loopback address and forwards them to handle.
type CallbackServer struct {
	addr   string
	handle func(ctx context.Context, rawURL string)
	log    logging.Logger
	e      *echo.Echo

	mu sync.Mutex
	ln net.Listener
}

func NewCallbackServer(addr string, handle func(ctx context.Context, rawURL string), log logging.Logger) *CallbackServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &CallbackServer{addr: addr, handle: handle, log: log, e: e}
	e.GET("/auth/:kind", s.serveAuth)
	return s
}

func (s *CallbackServer) serveAuth(c echo.Context) error {
	req := c.Request()
	if req.URL.RawQuery == "" {
		return c.HTML(http.StatusOK, fragmentRelayPage)
	}

	rawURL := "http://" + req.Host + req.URL.RequestURI()
	s.log.Debug(req.Context(), "auth redirect received", "kind", c.Param("kind"))
	s.handle(context.WithoutCancel(req.Context()), rawURL)
	return c.HTML(http.StatusOK, donePage)
}

// Start binds the listen address and serves in the background.
func (s *CallbackServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.e.Listener = ln

	go func() {
		if err := s.e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn(context.Background(), "auth callback server stopped", "error", err)
		}
	}()
	return nil
}

// Addr reports the bound address, or the configured one before Start.
func (s *CallbackServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
