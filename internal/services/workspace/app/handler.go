package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/net/websocket"

	"github.com/louisbranch/gmworkspace/internal/platform/i18n/catalog"
	"github.com/louisbranch/gmworkspace/internal/platform/requestctx"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/view"
)

// Handler routes the workspace page, its WebSocket feed, the MCP endpoint,
// and the liveness probe.
type Handler struct {
	mux     *http.ServeMux
	session *session.Session
	conns   sync.WaitGroup
}

// NewHandler builds the HTTP routes for sess. A nil mcpServer leaves /mcp
// unmounted.
func NewHandler(sess *session.Session, mcpServer *mcp.Server) *Handler {
	h := &Handler{mux: http.NewServeMux(), session: sess}

	h.mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	h.mux.HandleFunc("/", h.handlePage)

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, sess)
	})
	h.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.conns.Add(1)
		defer h.conns.Done()
		wsHandler.ServeHTTP(w, r)
	})

	if mcpServer != nil {
		h.mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return mcpServer
		}, nil))
	}
	return h
}

// ServeHTTP negotiates the request locale and dispatches to the routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimSpace(r.URL.Query().Get("lang"))
	if requested == "" {
		requested = r.Header.Get("Accept-Language")
	}
	if requested == "" {
		requested = h.session.Locale()
	}
	ctx := requestctx.WithLocale(r.Context(), catalog.Default().Match(requested))
	h.mux.ServeHTTP(w, r.WithContext(ctx))
}

// Wait blocks until every WebSocket connection has returned.
func (h *Handler) Wait() {
	h.conns.Wait()
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	locale := requestctx.LocaleFromContext(r.Context(), catalog.BaseLocale)
	var body bytes.Buffer
	if err := Document(h.session.Current(), locale).Render(r.Context(), &body); err != nil {
		log.Printf("render workspace page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = body.WriteTo(w)
}

// Document renders the full HTML page around the workspace for event.
func Document(event session.Event, locale string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		loc := view.Printer(locale)
		if _, err := fmt.Fprintf(w, `<!doctype html><html lang="%s"><head><meta charset="utf-8"><title>%s</title></head><body data-stage="%s">`,
			templ.EscapeString(locale),
			templ.EscapeString(loc.Sprintf("workspace.page.title")),
			templ.EscapeString(event.Stage.String())); err != nil {
			return err
		}
		if err := view.Page(event.State, loc).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, liveScript+`</body></html>`)
		return err
	})
}

// liveScript swaps the workspace markup whenever the feed pushes a state.
const liveScript = `<script>
(() => {
  const scheme = location.protocol === "https:" ? "wss://" : "ws://";
  const socket = new WebSocket(scheme + location.host + "/ws" + location.search);
  socket.onmessage = (event) => {
    const frame = JSON.parse(event.data);
    if (frame.type !== "workspace.state") return;
    const current = document.querySelector("main.workspace");
    if (current) current.outerHTML = frame.payload.html;
    document.body.dataset.stage = frame.payload.state.stage;
  };
})();
</script>`
