package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/platform/i18n/catalog"
	"github.com/louisbranch/gmworkspace/internal/platform/requestctx"
	"github.com/louisbranch/gmworkspace/internal/platform/timeouts"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/api/tools"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/session"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/storage"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/view"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	frameState = "workspace.state"
	frameAck   = "workspace.ack"
	frameError = "workspace.error"

	codeInvalidArgument   = "INVALID_ARGUMENT"
	codeResourceExhausted = "RESOURCE_EXHAUSTED"
	codeInternal          = "INTERNAL"
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Details   map[string]string `json:"details,omitempty"`
}

type statePayload struct {
	State tools.StateResult `json:"state"`
	HTML  string            `json:"html"`
}

type ackEnvelope struct {
	Result ackResult `json:"result"`
}

type ackResult struct {
	Status       string              `json:"status"`
	TabID        string              `json:"tab_id,omitempty"`
	Layout       *tools.LayoutResult `json:"layout,omitempty"`
	FromTemplate bool                `json:"from_template,omitempty"`
}

type openPayload struct {
	Panel string `json:"panel"`
	Path  string `json:"path"`
	Side  string `json:"side"`
}

type closePayload struct {
	Side  string `json:"side"`
	TabID string `json:"tab_id"`
	Mode  string `json:"mode"`
}

type tabPayload struct {
	Side  string `json:"side"`
	TabID string `json:"tab_id"`
}

type splitPayload struct {
	Ratio *float64 `json:"ratio"`
}

type stagePayload struct {
	Stage string `json:"stage"`
}

type layoutSavePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ForStage    bool   `json:"for_stage"`
	IsDefault   bool   `json:"is_default"`
}

type layoutIDPayload struct {
	LayoutID string `json:"layout_id"`
}

type wsPeer struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{conn: conn, encoder: json.NewEncoder(conn)}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeouts.WebSocketWrite))
	return p.encoder.Encode(frame)
}

func (p *wsPeer) writePayload(frameType, requestID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writeFrame(wsFrame{Type: frameType, RequestID: requestID, Payload: data})
}

func writeWSError(peer *wsPeer, requestID, code, message string) error {
	return peer.writePayload(frameError, requestID, wsErrorEnvelope{Error: wsError{Code: code, Message: message}})
}

// wsConn is one browser attached to the session feed.
type wsConn struct {
	ctx     context.Context
	session *session.Session
	peer    *wsPeer
	locale  string
}

func handleWSConn(conn *websocket.Conn, sess *session.Session) {
	defer func() {
		_ = conn.Close()
	}()

	ctx := context.Background()
	if request := conn.Request(); request != nil {
		ctx = request.Context()
	}
	c := &wsConn{
		ctx:     ctx,
		session: sess,
		peer:    newWSPeer(conn),
		locale:  requestctx.LocaleFromContext(ctx, catalog.BaseLocale),
	}

	events, cancel := sess.Subscribe()
	pushDone := make(chan struct{})
	go func() {
		defer close(pushDone)
		c.push(events)
		// A closed feed means the session is shutting down; unblock the reader.
		_ = conn.Close()
	}()
	defer func() {
		cancel()
		<-pushDone
	}()

	if err := c.writeState(sess.Current()); err != nil {
		return
	}
	c.readLoop(json.NewDecoder(conn))
}

func (c *wsConn) push(events <-chan session.Event) {
	for event := range events {
		if err := c.writeState(event); err != nil {
			log.Printf("workspace: push state failed: %v", err)
			return
		}
	}
}

func (c *wsConn) writeState(event session.Event) error {
	var html bytes.Buffer
	if err := view.Page(event.State, view.Printer(c.locale)).Render(c.ctx, &html); err != nil {
		return err
	}
	return c.peer.writePayload(frameState, "", statePayload{
		State: tools.NewStateResult(event),
		HTML:  html.String(),
	})
}

func (c *wsConn) readLoop(decoder *json.Decoder) {
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || isClosed(err) {
				return
			}
			decodeErrors++
			_ = writeWSError(c.peer, "", codeInvalidArgument, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(c.peer, frame.RequestID, codeInvalidArgument, "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(c.peer, frame.RequestID, codeResourceExhausted, "rate limit exceeded")
			return
		}

		result, err := c.dispatch(frame)
		if err != nil {
			_ = c.writeError(frame.RequestID, err)
			continue
		}
		_ = c.peer.writePayload(frameAck, frame.RequestID, ackEnvelope{Result: result})
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

var errUnsupportedFrame = errors.New("unsupported frame type")

func (c *wsConn) dispatch(frame wsFrame) (ackResult, error) {
	ok := ackResult{Status: "ok"}
	switch frame.Type {
	case "workspace.open_tab":
		var payload openPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		side, err := parseOptionalSide(payload.Side)
		if err != nil {
			return ackResult{}, err
		}
		var tabID string
		switch {
		case strings.TrimSpace(payload.Panel) != "":
			tabID, err = c.session.OpenPanel(side, panel.ID(strings.TrimSpace(payload.Panel)))
		case strings.TrimSpace(payload.Path) != "":
			tabID, err = c.session.OpenPath(side, payload.Path)
		default:
			return ackResult{}, invalidArgument("panel or path is required")
		}
		if err != nil {
			return ackResult{}, err
		}
		ok.TabID = tabID
		return ok, nil

	case "workspace.close_tab":
		var payload closePayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		side, err := workspace.ParseSide(payload.Side)
		if err != nil {
			return ackResult{}, invalidSide(payload.Side)
		}
		mode, err := session.ParseCloseMode(payload.Mode)
		if err != nil {
			return ackResult{}, invalidArgument(err.Error())
		}
		return ok, c.session.Close(side, strings.TrimSpace(payload.TabID), mode)

	case "workspace.activate_tab":
		var payload tabPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		side, err := workspace.ParseSide(payload.Side)
		if err != nil {
			return ackResult{}, invalidSide(payload.Side)
		}
		return ok, c.session.Activate(side, strings.TrimSpace(payload.TabID))

	case "workspace.focus_panel":
		var payload tabPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		side, err := workspace.ParseSide(payload.Side)
		if err != nil {
			return ackResult{}, invalidSide(payload.Side)
		}
		return ok, c.session.Focus(side)

	case "workspace.set_split":
		var payload splitPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		if payload.Ratio == nil {
			return ackResult{}, invalidArgument("ratio is required")
		}
		return ok, c.session.SetSplit(*payload.Ratio)

	case "workspace.set_stage":
		var payload stagePayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		ctx, cancel := context.WithTimeout(c.ctx, timeouts.StoreCall)
		defer cancel()
		loaded, err := c.session.SetStage(ctx, panel.Stage(strings.ToLower(strings.TrimSpace(payload.Stage))))
		if err != nil {
			return ackResult{}, err
		}
		return withLayout(ok, loaded.Layout, loaded.FromTemplate), nil

	case "layout.save":
		var payload layoutSavePayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		ctx, cancel := context.WithTimeout(c.ctx, timeouts.StoreCall)
		defer cancel()
		saved, err := c.session.SaveLayout(ctx, session.SaveLayoutInput{
			Name:        payload.Name,
			Description: payload.Description,
			ForStage:    payload.ForStage,
			IsDefault:   payload.IsDefault,
		})
		if err != nil {
			return ackResult{}, err
		}
		return withLayout(ok, saved, false), nil

	case "layout.load":
		var payload layoutIDPayload
		if err := decodePayload(frame.Payload, &payload); err != nil {
			return ackResult{}, err
		}
		ctx, cancel := context.WithTimeout(c.ctx, timeouts.StoreCall)
		defer cancel()
		loaded, err := c.session.LoadLayout(ctx, strings.TrimSpace(payload.LayoutID))
		if err != nil {
			return ackResult{}, err
		}
		return withLayout(ok, loaded, false), nil

	case "layout.load_default":
		ctx, cancel := context.WithTimeout(c.ctx, timeouts.StoreCall)
		defer cancel()
		loaded, err := c.session.LoadDefault(ctx)
		if err != nil {
			return ackResult{}, err
		}
		return withLayout(ok, loaded.Layout, loaded.FromTemplate), nil

	default:
		return ackResult{}, errUnsupportedFrame
	}
}

func withLayout(result ackResult, layout storage.Layout, fromTemplate bool) ackResult {
	converted := tools.NewLayoutResult(layout)
	result.Layout = &converted
	result.FromTemplate = fromTemplate
	return result
}

func decodePayload(data json.RawMessage, target any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return invalidArgument("invalid payload")
	}
	return nil
}

type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func invalidArgument(message string) error {
	return &requestError{code: codeInvalidArgument, message: message}
}

func invalidSide(value string) error {
	return apperrors.WithMetadata(apperrors.CodeWorkspaceInvalidSide, "invalid side", map[string]string{"Side": value})
}

func parseOptionalSide(value string) (workspace.Side, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	side, err := workspace.ParseSide(value)
	if err != nil {
		return "", invalidSide(value)
	}
	return side, nil
}

// writeError reports err to the peer. Coded domain errors carry their code
// and a message in the connection locale.
func (c *wsConn) writeError(requestID string, err error) error {
	var fe *requestError
	if errors.As(err, &fe) {
		return writeWSError(c.peer, requestID, fe.code, fe.message)
	}
	if errors.Is(err, errUnsupportedFrame) {
		return writeWSError(c.peer, requestID, codeInvalidArgument, err.Error())
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		log.Printf("workspace: frame failed: %v", err)
		return writeWSError(c.peer, requestID, codeInternal, "request failed")
	}
	retryable := domainErr.Code == apperrors.CodeLayoutStoreUnavailable
	if retryable {
		log.Printf("workspace: frame failed: %v", err)
	}
	return c.peer.writePayload(frameError, requestID, wsErrorEnvelope{Error: wsError{
		Code:      string(domainErr.Code),
		Message:   apperrors.LocalizedMessage(err, c.locale),
		Retryable: retryable,
		Details:   domainErr.Metadata,
	}})
}
