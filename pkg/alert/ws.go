package alert

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 2 * time.Second

// WSPresenter pushes show/hide messages to a remote websocket endpoint,
// such as a helmet display or a phone companion app.
type WSPresenter struct {
	url    string
	source string

	mu   sync.Mutex
	conn *websocket.Conn
}

// DialWS connects to url.
func DialWS(ctx context.Context, url, source string) (*WSPresenter, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("alert: websocket dial %s: %w", url, err)
	}

	return &WSPresenter{url: url, source: source, conn: conn}, nil
}

// Show implements Presenter.
func (p *WSPresenter) Show(ctx context.Context) error {
	return p.send(ctx, SignalShow)
}

// Hide implements Presenter.
func (p *WSPresenter) Hide(ctx context.Context) error {
	return p.send(ctx, SignalHide)
}

func (p *WSPresenter) send(ctx context.Context, sig Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return fmt.Errorf("alert: websocket %s: closed", p.url)
	}

	deadline := time.Now().Add(wsWriteWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	p.conn.SetWriteDeadline(deadline)

	if err := p.conn.WriteJSON(newMessage(sig, p.source, time.Now())); err != nil {
		return fmt.Errorf("alert: websocket send %s: %w", sig, err)
	}
	return nil
}

// Close sends a close frame and closes the connection.
func (p *WSPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
	err := p.conn.Close()
	p.conn = nil
	return err
}
