package wsaudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/voice/audio"
)

var ErrPeerClosed = errors.New("wsaudio: peer closed")

type Options struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	ReadLimit    int64
	// Buffer de frames salientes.
	QueueSize int
	Logger    logger.Logger
}

func (o Options) withDefaults() Options {
	if o.PingInterval <= 0 {
		o.PingInterval = 20 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	o.Logger = logger.OrNop(o.Logger)
	return o
}

type wsConn interface {
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Peer es el navegador del otro lado del websocket: cola de salida con una
// sola goroutine escritora (ping + deadlines) y un lector que reparte los
// frames de micrófono a la captura activa.
type Peer struct {
	ws   wsConn
	opts Options
	log  logger.Logger
	now  func() time.Time

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	micReply chan error
	capture  *captureStream
}

func NewPeer(ws *websocket.Conn, opts Options) *Peer {
	return newPeer(ws, opts)
}

func newPeer(ws wsConn, opts Options) *Peer {
	opts = opts.withDefaults()
	return &Peer{
		ws:   ws,
		opts: opts,
		log:  opts.Logger,
		now:  time.Now,
		out:  make(chan []byte, opts.QueueSize),
		done: make(chan struct{}),
	}
}

// Serve corre escritor y lector hasta que ctx se cancele o el cliente
// cierre. onControl recibe los mensajes de texto que no son del micrófono
// (session.start, session.stop, ...), desde la goroutine lectora.
func (p *Peer) Serve(ctx context.Context, onControl func(ClientMessage)) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.writeLoop(gctx) })
	g.Go(func() error {
		err := p.readLoop(onControl)
		p.shutdown()
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-p.done:
		}
		p.shutdown()
		// ReadMessage no recibe ctx: cerrar el socket lo desbloquea.
		_ = p.ws.Close()
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, ErrPeerClosed) {
		return nil
	}
	return err
}

// Send encola un mensaje JSON. Nunca bloquea más que lo que tarda en haber
// lugar en la cola.
func (p *Peer) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wsaudio: marshal: %w", err)
	}
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	select {
	case p.out <- b:
		return nil
	case <-p.done:
		return ErrPeerClosed
	}
}

// SendError es un atajo para {type:"error", message}.
func (p *Peer) SendError(msg string) error {
	return p.Send(map[string]string{"type": TypeError, "message": msg})
}

func (p *Peer) shutdown() {
	p.closeOnce.Do(func() {
		close(p.done)

		p.mu.Lock()
		if p.micReply != nil {
			p.micReply <- ErrPeerClosed
			p.micReply = nil
		}
		c := p.capture
		p.capture = nil
		p.mu.Unlock()

		if c != nil {
			c.closeLocal()
		}
	})
}

func (p *Peer) writeLoop(ctx context.Context) error {
	ping := time.NewTicker(p.opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(p.opts.WriteTimeout))
			return nil
		case <-p.done:
			return nil
		case <-ping.C:
			if err := p.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(p.opts.WriteTimeout)); err != nil {
				return err
			}
		case b := <-p.out:
			if err := p.ws.SetWriteDeadline(time.Now().Add(p.opts.WriteTimeout)); err != nil {
				return err
			}
			if err := p.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return err
			}
		}
	}
}

func (p *Peer) readLoop(onControl func(ClientMessage)) error {
	p.ws.SetReadLimit(p.opts.ReadLimit)
	readTimeout := 3 * p.opts.PingInterval
	_ = p.ws.SetReadDeadline(time.Now().Add(readTimeout))
	p.ws.SetPongHandler(func(string) error {
		return p.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		mt, data, err := p.ws.ReadMessage()
		if err != nil {
			return err
		}
		_ = p.ws.SetReadDeadline(time.Now().Add(readTimeout))

		switch mt {
		case websocket.BinaryMessage:
			p.onMicSamples(data)
		case websocket.TextMessage:
			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				p.log.Warn("invalid client frame", map[string]any{"err": err})
				continue
			}
			switch msg.Type {
			case TypeMicReady:
				p.resolveMic(nil)
			case TypeMicDenied:
				p.resolveMic(micError(msg.Reason))
			default:
				if onControl != nil {
					onControl(msg)
				}
			}
		}
	}
}

func micError(reason string) error {
	switch reason {
	case ReasonNotFound:
		return audio.ErrNoDevice
	default:
		return fmt.Errorf("%w: %s", audio.ErrPermissionDenied, reason)
	}
}

func (p *Peer) resolveMic(err error) {
	p.mu.Lock()
	reply := p.micReply
	p.micReply = nil
	p.mu.Unlock()

	if reply != nil {
		reply <- err
	}
}

func (p *Peer) onMicSamples(data []byte) {
	samples, err := decodeSamples(data)
	if err != nil {
		p.log.Warn("invalid mic frame", map[string]any{"err": err, "bytes": len(data)})
		return
	}

	p.mu.Lock()
	c := p.capture
	p.mu.Unlock()
	if c != nil {
		c.push(samples)
	}
}
