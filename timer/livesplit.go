package timer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	// DefaultTimeout bounds one LiveSplit Server command round trip
	DefaultTimeout = 2 * time.Second

	// DefaultRedialDelay is how long commands fail fast after a failed dial
	DefaultRedialDelay = 5 * time.Second
)

// ErrUnavailable is returned without dialing while a failed connection
// attempt is still recent
var ErrUnavailable = errors.New("livesplit unavailable")

// LiveSplit talks to a LiveSplit Server component over TCP. The connection
// is opened on first use and reopened after any failure, at most once per
// redial delay.
type LiveSplit struct {
	mu          sync.Mutex
	addr        string
	timeout     time.Duration
	redialDelay time.Duration
	dialer      net.Dialer
	conn        net.Conn
	reader      *bufio.Reader
	retryAt     time.Time
	now         func() time.Time
	log         *logger.Logger
}

func NewLiveSplit(addr string) *LiveSplit {
	return &LiveSplit{
		addr:        addr,
		timeout:     DefaultTimeout,
		redialDelay: DefaultRedialDelay,
		now:         time.Now,
		log:         logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorTeal, "livesplit")),
	}
}

func (l *LiveSplit) Start(ctx context.Context) error {
	return l.send(ctx, "starttimer")
}

func (l *LiveSplit) Split(ctx context.Context) error {
	return l.send(ctx, "split")
}

func (l *LiveSplit) PauseGameTime(ctx context.Context) error {
	return l.send(ctx, "pausegametime")
}

func (l *LiveSplit) ResumeGameTime(ctx context.Context) error {
	return l.send(ctx, "unpausegametime")
}

func (l *LiveSplit) Phase(ctx context.Context) (Phase, error) {
	reply, err := l.query(ctx, "getcurrenttimerphase")
	if err != nil {
		return PhaseNotRunning, err
	}
	return ParsePhase(reply)
}

func (l *LiveSplit) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disconnect()
}

func (l *LiveSplit) send(ctx context.Context, command string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.write(ctx, command); err != nil {
		return err
	}
	l.log.Debugln("sent", command)
	return nil
}

func (l *LiveSplit) query(ctx context.Context, command string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.write(ctx, command); err != nil {
		return "", err
	}

	line, err := l.reader.ReadString('\n')
	if err != nil {
		l.disconnect()
		return "", fmt.Errorf("livesplit %s: %w", command, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (l *LiveSplit) write(ctx context.Context, command string) error {
	if err := l.connect(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(l.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := l.conn.SetDeadline(deadline); err != nil {
		l.disconnect()
		return fmt.Errorf("livesplit deadline: %w", err)
	}

	if _, err := l.conn.Write([]byte(command + "\r\n")); err != nil {
		l.disconnect()
		return fmt.Errorf("livesplit %s: %w", command, err)
	}
	return nil
}

func (l *LiveSplit) connect(ctx context.Context) error {
	if l.conn != nil {
		return nil
	}
	if l.now().Before(l.retryAt) {
		return fmt.Errorf("connect livesplit %s: %w", l.addr, ErrUnavailable)
	}

	dialCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	conn, err := l.dialer.DialContext(dialCtx, "tcp", l.addr)
	if err != nil {
		l.retryAt = l.now().Add(l.redialDelay)
		return fmt.Errorf("connect livesplit %s: %w", l.addr, err)
	}

	l.log.Infoln("Connected to LiveSplit Server at", l.addr)
	l.retryAt = time.Time{}
	l.conn = conn
	l.reader = bufio.NewReader(conn)
	return nil
}

func (l *LiveSplit) disconnect() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	l.reader = nil
	return err
}
