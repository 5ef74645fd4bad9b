package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/panjf2000/ants/v2"
)

var ErrNoPrinter = errors.New("aucune imprimante configurée pour ce restaurant")

// Dispatcher sends framed tickets to network printers over raw TCP.
// The pool bounds how many printers are written to at once.
type Dispatcher struct {
	pool    *ants.Pool
	timeout time.Duration
}

func NewDispatcher(workers int, timeout time.Duration) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 4
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("printer pool: %w", err)
	}
	return &Dispatcher{pool: pool, timeout: timeout}, nil
}

// Print writes data to addr and waits for the write to finish.
func (d *Dispatcher) Print(ctx context.Context, addr string, data []byte) error {
	if addr == "" {
		return ErrNoPrinter
	}
	done := make(chan error, 1)
	if err := d.pool.Submit(func() {
		done <- d.send(ctx, addr, data)
	}); err != nil {
		return fmt.Errorf("submit print job: %w", err)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) send(ctx context.Context, addr string, data []byte) error {
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect printer %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(d.timeout))
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write printer %s: %w", addr, err)
	}
	return nil
}

// Probe reports whether the printer at addr accepts connections.
func (d *Dispatcher) Probe(ctx context.Context, addr string) error {
	if addr == "" {
		return ErrNoPrinter
	}
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (d *Dispatcher) Release() {
	d.pool.Release()
}
