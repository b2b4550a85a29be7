package command

import (
	"context"
	"fmt"
	"io"

	"vehicle-emulator/internal/logger"
)

// Handler receives one raw command line. reply must be called exactly once
// with the outcome; it may be called from any goroutine.
type Handler func(line string, reply func(error))

// Console is the operator line protocol shared by the serial port and stdin:
// one command per line in, one "OK" or "ERR: <reason>" line out.
type Console struct {
	name    string
	r       io.Reader
	w       io.Writer
	logger  *logger.Logger
	handle  Handler
	replies chan string
}

func NewConsole(name string, r io.Reader, w io.Writer, l *logger.Logger, handle Handler) *Console {
	return &Console{
		name:    name,
		r:       r,
		w:       w,
		logger:  l,
		handle:  handle,
		replies: make(chan string, 16),
	}
}

// Run blocks until ctx is cancelled or the reader is exhausted.
func (c *Console) Run(ctx context.Context) error {
	c.logger.Infof("Console %s ready", c.name)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeReplies(runCtx)
	}()

	err := ReadLines(runCtx, c.r, func(line string) {
		c.logger.Debugf("Console %s received: %s", c.name, line)
		c.handle(line, c.reply)
	})
	cancel()
	<-done

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("console %s: %w", c.name, err)
	}
	return nil
}

func (c *Console) reply(err error) {
	msg := "OK"
	if err != nil {
		msg = "ERR: " + err.Error()
	}
	select {
	case c.replies <- msg:
	default:
		c.logger.Warnf("Console %s reply dropped: %s", c.name, msg)
	}
}

func (c *Console) writeReplies(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Drain what is already queued
			for {
				select {
				case msg := <-c.replies:
					c.write(msg)
				default:
					return
				}
			}
		case msg := <-c.replies:
			c.write(msg)
		}
	}
}

func (c *Console) write(msg string) {
	if c.w == nil {
		return
	}
	if _, err := io.WriteString(c.w, msg+"\r\n"); err != nil {
		c.logger.Warnf("Console %s write failed: %v", c.name, err)
	}
}
