package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Delivery modes.
const (
	ModeAsync = "async"
	ModeSync  = "sync"
	ModeOff   = "off"
)

// Options tunes the notifier.
type Options struct {
	// Mode is async, sync or off. Unknown values fall back to async.
	Mode string
	// Workers is the fixed pool size.
	Workers int
	// QueueSize bounds the pending job queue.
	QueueSize int
	// SendTimeout caps how long a request waits for delivery confirmation.
	SendTimeout time.Duration
}

type job struct {
	msg  Message
	done chan error
}

// Notifier sends decision emails off the request goroutine through a small
// fixed worker pool. A request waits at most SendTimeout for confirmation;
// after that the send keeps running in the background.
type Notifier struct {
	sender  Sender
	opts    Options
	jobs    chan job
	wg      sync.WaitGroup
	closeMu sync.Once
	log     *zap.SugaredLogger
}

// New starts the worker pool and returns the notifier.
func New(sender Sender, opts Options, log *zap.SugaredLogger) *Notifier {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 32
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 12 * time.Second
	}
	if opts.Mode != ModeSync && opts.Mode != ModeOff {
		opts.Mode = ModeAsync
	}

	n := &Notifier{
		sender: sender,
		opts:   opts,
		jobs:   make(chan job, opts.QueueSize),
		log:    log,
	}
	for i := 0; i < opts.Workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
	return n
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for j := range n.jobs {
		// Background sends get their own generous cap, independent of the
		// request-side wait.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := n.sender.Send(ctx, j.msg)
		cancel()
		if err != nil {
			n.log.Errorf("email send failed: %v", err)
		} else {
			n.log.Infof("email sent: %s", j.msg.Subject)
		}
		j.done <- err
	}
}

// Notify delivers msg according to the configured mode and returns a
// user-facing warning, empty when delivery was confirmed (or skipped).
// Failures never propagate as errors: the decision is already persisted.
func (n *Notifier) Notify(msg Message) string {
	switch n.opts.Mode {
	case ModeOff:
		n.log.Info("email mode=off, skipping send")
		return ""
	case ModeSync:
		ctx, cancel := context.WithTimeout(context.Background(), n.opts.SendTimeout)
		defer cancel()
		if err := n.sender.Send(ctx, msg); err != nil {
			n.log.Errorf("sync email send failed: %v", err)
			return fmt.Sprintf("Email send failed: %v", err)
		}
		return ""
	}

	j := job{msg: msg, done: make(chan error, 1)}
	select {
	case n.jobs <- j:
	default:
		n.log.Warn("notification queue full, send dropped")
		return "Email send failed: notification queue full"
	}

	select {
	case err := <-j.done:
		if err != nil {
			return fmt.Sprintf("Email send failed: %v", err)
		}
		return ""
	case <-time.After(n.opts.SendTimeout):
		n.log.Warnf("email send still pending after %s", n.opts.SendTimeout)
		return fmt.Sprintf("Email is sending in background (timeout %s).", n.opts.SendTimeout)
	}
}

// Close stops accepting jobs and waits for in-flight sends to finish.
func (n *Notifier) Close() {
	n.closeMu.Do(func() {
		close(n.jobs)
		n.wg.Wait()
	})
}
