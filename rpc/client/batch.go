package client

import (
	"sync"

	"github.com/ValentinKolb/restkv/rpc/common"
	"github.com/edwingeng/deque/v2"
)

// batch is the shared state of pipelines and transactions.
// Commands are queued with PushFront and taken with PopBack, so drain returns
// them in the order they were added.
//
// A batch is single-use: once drained (i.e. sent) further adds and sends fail
// with common.ErrBatchSent.
type batch struct {
	client *Client
	path   string

	mu    sync.Mutex
	queue *deque.Deque[common.Command]
	err   error
	sent  bool
}

func newBatch(c *Client, path string) *batch {
	return &batch{
		client: c,
		path:   path,
		queue:  deque.NewDeque[common.Command](),
	}
}

// add queues the wire form of every command. The first error (encoding or
// ErrBatchSent) is remembered and returned by the next drain.
func (b *batch) add(cmds []Commander) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range cmds {
		if b.sent {
			if b.err == nil {
				b.err = common.ErrBatchSent
			}
			return
		}
		if b.err != nil {
			return
		}
		cmd, err := c.Command()
		if err != nil {
			b.err = err
			return
		}
		b.queue.PushFront(cmd)
	}
}

// len returns the number of queued commands
func (b *batch) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

// firstErr returns the remembered error (if any)
func (b *batch) firstErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// drain takes all queued commands and marks the batch as sent.
// An empty batch is not marked as sent so commands can still be added.
func (b *batch) drain() ([]common.Command, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sent {
		return nil, common.ErrBatchSent
	}
	if b.err != nil {
		return nil, b.err
	}
	if b.queue.Len() == 0 {
		return nil, common.ErrEmptyBatch
	}

	cmds := make([]common.Command, 0, b.queue.Len())
	for b.queue.Len() > 0 {
		cmds = append(cmds, b.queue.PopBack())
	}
	b.sent = true
	return cmds, nil
}
