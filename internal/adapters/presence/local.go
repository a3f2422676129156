// Package presence carries presence events between meeting server instances.
package presence

import (
	"context"
	"errors"
	"sync"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

var ErrClosed = errors.New("presence bus closed")

type localSub struct {
	id uint64
	fn func(core.PresenceEvent)
}

// LocalBus delivers synchronously to subscribers of the same process.
type LocalBus struct {
	mu     sync.RWMutex
	seq    uint64
	subs   map[domain.MeetingCode][]localSub
	closed bool
}

var _ core.PresenceBus = (*LocalBus)(nil)

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[domain.MeetingCode][]localSub)}
}

func (b *LocalBus) Publish(_ context.Context, ev core.PresenceEvent) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	subs := append([]localSub(nil), b.subs[ev.Code]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
	return nil
}

func (b *LocalBus) Subscribe(_ context.Context, code domain.MeetingCode, fn func(core.PresenceEvent)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.seq++
	id := b.seq
	b.subs[code] = append(b.subs[code], localSub{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(code, id) })
	}, nil
}

func (b *LocalBus) remove(code domain.MeetingCode, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[code]
	for i, s := range subs {
		if s.id == id {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.subs, code)
		return
	}
	b.subs[code] = subs
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[domain.MeetingCode][]localSub)
	return nil
}
