package screen

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kass/go-city-map/pkg/location"
)

// permissionMsg asks the running screen to put a permission question to the
// user. The answer goes back on reply.
type permissionMsg struct {
	kind  location.Kind
	reply chan location.Decision
}

// Permission is a location.Permission answered on the device screen itself,
// for when the terminal belongs to the running program.
type Permission struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Attach connects the permission to a running program, usually with
// (*tea.Program).Send
func (p *Permission) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Permission) Request(ctx context.Context, kind location.Kind) (location.Decision, error) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send == nil {
		return location.Denied, fmt.Errorf("ask for %s: no screen attached: %w", kind, location.ErrUnsupported)
	}

	reply := make(chan location.Decision, 1)
	go send(permissionMsg{kind: kind, reply: reply})

	select {
	case <-ctx.Done():
		return location.Denied, ctx.Err()
	case d := <-reply:
		return d, nil
	}
}
