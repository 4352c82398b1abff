package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/qtree/pkg/ports"
)

// Asker implements ports.Asker from a script of answers keyed by question
// name. Each prompt consumes the next queued answer for its question; a
// question without queued answers fails the run, or cancels it when
// CancelWhenExhausted is set.
type Asker struct {
	mu       sync.Mutex
	replies  map[string][]ports.Answer
	requests []ports.AskRequest

	CancelWhenExhausted bool
}

// NewAsker creates an empty script.
func NewAsker() *Asker {
	return &Asker{replies: make(map[string][]ports.Answer)}
}

// Answer queues raw values for the named question.
func (a *Asker) Answer(name string, values ...any) *Asker {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, v := range values {
		a.replies[name] = append(a.replies[name], ports.Value(v))
	}
	return a
}

// Cancel queues a cancellation for the named question.
func (a *Asker) Cancel(name string) *Asker {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies[name] = append(a.replies[name], ports.Cancel())
	return a
}

// Ask implements ports.Asker.
func (a *Asker) Ask(_ context.Context, req ports.AskRequest) (ports.Answer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, req)
	name := req.Question.Base().Name
	queue := a.replies[name]
	if len(queue) == 0 {
		if a.CancelWhenExhausted {
			return ports.Cancel(), nil
		}
		return ports.Answer{}, fmt.Errorf("no scripted answer for %q", name)
	}
	a.replies[name] = queue[1:]
	return queue[0], nil
}

// Requests returns every prompt seen so far, in order.
func (a *Asker) Requests() []ports.AskRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ports.AskRequest(nil), a.requests...)
}

// Asked returns the names of the prompted questions, in order.
func (a *Asker) Asked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.requests))
	for _, r := range a.requests {
		names = append(names, r.Question.Base().Name)
	}
	return names
}
