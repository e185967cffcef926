package generation

import (
	"context"
	"strings"
	"sync"
	"time"
)

type PanelResult struct {
	Sequence  uint64    `json:"sequence"`
	Action    Action    `json:"action"`
	Response  *Response `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	At        time.Time `json:"at"`
}

type PanelState struct {
	Tool       Action       `json:"tool,omitempty"`
	Generating bool         `json:"generating"`
	Issued     uint64       `json:"issued"`
	Result     *PanelResult `json:"result,omitempty"`
}

// Panel tracks the selected tool and the latest visible result across
// overlapping submissions. Each submission gets a sequence number; a result is
// published only if no newer submission was issued meanwhile.
type Panel struct {
	gen Generator
	now func() time.Time

	mu     sync.Mutex
	tool   Action
	issued uint64
	busy   bool
	result *PanelResult
}

func NewPanel(gen Generator) *Panel {
	return &Panel{gen: gen, now: time.Now}
}

// Submit runs one generation. The returned result is the caller's own even
// when it lost the race; published reports whether it became visible.
func (p *Panel) Submit(ctx context.Context, action Action, prompt string) (res PanelResult, published bool, err error) {
	a, err := ParseAction(string(action))
	if err != nil {
		return PanelResult{}, false, err
	}
	if strings.TrimSpace(prompt) == "" {
		return PanelResult{}, false, &Error{Kind: InvalidInput, Err: ErrEmptyPrompt}
	}

	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.tool = a
	p.busy = true
	p.mu.Unlock()

	res = PanelResult{Sequence: seq, Action: a}
	defer func() {
		res.At = p.now()
		p.mu.Lock()
		defer p.mu.Unlock()
		if seq != p.issued {
			return
		}
		// Runs on panic too, so the latest request never leaves the panel busy.
		p.busy = false
		r := res
		p.result = &r
		published = true
	}()

	resp, err := p.gen.Generate(ctx, Request{Action: a, UserPrompt: prompt})
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = KindOf(err)
		return res, false, err
	}
	res.Response = &resp
	return res, false, nil
}

// Select changes the highlighted tool without generating.
func (p *Panel) Select(action Action) error {
	a, err := ParseAction(string(action))
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.tool = a
	p.mu.Unlock()
	return nil
}

func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := PanelState{Tool: p.tool, Generating: p.busy, Issued: p.issued}
	if p.result != nil {
		r := *p.result
		st.Result = &r
	}
	return st
}
