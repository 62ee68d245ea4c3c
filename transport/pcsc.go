package transport

import (
	"fmt"
	"sync"

	"github.com/ebfe/scard"
)

// PCSC adapts a real PC/SC reader connection into the Endpoint contract.
//
// A genuine contact/contactless interface on a secure element is driven by
// the reader's own T=0/T=1 framing layer, not by a host-side PC/SC client;
// ebfe/scard (the teacher's own dependency) is a *host*-side API. This
// adapter uses it the other way around from the teacher's card/reader.go:
// it drives a real reader as a conformance oracle. Inject queues a
// host-originated command exactly as a hardware ingress would; once the
// dispatcher answers via Respond, MirrorToCard optionally replays the same
// command against a physically inserted reference card over the real
// PC/SC link so the dispatcher's reply can be diffed against genuine card
// behavior in integration tests. The Endpoint state machine itself never
// touches the card; only MirrorToCard does.
type PCSC struct {
	mu      sync.Mutex
	state   State
	pending []byte
	last    []byte

	ctx  *scard.Context
	card *scard.Card
	name string
}

// ConnectPCSC opens a PC/SC context and connects to the card in the reader
// at readerIndex, mirroring card.Connect/card.ConnectFirst's idiom of establishing
// a context, listing readers, and validating the requested index.
func ConnectPCSC(readerIndex int) (*PCSC, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to establish PC/SC context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("failed to list readers: %w", err)
	}
	if len(readers) == 0 {
		ctx.Release()
		return nil, fmt.Errorf("no smart card readers found")
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		ctx.Release()
		return nil, fmt.Errorf("reader index %d out of range (0-%d)", readerIndex, len(readers)-1)
	}

	name := readers[readerIndex]
	card, err := ctx.Connect(name, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("failed to connect to card in reader '%s': %w", name, err)
	}

	return &PCSC{state: Idle, ctx: ctx, card: card, name: name}, nil
}

// ListPCSCReaders enumerates available PC/SC readers, releasing the
// context immediately afterward.
func ListPCSCReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to establish PC/SC context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("failed to list readers: %w", err)
	}
	return readers, nil
}

// Name returns the underlying reader name.
func (p *PCSC) Name() string {
	return p.name
}

// Close releases the card connection and the PC/SC context.
func (p *PCSC) Close() error {
	var err error
	if p.card != nil {
		err = p.card.Disconnect(scard.LeaveCard)
	}
	if p.ctx != nil {
		p.ctx.Release()
	}
	return err
}

// Inject queues a host-originated command, moving Idle -> Requested.
func (p *PCSC) Inject(apdu []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle {
		return fmt.Errorf("transport: inject while endpoint is not idle")
	}
	p.pending = apdu
	p.state = Requested
	return nil
}

func (p *PCSC) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PCSC) TakeRequest() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Requested {
		return nil, false
	}
	req := p.pending
	p.pending = nil
	p.state = Processing
	return req, true
}

func (p *PCSC) Respond(msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Processing {
		return ErrNotProcessing
	}
	p.last = msg
	p.state = Responded
	return nil
}

// Sent drains the last response, resetting Responded -> Idle.
func (p *PCSC) Sent() ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Responded {
		return nil, false
	}
	msg := p.last
	p.last = nil
	p.state = Idle
	return msg, true
}

// MirrorToCard replays apdu against the physically attached reference card
// and returns its raw response, for conformance comparison against the
// dispatcher's own answer. It does not touch the Endpoint state machine.
func (p *PCSC) MirrorToCard(apdu []byte) ([]byte, error) {
	resp, err := p.card.Transmit(apdu)
	if err != nil {
		return nil, fmt.Errorf("mirror transmit failed: %w", err)
	}
	return resp, nil
}
