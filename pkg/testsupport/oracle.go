package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-quotefill/pkg/extraction"
)

// Reply is one scripted oracle answer. Err takes precedence over Body.
type Reply struct {
	Body string
	Err  error
}

// StubOracle replays scripted replies in order and repeats the last one once
// the script runs out. With Files set it also acts as an extraction.FileStore.
type StubOracle struct {
	mu sync.Mutex

	Replies []Reply
	Files   bool

	calls    []extraction.Call
	uploaded []string
	released []string
}

var (
	_ extraction.Oracle    = (*StubOracle)(nil)
	_ extraction.FileStore = (*StubOracle)(nil)
)

// NewStubOracle returns an oracle answering with bodies in order.
func NewStubOracle(bodies ...string) *StubOracle {
	replies := make([]Reply, len(bodies))
	for i, body := range bodies {
		replies[i] = Reply{Body: body}
	}
	return &StubOracle{Replies: replies}
}

// Extract records the call and returns the next scripted reply.
func (o *StubOracle) Extract(_ context.Context, call extraction.Call) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, call)
	if len(o.Replies) == 0 {
		return []byte(`{"propostas":[]}`), nil
	}
	idx := min(len(o.calls), len(o.Replies)) - 1
	reply := o.Replies[idx]
	if reply.Err != nil {
		return nil, reply.Err
	}
	return []byte(reply.Body), nil
}

// Upload hands out an in-memory handle. It fails when Files is false so the
// stub can stand in for oracles without file support.
func (o *StubOracle) Upload(_ context.Context, source extraction.Source) (extraction.FileRef, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Files {
		return extraction.FileRef{}, fmt.Errorf("testsupport: uploads disabled")
	}
	o.uploaded = append(o.uploaded, source.Name)
	name := fmt.Sprintf("files/%d", len(o.uploaded))
	return extraction.FileRef{Source: source.Name, Name: name, URI: "mem://" + name, MIMEType: source.MIMEType}, nil
}

// Release records that a handle was freed.
func (o *StubOracle) Release(_ context.Context, ref extraction.FileRef) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.released = append(o.released, ref.Name)
	return nil
}

// Calls returns the recorded calls.
func (o *StubOracle) Calls() []extraction.Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]extraction.Call(nil), o.calls...)
}

// Uploaded returns the source names that were uploaded.
func (o *StubOracle) Uploaded() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.uploaded...)
}

// Released returns the handle names that were released.
func (o *StubOracle) Released() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.released...)
}

// CompleteAnswer is an oracle reply with three fully filled proposals whose
// lowest value belongs to the second bidder.
const CompleteAnswer = `{
  "propostas": [
    {"selecao": "Cotação 1", "ofertante": "Alfa Comércio", "cnpj_cpf": "11.111.111/0001-11", "data_cotacao": "10/03/2025", "valor": "R$ 500,00"},
    {"selecao": "Cotação 2", "ofertante": "Beta & Cia", "cnpj_cpf": "22.222.222/0001-22", "data_cotacao": "11/03/2025", "valor": "R$ 300,00"},
    {"selecao": "Cotação 3", "ofertante": "Gama Ltda", "cnpj_cpf": "33.333.333/0001-33", "data_cotacao": "12/03/2025", "valor": "R$ 700,00"}
  ],
  "objeto_rascunho": "Aquisição de reagentes para o laboratório",
  "avisos": ["Cotação 3 sem assinatura."]
}`

// EmptyAnswer is a valid reply with no proposals.
const EmptyAnswer = `{"propostas": [], "objeto_rascunho": null, "avisos": []}`
