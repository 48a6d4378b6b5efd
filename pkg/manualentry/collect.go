package manualentry

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-quotefill/pkg/proposal"
)

// DefaultMaxRows caps the number of proposals asked for interactively.
const DefaultMaxRows = 5

// AutomaticSelection is the first option of the winner prompt; picking it
// leaves the choice to the lowest-value rule.
const AutomaticSelection = "Menor valor (automático)"

// Entry holds what the user typed in.
type Entry struct {
	Proposals   []proposal.Proposal
	Description string
}

// Option configures a Collector.
type Option func(*Collector)

// WithMaxRows overrides DefaultMaxRows.
func WithMaxRows(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// WithoutDescription skips the object description prompt.
func WithoutDescription() Option {
	return func(c *Collector) {
		c.askDescription = false
	}
}

// Collector walks the user through manual proposal entry.
type Collector struct {
	driver         PromptDriver
	maxRows        int
	askDescription bool
}

// New constructs a Collector. A nil driver selects the survey terminal
// driver.
func New(driver PromptDriver, opts ...Option) *Collector {
	if driver == nil {
		driver = NewSurveyDriver(nil)
	}
	c := &Collector{driver: driver, maxRows: DefaultMaxRows, askDescription: true}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collect asks for proposals until the user declines another one or the row
// cap is reached, then for an optional winner and object description. Rows
// left entirely blank are dropped.
func (c *Collector) Collect(ctx context.Context) (Entry, error) {
	if err := c.driver.Info(ctx, "Propostas manuais: deixe em branco o que não souber."); err != nil {
		return Entry{}, err
	}

	var rows []proposal.Proposal
	for len(rows) < c.maxRows {
		message := "Adicionar uma proposta manual?"
		if len(rows) > 0 {
			message = "Adicionar outra proposta?"
		}
		more, err := c.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: len(rows) == 0})
		if err != nil {
			return Entry{}, err
		}
		if !more {
			break
		}
		row, err := c.askProposal(ctx, proposal.DefaultLabel(len(rows)+1))
		if err != nil {
			return Entry{}, err
		}
		if !row.Relevant() {
			if err := c.driver.Info(ctx, "Proposta vazia ignorada."); err != nil {
				return Entry{}, err
			}
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) > 1 {
		if err := c.askWinner(ctx, rows); err != nil {
			return Entry{}, err
		}
	}

	entry := Entry{Proposals: rows}
	if c.askDescription {
		description, err := c.driver.TextArea(ctx, TextAreaConfig{
			Message: "Descrição do objeto (opcional)",
			Help:    "Usada no documento no lugar da descrição gerada.",
		})
		if err != nil {
			return Entry{}, err
		}
		entry.Description = strings.TrimSpace(description)
	}
	return entry, nil
}

func (c *Collector) askProposal(ctx context.Context, label string) (proposal.Proposal, error) {
	prompts := []struct {
		message   string
		validator func(string) error
	}{
		{message: label + ": ofertante"},
		{message: label + ": CNPJ/CPF"},
		{message: label + ": data da cotação"},
		{message: label + ": valor", validator: validateAmount},
		{message: label + ": observação"},
	}
	answers := make([]string, len(prompts))
	for i, p := range prompts {
		answer, err := c.driver.Input(ctx, InputConfig{Message: p.message, Validator: p.validator})
		if err != nil {
			return proposal.Proposal{}, err
		}
		answers[i] = strings.TrimSpace(answer)
	}
	return proposal.Proposal{
		Label:  label,
		Bidder: answers[0],
		TaxID:  answers[1],
		Date:   answers[2],
		Value:  proposal.ParseAmount(answers[3]),
		Note:   answers[4],
	}, nil
}

func (c *Collector) askWinner(ctx context.Context, rows []proposal.Proposal) error {
	options := make([]string, 0, len(rows)+1)
	options = append(options, AutomaticSelection)
	for _, row := range rows {
		option := row.Label
		if proposal.Filled(row.Bidder) {
			option += ": " + row.Bidder
		}
		if row.Value.Filled() {
			option += " (" + row.Value.Display() + ")"
		}
		options = append(options, option)
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: "Proposta selecionada", Options: options})
	if err != nil {
		return err
	}
	if idx > 0 && idx <= len(rows) {
		rows[idx-1].Marked = true
	}
	return nil
}

func validateAmount(raw string) error {
	if !proposal.Filled(raw) {
		return nil
	}
	if !proposal.ParseAmount(raw).Valid {
		return fmt.Errorf("valor %q não reconhecido", raw)
	}
	return nil
}
