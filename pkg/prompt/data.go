package prompt

// Source is one quotation as presented to the oracle. Attached marks sources
// whose content travels as an uploaded file rather than inline text.
type Source struct {
	Name     string `json:"name"`
	Text     string `json:"text,omitempty"`
	Attached bool   `json:"attached,omitempty"`
}

// Data feeds both the Initial and the Refine templates.
type Data struct {
	Institution string   `json:"institution,omitempty"`
	BudgetLine  string   `json:"budget_line,omitempty"`
	ProjectCode string   `json:"project_code,omitempty"`
	Sources     []Source `json:"sources"`
	Manual      string   `json:"manual,omitempty"`
	Description string   `json:"description,omitempty"`

	Attempt     int      `json:"attempt"`
	MaxAttempts int      `json:"max_attempts"`
	Previous    string   `json:"previous,omitempty"`
	Issues      []string `json:"issues,omitempty"`
}

// Name returns the template for the attempt: Initial for the first one,
// Refine afterwards.
func (d Data) Name() string {
	if d.Attempt > 1 {
		return Refine
	}
	return Initial
}
