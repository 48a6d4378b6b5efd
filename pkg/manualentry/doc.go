// Package manualentry gathers the proposals a user types in by hand, either
// interactively through a PromptDriver or from a YAML/JSON file. The result
// feeds extraction.Request.Manual, where manual values take precedence over
// extracted ones.
package manualentry
