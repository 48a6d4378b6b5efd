// Package docxtpl repairs and renders the mustache-like placeholder syntax
// used in WordprocessingML templates.
//
// Word processors split a typed `{{nome}}` across several formatting runs, so
// raw parts rarely contain a clean token. Normalize walks the markup with a
// tag-aware scanner and reassembles each placeholder into its canonical form
// (`{{name}}`, `{{#name}}`, `{{/name}}`). Render then tokenizes the normalized
// markup, builds a tree that nests loop bodies, and renders it against a
// Context. RenderPackage applies both steps to every templated part of a .docx
// archive.
//
// Rendering is pure: identical markup and context always produce identical
// bytes. Unknown paths and empty loops render as nothing.
package docxtpl
