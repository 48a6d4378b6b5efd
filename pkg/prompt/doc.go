// Package prompt renders the instructions sent to the extraction oracle. The
// templates are pongo2 files embedded in the binary; callers may layer their
// own fs.FS or directory on top to override them by name.
package prompt
