// Package history keeps a sqlite log of the translations the server
// answered. The log is only read back for display; it never answers a
// translation request.
package history
