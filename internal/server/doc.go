// Package server implements the translation endpoint.
//
// POST /traducir accepts {"texto": "..."} and answers with the hiragana,
// romanji, Spanish translation and pronunciation of the text produced by a
// translation backend. When a speech provider is configured, a spoken clip
// is synthesised and served from GET /audio/:id until it expires.
package server
