// Package translation holds the /traducir wire contract shared by the client
// and the server, the HTTP client used by the request handler, and the
// model-backed translators (OpenAI, Gemini) the server answers with.
package translation
