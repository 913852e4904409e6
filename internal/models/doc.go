// Package models lists the OpenAI models available to an API key, split
// into the chat models usable for translation and the speech models usable
// for audio.
package models
