// Package segmenter splits a streamed LLM reply into speakable sentences and
// clipboard-bound blocks.
//
// Clipboard blocks are delimited either by a configurable pair of literal
// markers (default "-CLIPSTART-" / "-CLIPEND-") or by triple-backtick code
// fences. Everything else is cut into sentences at terminal punctuation
// followed by whitespace, or at a newline. Once the input is exhausted the
// remaining buffer is flushed and the whole untouched reply is emitted as a
// single full_response event.
package segmenter
