package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
)

// Deltas lazily decodes a server-sent-event completion body into its text
// deltas. Each "data:" line is parsed as a chat completion chunk and yields
// choices[0].delta.content. A "[DONE]" line or EOF ends the sequence.
// Lines that are not data lines, or whose payload is not valid JSON, are
// skipped. A read failure or ctx cancellation yields a single error and stops.
//
// Lines are read whole regardless of length.
func Deltas(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		br := bufio.NewReader(r)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			line, readErr := br.ReadBytes('\n')
			if len(line) > 0 {
				delta, done := parseEventLine(line)
				if done {
					return
				}
				if delta != "" && !yield(delta, nil) {
					return
				}
			}

			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					return
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					readErr = ctxErr
				}
				yield("", readErr)
				return
			}
		}
	}
}

// parseEventLine returns the delta carried by one line, and whether the line
// is the end-of-stream marker.
func parseEventLine(line []byte) (delta string, done bool) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, dataPrefix) {
		return "", false
	}

	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if bytes.Equal(payload, doneMarker) {
		return "", true
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, false
}

// Collect concatenates every delta in order. On error it discards what was
// accumulated and returns only the error.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for delta, err := range seq {
		if err != nil {
			return "", err
		}
		sb.WriteString(delta)
	}
	return sb.String(), nil
}
