package chatexport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotArchive is returned when the document is not a JSON array of conversations
var ErrNotArchive = errors.New("archive must be a JSON array of conversations")

// ParseFile parses an exported conversations.json file
func ParseFile(path string) (conversations []Conversation, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return Parse(file)
}

// Parse decodes an archive one conversation at a time so large exports are
// never held twice in memory.
func Parse(r io.Reader) ([]Conversation, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotArchive
		}
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, ErrNotArchive
	}

	conversations := make([]Conversation, 0)
	index := 0
	for dec.More() {
		var conv Conversation
		if err := dec.Decode(&conv); err != nil {
			return nil, fmt.Errorf("conversation %d: failed to parse JSON: %w", index, err)
		}
		conversations = append(conversations, conv)
		index++
	}

	// Consume the closing bracket
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read archive end: %w", err)
	}

	return conversations, nil
}
