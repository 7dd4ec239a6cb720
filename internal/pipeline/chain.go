package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/planweave/internal/plan"
)

// Chain is one annotated reasoning chain as produced by the text-extraction
// front end. Question is dataset metadata and is carried through untouched.
type Chain struct {
	PlanID   string      `json:"plan_id,omitempty"`
	Question string      `json:"question,omitempty"`
	Steps    []plan.Step `json:"steps"`
}

// ReadChains decodes a corpus of chains from r. Both encodings used in the
// wild are accepted: a single JSON array, or JSON Lines with one chain per
// line. Blank lines are skipped.
func ReadChains(r io.Reader) ([]Chain, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chains: %w", err)
	}

	if first == '[' {
		var chains []Chain
		if err := json.NewDecoder(br).Decode(&chains); err != nil {
			return nil, fmt.Errorf("read chains: %w", err)
		}
		return chains, nil
	}

	var chains []Chain
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var c Chain
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("read chains: line %d: %w", line, err)
		}
		chains = append(chains, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chains: %w", err)
	}
	return chains, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}
