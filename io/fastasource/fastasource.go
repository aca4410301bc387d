/*
Package fastasource is the default peptidesource.Source implementation:
it parses a FASTA protein database and digests each protein with a
configured enzyme, following poly's io/<format> directory convention
(io/slow5 in the teacher repo) for format-specific parsers.
*/
package fastasource

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/crux-ms/xlink/digest"
)

// Protein is one parsed FASTA record.
type Protein struct {
	ID       string
	Sequence string
}

// ParseFasta reads FASTA records from r. Headers are split on the first
// whitespace run; everything before it becomes the protein ID.
func ParseFasta(r io.Reader) ([]Protein, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var proteins []Protein
	var cur *Protein
	var seq strings.Builder

	flush := func() {
		if cur != nil {
			cur.Sequence = seq.String()
			proteins = append(proteins, *cur)
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			header := strings.TrimPrefix(line, ">")
			id := header
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				id = header[:i]
			}
			cur = &Protein{ID: id}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("fastasource: sequence data before any header")
		}
		seq.WriteString(strings.ToUpper(line))
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("fastasource: scan failed: %w", err)
	}
	if len(proteins) == 0 {
		return nil, fmt.Errorf("fastasource: no protein records found")
	}
	return proteins, nil
}

// Source is a peptidesource.Source backed by an in-memory parsed FASTA
// database, digested eagerly at construction time.
type Source struct {
	proteins map[string]string
	entries  []digest.UnmodifiedPeptide
	pos      int
}

// New digests every protein in proteins with enzyme/spec/budget/length
// bounds and returns a ready-to-iterate Source.
func New(proteins []Protein, enzyme digest.Enzyme, spec digest.Specificity, budget, minLength, maxLength int) *Source {
	s := &Source{proteins: make(map[string]string, len(proteins))}
	for _, p := range proteins {
		s.proteins[p.ID] = p.Sequence
		s.entries = append(s.entries, digest.Digest(p.ID, p.Sequence, enzyme, spec, budget, minLength, maxLength)...)
	}
	return s
}

// NewFromReader parses FASTA from r and digests it in one step.
func NewFromReader(r io.Reader, enzyme digest.Enzyme, spec digest.Specificity, budget, minLength, maxLength int) (*Source, error) {
	proteins, err := ParseFasta(r)
	if err != nil {
		return nil, err
	}
	return New(proteins, enzyme, spec, budget, minLength, maxLength), nil
}

// Next implements peptidesource.Source.
func (s *Source) Next() (digest.UnmodifiedPeptide, bool, error) {
	if s.pos >= len(s.entries) {
		return digest.UnmodifiedPeptide{}, false, nil
	}
	p := s.entries[s.pos]
	s.pos++
	return p, true, nil
}

// ProteinSequence implements peptidesource.Source.
func (s *Source) ProteinSequence(proteinID string) (string, bool) {
	seq, ok := s.proteins[proteinID]
	return seq, ok
}

// Reset rewinds the iterator to the beginning.
func (s *Source) Reset() {
	s.pos = 0
}

// Count returns the total number of digested peptide entries.
func (s *Source) Count() int {
	return len(s.entries)
}
