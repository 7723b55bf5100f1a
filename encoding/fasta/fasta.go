// Package fasta contains a minimal FASTA reader used by cmd/seqcore-bench
// to load dictionaries and subjects into a seqio.Set. See
// http://www.htslib.org/doc/faidx.html. Briefly, FASTA files consist of a
// number of named sequences that may be interrupted by newlines. For
// example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: sequence names are defined to be the stretch of characters
// excluding spaces immediately after '>'. Any text appearing after a space
// is ignored. For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/grailbio/seqcore/seqio"
)

const mib = 1024 * 1024
const bufferInitSize = 16 * mib

// Records holds the sequences read from a FASTA file: Names in order of
// appearance, and Set giving zero-copy access to their bytes.
type Records struct {
	Names []string
	Set   seqio.Set
}

// Read parses all records out of r into memory, in the order they appear.
func Read(r io.Reader) (Records, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)

	var names []string
	var seqs [][]byte
	var name string
	var seq strings.Builder
	flush := func() error {
		if seq.Len() == 0 && name == "" {
			return nil
		}
		if name == "" {
			return errors.Errorf("fasta: sequence data before the first '>' header")
		}
		seqs = append(seqs, []byte(seq.String()))
		names = append(names, name)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return Records{}, err
			}
			name = strings.Split(line[1:], " ")[0]
		} else {
			seq.WriteString(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Records{}, errors.Wrap(err, "fasta: reading FASTA data")
	}
	if err := flush(); err != nil {
		return Records{}, err
	}
	return Records{Names: names, Set: seqio.BuildSet(seqs)}, nil
}
