// Command seqcore-bench wires FASTA input to the actree dictionary
// matcher and the pairwise aligner: parse flags, read input, print
// results to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"

	"github.com/grailbio/seqcore/actree"
	"github.com/grailbio/seqcore/align"
	"github.com/grailbio/seqcore/encoding/fasta"
	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

var (
	dictPath    = flag.String("dict", "", "FASTA file of constant-width dictionary patterns")
	subjectPath = flag.String("subject", "", "FASTA file containing the subject sequence(s) to scan")
	align1      = flag.String("align1", "", "FASTA file with one pattern sequence for pairwise alignment (optional)")
	align2      = flag.String("align2", "", "FASTA file with one subject sequence for pairwise alignment (optional)")
	gapOpen     = flag.Float64("gap-open", -10, "gap opening penalty (non-positive)")
	gapExtend   = flag.Float64("gap-extend", -1, "gap extension penalty (non-positive)")
	match       = flag.Float64("match", 1, "match score")
	mismatch    = flag.Float64("mismatch", -1, "mismatch score")
)

func readFasta(path string) (fasta.Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return fasta.Records{}, err
	}
	defer f.Close()
	return fasta.Read(f)
}

func runScan() error {
	dict, err := readFasta(*dictPath)
	if err != nil {
		return err
	}
	subject, err := readFasta(*subjectPath)
	if err != nil {
		return err
	}
	if dict.Set.Len() == 0 {
		return seqerr.EmptyPattern
	}
	if subject.Set.Len() == 0 {
		return seqerr.EmptySubject
	}
	patterns := make([][]byte, dict.Set.Len())
	for i := range patterns {
		patterns[i] = dict.Set.View(i).Bytes()
	}
	tree, err := actree.Build(patterns, seqio.DNACodec(), actree.Stats{})
	if err != nil {
		return err
	}
	for i := 0; i < subject.Set.Len(); i++ {
		view := subject.Set.View(i)
		tree.Scan(view, func(h actree.Hit) {
			fmt.Printf("%s\t%d\t%d\t%s\n", subject.Names[i], h.Start, h.Start+int32(tree.Width()), dict.Names[h.PatternID])
		})
	}
	return nil
}

func runAlign() error {
	patRecords, err := readFasta(*align1)
	if err != nil {
		return err
	}
	subRecords, err := readFasta(*align2)
	if err != nil {
		return err
	}
	if patRecords.Set.Len() == 0 {
		return seqerr.EmptyPattern
	}
	if subRecords.Set.Len() == 0 {
		return seqerr.EmptySubject
	}
	aligner := align.New(align.Options{
		Type:         align.Global,
		GapOpening:   *gapOpen,
		GapExtension: *gapExtend,
		Scorer:       &align.FlatScorer{Match: *match, Mismatch: *mismatch},
	})
	res, err := aligner.Align(context.Background(), patRecords.Set.View(0), subRecords.Set.View(0), nil, nil)
	if err != nil {
		return err
	}
	fmt.Printf("score: %g\n%s\n%s\n", res.Score, res.Aligned1, res.Aligned2)
	return nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *dictPath != "" && *subjectPath != "" {
		if err := runScan(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *align1 != "" && *align2 != "" {
		if err := runAlign(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
