package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFasta(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	saved := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = saved
	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), runErr
}

func TestRunScanFindsDictionaryHits(t *testing.T) {
	dir := t.TempDir()
	dict := writeTempFasta(t, dir, "dict.fa", ">p0\nACG\n>p1\nACT\n>p2\nGCA\n")
	subject := writeTempFasta(t, dir, "subject.fa", ">s0\nACGTACTGCA\n")

	*dictPath = dict
	*subjectPath = subject

	out, err := captureStdout(t, runScan)
	require.NoError(t, err)
	require.Contains(t, out, "s0\t0\t3\tp0\n")
	require.Contains(t, out, "s0\t4\t7\tp1\n")
	require.Contains(t, out, "s0\t7\t10\tp2\n")
}

func TestRunAlignReportsGlobalScore(t *testing.T) {
	dir := t.TempDir()
	seq1 := writeTempFasta(t, dir, "a.fa", ">a\nGATTACA\n")
	seq2 := writeTempFasta(t, dir, "b.fa", ">b\nGCATGCA\n")

	*align1 = seq1
	*align2 = seq2
	*match = 1
	*mismatch = -1
	*gapOpen = -1
	*gapExtend = -1

	out, err := captureStdout(t, runAlign)
	require.NoError(t, err)
	require.Contains(t, out, "score:")
}

func TestReadFastaMissingFile(t *testing.T) {
	_, err := readFasta(filepath.Join(t.TempDir(), "does-not-exist.fa"))
	require.Error(t, err)
}
