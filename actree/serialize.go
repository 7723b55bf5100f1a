package actree

import (
	"bytes"
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"

	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

// Serialized is the external form of a Tree: a fixed low-level
// integer-array layout with no hidden pointers, suitable for transport
// or persistence by the caller.
type Serialized struct {
	Width       int32
	Nodes       []uint32 // len = n_nodes*2: (attribs, payload) pairs
	Extensions  []int32  // len = NExtensions*5: (children[4], fail) tuples
	NExtensions int32
	BaseCodes   [4]byte
	Dup2Unq     []int32
	Stats       Stats
}

// Serialize packs t into its external form.
func (t *Tree) Serialize() Serialized {
	nodes := make([]uint32, len(t.nodes)*2)
	for i, n := range t.nodes {
		nodes[2*i] = n.attribs
		nodes[2*i+1] = uint32(n.payload)
	}
	exts := make([]int32, len(t.extensions)*5)
	for i, e := range t.extensions {
		base := 5 * i
		exts[base+0] = e.children[0]
		exts[base+1] = e.children[1]
		exts[base+2] = e.children[2]
		exts[base+3] = e.children[3]
		exts[base+4] = e.fail
	}
	return Serialized{
		Width:       int32(t.width),
		Nodes:       nodes,
		Extensions:  exts,
		NExtensions: int32(len(t.extensions)),
		BaseCodes:   t.baseCodes,
		Dup2Unq:     append([]int32(nil), t.dup2unq...),
		Stats:       t.stats,
	}
}

// Load reconstructs a Tree from its external form, rebuilding the
// internal parent/tag index and the duplicate-pattern group index that
// Serialize does not persist.
func Load(s Serialized, codec *seqio.Codec) (*Tree, error) {
	if len(s.Nodes)%2 != 0 {
		return nil, errors.New("actree: Serialized.Nodes has an odd length")
	}
	if len(s.Extensions) != int(s.NExtensions)*5 {
		return nil, errors.New("actree: Serialized.Extensions length does not match NExtensions")
	}
	t := &Tree{
		width:     int(s.Width),
		codec:     codec,
		baseCodes: s.BaseCodes,
		dup2unq:   append([]int32(nil), s.Dup2Unq...),
		stats:     s.Stats,
	}
	n := len(s.Nodes) / 2
	t.nodes = make([]node, n)
	for i := 0; i < n; i++ {
		t.nodes[i] = node{attribs: s.Nodes[2*i], payload: int32(s.Nodes[2*i+1])}
	}
	ne := int(s.NExtensions)
	t.extensions = make([]extension, ne)
	for i := 0; i < ne; i++ {
		base := 5 * i
		t.extensions[i] = extension{
			children: [4]int32{s.Extensions[base], s.Extensions[base+1], s.Extensions[base+2], s.Extensions[base+3]},
			fail:     s.Extensions[base+4],
		}
	}
	t.rebuildParentIndex()
	t.buildGroups()
	return t, nil
}

// rebuildParentIndex reconstructs the parent/link-tag index from the
// child relationships stored in nodes/extensions, used after Load since
// Serialized does not carry it directly.
func (t *Tree) rebuildParentIndex() {
	t.parentID = make([]int32, len(t.nodes))
	t.parentTag = make([]uint8, len(t.nodes))
	t.parentID[0] = -1
	for id := range t.nodes {
		attribs := t.nodes[id].attribs
		if attribs&isExtendedBit != 0 {
			idx := t.nodes[id].payload
			for tag := uint32(0); tag < 4; tag++ {
				c := t.extensions[idx].children[tag]
				if c != -1 {
					t.parentID[c] = int32(id)
					t.parentTag[c] = uint8(tag)
				}
			}
			continue
		}
		if attribs&isLeafBit != 0 {
			continue
		}
		p := t.nodes[id].payload
		if p != -1 {
			tag := (attribs >> linkTagShift) & linkTagMask
			t.parentID[p] = int32(id)
			t.parentTag[p] = uint8(tag)
		}
	}
}

// checksumKey is the fixed 32-byte HighwayHash key used to stamp and
// verify serialized snapshots. It need not be secret: its only job is to
// catch truncated or corrupted snapshots before Load touches the integer
// arenas, not to authenticate them.
var checksumKey [32]byte

func writeField(buf *bytes.Buffer, v interface{}) error {
	return errors.WithStack(binary.Write(buf, binary.LittleEndian, v))
}

// ToBytes encodes t's Serialized form with encoding/binary, compresses
// the result with snappy, and prepends a HighwayHash-64 checksum of the
// compressed payload.
func (t *Tree) ToBytes() ([]byte, error) {
	s := t.Serialize()
	var buf bytes.Buffer
	fields := []interface{}{
		s.Width,
		int32(len(s.Nodes)), s.Nodes,
		int32(len(s.Extensions)), s.Extensions,
		s.NExtensions,
		s.BaseCodes,
		int32(len(s.Dup2Unq)), s.Dup2Unq,
		int32(s.Stats.HeadMinWidth), int32(s.Stats.HeadMaxWidth),
		int32(s.Stats.TailMinWidth), int32(s.Stats.TailMaxWidth),
	}
	for _, f := range fields {
		if err := writeField(&buf, f); err != nil {
			return nil, err
		}
	}
	compressed := snappy.Encode(nil, buf.Bytes())

	h, err := highwayhash.New64(checksumKey[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	h.Write(compressed)
	out := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint64(out, h.Sum64())
	copy(out[8:], compressed)
	return out, nil
}

// FromBytes verifies the checksum and decompresses a snapshot produced
// by ToBytes, then loads it via Load.
func FromBytes(data []byte, codec *seqio.Codec) (*Tree, error) {
	if len(data) < 8 {
		return nil, seqerr.NewInputTooShort(0, 8)
	}
	wantSum := binary.LittleEndian.Uint64(data[:8])
	compressed := data[8:]

	h, err := highwayhash.New64(checksumKey[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	h.Write(compressed)
	if h.Sum64() != wantSum {
		return nil, errors.New("actree: serialized snapshot failed its checksum")
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	r := bytes.NewReader(raw)

	var s Serialized
	var nNodes, nExts, nDup int32
	var headMin, headMax, tailMin, tailMax int32
	readAll := []struct {
		name string
		dst  interface{}
	}{
		{"width", &s.Width},
		{"nNodes", &nNodes},
	}
	for _, f := range readAll {
		if err := binary.Read(r, binary.LittleEndian, f.dst); err != nil {
			return nil, errors.Wrapf(err, "actree: reading %s", f.name)
		}
	}
	s.Nodes = make([]uint32, nNodes)
	if err := binary.Read(r, binary.LittleEndian, s.Nodes); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nExts); err != nil {
		return nil, errors.WithStack(err)
	}
	s.Extensions = make([]int32, nExts)
	if err := binary.Read(r, binary.LittleEndian, s.Extensions); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.NExtensions); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.BaseCodes); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := binary.Read(r, binary.LittleEndian, &nDup); err != nil {
		return nil, errors.WithStack(err)
	}
	s.Dup2Unq = make([]int32, nDup)
	if err := binary.Read(r, binary.LittleEndian, s.Dup2Unq); err != nil {
		return nil, errors.WithStack(err)
	}
	for _, dst := range []*int32{&headMin, &headMax, &tailMin, &tailMax} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	s.Stats = Stats{
		HeadMinWidth: int(headMin), HeadMaxWidth: int(headMax),
		TailMinWidth: int(tailMin), TailMaxWidth: int(tailMax),
	}
	return Load(s, codec)
}
