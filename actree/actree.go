// Package actree stores a constant-width dictionary of DNA/RNA patterns
// as an Aho-Corasick 4-ary trie, with a packed 2-word node encoding,
// lazily allocated extension records, and failure links computed on
// demand and memoized.
//
// A node that needs only one outgoing edge stays at 2 words: the link
// tag of that edge lives in the attribs word and the payload holds the
// child id. The first second edge, or the first failure-link write,
// promotes the node to an extension record with four child slots.
package actree

import (
	"bytes"

	"github.com/grailbio/seqcore/seqerr"
	"github.com/grailbio/seqcore/seqio"
)

const (
	// maxDepth is 2^28-1: the widest depth bits 0..27 of attribs can
	// hold without touching the link-tag bits.
	maxDepth = 1<<28 - 1

	linkTagShift = 28
	linkTagMask  = uint32(0x3)

	isLeafBit     = uint32(1) << 30
	isExtendedBit = uint32(1) << 31

	// depthOrIDMask covers bits 0..29. A leaf carries no link tag, so its
	// pattern id may use bits 28..29 as well; an interior node's depth
	// never exceeds maxDepth.
	depthOrIDMask = isLeafBit - 1

	// nodeArenaCap keeps the node arena addressable by a 32-bit word
	// index (2 words/node).
	nodeArenaCap = (1 << 32) / 2
	// extensionArenaCap likewise (5 words/extension).
	extensionArenaCap = (1 << 32) / 5
	// maxPatternID is the largest pattern id a leaf can carry without
	// touching the flag bits.
	maxPatternID = int(isLeafBit) - 1
)

type node struct {
	attribs uint32
	payload int32
}

type extension struct {
	children [4]int32
	fail     int32
}

// Stats records the variable-width head/tail bounds a cropping operation
// observed; a -1 field means "not applicable" for the cropping mode used
// (constant-width inputs have neither a variable head nor tail).
type Stats struct {
	HeadMinWidth, HeadMaxWidth int
	TailMinWidth, TailMaxWidth int
}

// Tree is a built ACTree: an Aho-Corasick trie over a constant-width
// dictionary, ready to scan.
type Tree struct {
	width int
	codec *seqio.Codec

	nodes      []node
	extensions []extension

	// parentID/parentTag are an internal-only index (not part of the
	// serialized form) used to compute failure links on demand without
	// re-walking from the root; rebuildParentIndex reconstructs them
	// after Load.
	parentID  []int32
	parentTag []uint8

	baseCodes [4]byte
	dup2unq   []int32
	groups    map[int32][]int32
	stats     Stats
}

// Width returns the dictionary's constant pattern width.
func (t *Tree) Width() int { return t.width }

// Dup2Unq returns, for each original dictionary offset, the offset of
// the pattern that represents it, or -1 if it is itself the
// representative.
func (t *Tree) Dup2Unq() []int32 { return t.dup2unq }

// Stats returns the head/tail width bounds observed while deriving the
// trusted band, if the dictionary was built via DeriveTrustedBand.
func (t *Tree) Stats() Stats { return t.stats }

// preSizeNodes bounds the node count for L patterns of width W:
// sum over d in 0..W of min(4^d, L).
func preSizeNodes(L, W int) int {
	total := 0
	p := 1
	for d := 0; d <= W; d++ {
		m := p
		if L < m {
			m = L
		}
		total += m
		if p <= L {
			p *= 4
		}
	}
	return total
}

// preSizeExtensions bounds the extensions needed at build time:
// 2^min(W, ceil(log2 L)+1) - 1.
func preSizeExtensions(L, W int) int {
	logL := 0
	for (1 << uint(logL)) < L {
		logL++
	}
	e := logL + 1
	if W < e {
		e = W
	}
	if e < 0 {
		e = 0
	}
	return (1 << uint(e)) - 1
}

// Build constructs a Tree from a set of already constant-width trusted
// bands (see DeriveTrustedBand). The leaf pattern id assigned to each
// unique band is the offset of the first original dictionary entry that
// produced it; duplicates are recorded in the returned Tree's Dup2Unq.
func Build(bands [][]byte, codec *seqio.Codec, stats Stats) (*Tree, error) {
	L := len(bands)
	if L == 0 {
		return nil, seqerr.EmptyPattern
	}
	W := len(bands[0])
	if W == 0 {
		return nil, seqerr.EmptyPattern
	}
	if W > maxDepth {
		return nil, seqerr.WidthTooLarge
	}
	if L-1 > maxPatternID {
		return nil, seqerr.DictionaryTooLarge
	}
	for i, b := range bands {
		if len(b) != W {
			return nil, seqerr.NewInconsistentWidth(i)
		}
	}

	t := &Tree{width: W, codec: codec, stats: stats}
	nodeCap := preSizeNodes(L, W)
	if nodeCap < 1 {
		nodeCap = 1
	}
	t.nodes = make([]node, 1, nodeCap)
	t.nodes[0] = node{attribs: 0, payload: -1}
	t.parentID = make([]int32, 1, nodeCap)
	t.parentTag = make([]uint8, 1, nodeCap)
	t.parentID[0] = -1
	t.extensions = make([]extension, 0, preSizeExtensions(L, W))
	t.dup2unq = make([]int32, L)

	hashIndex := make(map[uint64]int32, L)
	for orig := 0; orig < L; orig++ {
		band := bands[orig]
		h := seqio.KmerHash(seqio.NewView(band))
		if cand, ok := hashIndex[h]; ok && bytes.Equal(bands[cand], band) {
			t.dup2unq[orig] = cand
			continue
		}
		existing, err := t.insert(band, int32(orig))
		if err != nil {
			return nil, err
		}
		if existing >= 0 {
			t.dup2unq[orig] = existing
			continue
		}
		t.dup2unq[orig] = -1
		hashIndex[h] = int32(orig)
	}
	t.baseCodes = [4]byte{
		codec.DecodeByte(seqio.CodeA),
		codec.DecodeByte(seqio.CodeC),
		codec.DecodeByte(seqio.CodeG),
		codec.DecodeByte(seqio.CodeT),
	}
	t.buildGroups()
	return t, nil
}

// insert descends the trie for band, creating interior nodes as needed.
// It returns -1 if band created a new unique leaf (tagged origID), or
// the pattern id of the pre-existing leaf if band's path was already
// terminal (a structural duplicate the hash fast path in Build missed,
// e.g. because the caller bypassed it).
func (t *Tree) insert(band []byte, origID int32) (int32, error) {
	cur := int32(0)
	for depth := 0; depth < t.width; depth++ {
		code, ok := t.codec.EncodeByte(band[depth])
		if !ok {
			return 0, seqerr.NewNonBaseInTrustedBand(int(origID))
		}
		child, err := t.childOrCreate(cur, uint32(code), uint32(depth+1))
		if err != nil {
			return 0, err
		}
		cur = child
	}
	attribs := t.attribs(cur)
	if attribs&isLeafBit != 0 {
		return int32(attribs & depthOrIDMask), nil
	}
	t.setAttribs(cur, isLeafBit|(uint32(origID)&depthOrIDMask))
	t.setPayload(cur, -1)
	return -1, nil
}

func (t *Tree) buildGroups() {
	t.groups = make(map[int32][]int32, len(t.dup2unq))
	for orig := int32(0); orig < int32(len(t.dup2unq)); orig++ {
		rep := t.dup2unq[orig]
		if rep == -1 {
			rep = orig
		}
		t.groups[rep] = append(t.groups[rep], orig)
	}
}

func (t *Tree) attribs(id int32) uint32     { return t.nodes[id].attribs }
func (t *Tree) setAttribs(id int32, v uint32) { t.nodes[id].attribs = v }
func (t *Tree) payload(id int32) int32      { return t.nodes[id].payload }
func (t *Tree) setPayload(id int32, v int32) { t.nodes[id].payload = v }

func (t *Tree) extChild(idx int32, tag uint32) int32 { return t.extensions[idx].children[tag] }
func (t *Tree) setExtChild(idx int32, tag uint32, v int32) {
	t.extensions[idx].children[tag] = v
}
func (t *Tree) extFail(idx int32) int32      { return t.extensions[idx].fail }
func (t *Tree) setExtFail(idx int32, v int32) { t.extensions[idx].fail = v }

// newNode allocates a fresh interior node at the given depth, recording
// its parent/tag in the internal parent index.
func (t *Tree) newNode(depth uint32, parent int32, tag uint8) (int32, error) {
	if len(t.nodes) >= nodeArenaCap {
		return 0, seqerr.NodeArenaExhausted
	}
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{attribs: depth, payload: -1})
	t.parentID = append(t.parentID, parent)
	t.parentTag = append(t.parentTag, tag)
	return id, nil
}

// ensureExtended converts a non-extended node into one backed by an
// extension record, preserving any single existing child.
func (t *Tree) ensureExtended(id int32) error {
	attribs := t.attribs(id)
	if attribs&isExtendedBit != 0 {
		return nil
	}
	if len(t.extensions) >= extensionArenaCap {
		return seqerr.ExtensionArenaExhausted
	}
	ext := extension{fail: -1, children: [4]int32{-1, -1, -1, -1}}
	if attribs&isLeafBit == 0 {
		if p := t.payload(id); p != -1 {
			tag := (attribs >> linkTagShift) & linkTagMask
			ext.children[tag] = p
		}
	}
	idx := int32(len(t.extensions))
	t.extensions = append(t.extensions, ext)
	t.setAttribs(id, attribs|isExtendedBit)
	t.setPayload(id, idx)
	return nil
}

// childOrCreate returns the child of parent reached by tag, creating it
// (and extending parent, if a second distinct child is needed) if absent.
func (t *Tree) childOrCreate(parent int32, tag uint32, childDepth uint32) (int32, error) {
	attribs := t.attribs(parent)
	if attribs&isExtendedBit != 0 {
		idx := t.payload(parent)
		if c := t.extChild(idx, tag); c != -1 {
			return c, nil
		}
		child, err := t.newNode(childDepth, parent, uint8(tag))
		if err != nil {
			return 0, err
		}
		t.setExtChild(t.payload(parent), tag, child)
		return child, nil
	}
	if payload := t.payload(parent); payload != -1 {
		existingTag := (attribs >> linkTagShift) & linkTagMask
		if existingTag == tag {
			return payload, nil
		}
		if err := t.ensureExtended(parent); err != nil {
			return 0, err
		}
		child, err := t.newNode(childDepth, parent, uint8(tag))
		if err != nil {
			return 0, err
		}
		t.setExtChild(t.payload(parent), tag, child)
		return child, nil
	}
	child, err := t.newNode(childDepth, parent, uint8(tag))
	if err != nil {
		return 0, err
	}
	newAttribs := (t.attribs(parent) &^ (linkTagMask << linkTagShift)) | (tag << linkTagShift)
	t.setAttribs(parent, newAttribs)
	t.setPayload(parent, child)
	return child, nil
}

// childFor returns the child of id reached by tag, if one exists.
func (t *Tree) childFor(id int32, tag uint32) (int32, bool) {
	attribs := t.attribs(id)
	if attribs&isExtendedBit != 0 {
		idx := t.payload(id)
		c := t.extChild(idx, tag)
		return c, c != -1
	}
	if attribs&isLeafBit != 0 {
		return 0, false
	}
	p := t.payload(id)
	if p == -1 {
		return 0, false
	}
	existingTag := (attribs >> linkTagShift) & linkTagMask
	if existingTag == tag {
		return p, true
	}
	return 0, false
}

// delta is the ACTree transition function: follow the edge for tag,
// falling back through failure links (computed lazily) until an edge is
// found or the root is reached.
func (t *Tree) delta(from int32, tag uint32) int32 {
	node := from
	for {
		if child, ok := t.childFor(node, tag); ok {
			return child
		}
		if node == 0 {
			return 0
		}
		node = t.failLink(node)
	}
}

// failLink computes (and memoizes, extending the node if necessary) the
// failure link of id: fail(root) = root; otherwise walk
// delta(fail(parent), tag) where tag is the link from parent to id.
func (t *Tree) failLink(id int32) int32 {
	if id == 0 {
		return 0
	}
	attribs := t.attribs(id)
	if attribs&isExtendedBit != 0 {
		idx := t.payload(id)
		if f := t.extFail(idx); f != -1 {
			return f
		}
	}
	parent := t.parentID[id]
	tag := t.parentTag[id]
	var f int32
	if parent == 0 {
		f = 0
	} else {
		f = t.delta(t.failLink(parent), uint32(tag))
	}
	if err := t.ensureExtended(id); err != nil {
		// Arena exhausted: f is still correct, just not memoized.
		return f
	}
	t.setExtFail(t.payload(id), f)
	return f
}

// PrecomputeFailLinks computes and memoizes every failure link up front,
// so subsequent scans never write to the arenas and the tree can be
// shared by concurrent readers.
func (t *Tree) PrecomputeFailLinks() {
	for id := int32(1); id < int32(len(t.nodes)); id++ {
		t.failLink(id)
	}
}

// memoizedFail returns id's failure link only if it has already been
// persisted in an extension record.
func (t *Tree) memoizedFail(id int32) (int32, bool) {
	if id == 0 {
		return 0, true
	}
	attribs := t.attribs(id)
	if attribs&isExtendedBit == 0 {
		return 0, false
	}
	f := t.extFail(t.payload(id))
	return f, f != -1
}

// deltaShared is the transition function for read-only scans: it only
// follows failure links that are already memoized, restarting at the
// root when one is missing, and never mutates the tree.
func (t *Tree) deltaShared(from int32, tag uint32) int32 {
	node := from
	for {
		if child, ok := t.childFor(node, tag); ok {
			return child
		}
		if node == 0 {
			return 0
		}
		f, ok := t.memoizedFail(node)
		if !ok {
			return 0
		}
		node = f
	}
}

// Hit is one reported occurrence of a dictionary pattern in a scanned
// subject.
type Hit struct {
	// PatternID is the original dictionary offset (0-based) of the
	// pattern that matched -- for a pattern that was a duplicate of an
	// earlier one, this is still its own offset, not its representative's.
	PatternID int32
	// Start is the 0-based offset in the subject where the match begins.
	Start int32
}

// Scan walks subject once, invoking report for every dictionary pattern
// (including every duplicate of a matched band) found. Bytes outside the
// codec's alphabet reset the walk to the root rather than failing.
func (t *Tree) Scan(subject seqio.View, report func(Hit)) {
	b := subject.Bytes()
	cur := int32(0)
	for i := 0; i < len(b); i++ {
		code, ok := t.codec.EncodeByte(b[i])
		if !ok {
			cur = 0
			continue
		}
		cur = t.delta(cur, uint32(code))
		if t.attribs(cur)&isLeafBit != 0 {
			patID := int32(t.attribs(cur) & depthOrIDMask)
			start := int32(i) - int32(t.width) + 1
			for _, orig := range t.groups[patID] {
				report(Hit{PatternID: orig, Start: start})
			}
		}
	}
}

// ScanShared is Scan for trees shared between concurrent readers: it
// never memoizes failure links, restarting at the root when it needs one
// that is missing. Call PrecomputeFailLinks first to get the same hits
// Scan produces; on a tree with partial links the root restarts can skip
// overlapping occurrences.
func (t *Tree) ScanShared(subject seqio.View, report func(Hit)) {
	b := subject.Bytes()
	cur := int32(0)
	for i := 0; i < len(b); i++ {
		code, ok := t.codec.EncodeByte(b[i])
		if !ok {
			cur = 0
			continue
		}
		cur = t.deltaShared(cur, uint32(code))
		if t.attribs(cur)&isLeafBit != 0 {
			patID := int32(t.attribs(cur) & depthOrIDMask)
			start := int32(i) - int32(t.width) + 1
			for _, orig := range t.groups[patID] {
				report(Hit{PatternID: orig, Start: start})
			}
		}
	}
}
