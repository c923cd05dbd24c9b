package trie

import "github.com/ethereum/go-trie/common"

const (
	stateStart         = -2
	stateValueReported = -1
	stateDone          = 16
)

// traceNode is one frame of the iterator's explicit descent stack. status
// tracks how far this frame has gotten: stateStart (untouched), for a
// branch stateValueReported or 0..15 (which child to try next), and
// stateDone once nothing is left to yield. entryPush is how many nibbles
// the parent pushed onto the running path to reach this node — exactly 1
// for a branch's child slot, 0 everywhere else — and is popped when the
// frame retires.
type traceNode struct {
	node      node
	status    int
	entryPush int
}

// Iterator walks a trie's key/value pairs in ascending key order. Hash
// nodes are hydrated lazily as the walk reaches them; unlike a write path,
// this never records the hydration into the trie's eviction bookkeeping,
// since a read should never make previously-committed nodes look stale.
type Iterator struct {
	t     *Trie
	path  Nibbles
	trail []traceNode

	curKey   []byte
	curValue []byte
	err      error
}

// Iterator returns a fresh iterator positioned before the first entry.
func (t *Trie) Iterator() *Iterator {
	return &Iterator{t: t, trail: []traceNode{{node: t.root, status: stateStart}}}
}

// Err returns the error that stopped the walk, if Next hydrated a Hash node
// the database could not resolve.
func (it *Iterator) Err() error { return it.err }

// Key returns the key of the entry most recently yielded by Next.
func (it *Iterator) Key() []byte { return it.curKey }

// Value returns the value of the entry most recently yielded by Next.
func (it *Iterator) Value() []byte { return it.curValue }

// Next advances to the next entry, reporting whether one was found.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}

	for len(it.trail) > 0 {
		top := len(it.trail) - 1
		frame := &it.trail[top]

		switch nd := frame.node.(type) {
		case nil:
			it.path.Truncate(it.path.Len() - frame.entryPush)
			it.trail = it.trail[:top]

		case leafNode:
			if frame.status == stateStart {
				it.path.Extend(nd.Key)
				frame.status = stateDone
				it.curKey = it.path.Bytes()
				it.curValue = nd.Value
				return true
			}
			it.path.Truncate(it.path.Len() - nd.Key.Len() - frame.entryPush)
			it.trail = it.trail[:top]

		case *extensionNode:
			if frame.status == stateStart {
				it.path.Extend(nd.Prefix)
				frame.status = stateDone
				it.trail = append(it.trail, traceNode{node: nd.Child, status: stateStart})
				continue
			}
			it.path.Truncate(it.path.Len() - nd.Prefix.Len() - frame.entryPush)
			it.trail = it.trail[:top]

		case *branchNode:
			switch {
			case frame.status == stateStart:
				if nd.Value != nil {
					it.path.Push(terminator)
					frame.status = stateValueReported
					it.curKey = it.path.Bytes()
					it.curValue = nd.Value
					return true
				}
				frame.status = 0

			case frame.status == stateValueReported:
				it.path.Pop()
				frame.status = 0

			case frame.status >= 0 && frame.status < 16:
				idx := frame.status
				frame.status = idx + 1
				if nd.Children[idx] != nil {
					it.path.Push(byte(idx))
					it.trail = append(it.trail, traceNode{node: nd.Children[idx], status: stateStart, entryPush: 1})
				}

			default: // stateDone
				it.path.Truncate(it.path.Len() - frame.entryPush)
				it.trail = it.trail[:top]
			}

		case hashNode:
			hydrated, err := it.t.recoverFromDB(common.Hash(nd))
			if err != nil {
				it.err = missingNode(common.Hash(nd), it.t.rootHash, nil)
				return false
			}
			frame.node = hydrated

		default:
			panic("trie: iterator: unknown node type")
		}
	}
	return false
}
