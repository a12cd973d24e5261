// Package session caches the CFG shape of an already-built ir.Bundle across invocations,
// keyed by an opaque session token (e.g. a content hash of the analyzed source a long-running
// host process picks). It gob-encodes each cached entry through an github.com/klauspost/compress/s2
// writer/reader pair, mirroring inference/inferred_map.go's GobEncode/GobDecode: an s2.Writer
// wraps the gob.Encoder's output, and an s2.Reader wraps the gob.Decoder's input.
//
// Only a node's structural shape (kind, edges, and the rendered text of any expression it
// carries) round-trips through the cache. ir.Expression is an interface whose concrete types
// live in each frontend package (frontend/sexpr, frontend/goppl) and are not registered for gob,
// so a cached Snapshot is a display/shape artifact: enough to redraw a CFG or recheck whether a
// session's source changed, not enough to feed back into evalengine or the checks, which need
// the original Expression values and so always run against a freshly built ir.Bundle.
package session

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/klauspost/compress/s2"

	"go.uber.org/pplcheck/ir"
)

// NodeSnapshot mirrors one ir.Node's structural shape: exported fields only, so gob can encode
// it without custom hooks.
type NodeSnapshot struct {
	ID       int
	Kind     string
	Parents  []int
	Children []int

	TargetText string // "" if the node has no AssignTarget
	ValueText  string // "" if the node has no Value/Factor/ReturnExpr/Test
	DistName   string // "" if the node has no Distribution

	ArgName   string
	ArgIndex  int
	Signature string
}

// CFGSnapshot mirrors one ir.CFG.
type CFGSnapshot struct {
	Start int
	End   int
	Nodes []NodeSnapshot
}

// BundleSnapshot mirrors one ir.Bundle.
type BundleSnapshot struct {
	TopLevel  *CFGSnapshot
	Functions map[string]*CFGSnapshot
	Model     string
	Guide     string
}

// Snapshot builds a BundleSnapshot from a live bundle.
func Snapshot(bundle *ir.Bundle) *BundleSnapshot {
	out := &BundleSnapshot{
		Functions: make(map[string]*CFGSnapshot, len(bundle.Functions)),
		Model:     bundle.Model,
		Guide:     bundle.Guide,
	}
	if bundle.TopLevel != nil {
		out.TopLevel = snapshotCFG(bundle.TopLevel)
	}
	for name, g := range bundle.Functions {
		out.Functions[name] = snapshotCFG(g)
	}
	return out
}

func snapshotCFG(g *ir.CFG) *CFGSnapshot {
	nodes := g.Nodes()
	out := &CFGSnapshot{
		Start: int(g.Start),
		End:   int(g.End),
		Nodes: make([]NodeSnapshot, len(nodes)),
	}
	for i, n := range nodes {
		ns := NodeSnapshot{
			ID:       int(n.ID),
			Kind:     n.Kind.String(),
			Parents:  idsToInts(n.Parents()),
			Children: idsToInts(n.Children()),
			ArgName:  n.ArgName,
			ArgIndex: n.ArgIndex,
			Signature: n.Signature,
		}
		if n.Target != nil {
			ns.TargetText = n.Target.Var().Name()
		}
		switch {
		case n.Value != nil:
			ns.ValueText = n.Value.Text()
		case n.Factor != nil:
			ns.ValueText = n.Factor.Text()
		case n.ReturnExpr != nil:
			ns.ValueText = n.ReturnExpr.Text()
		case n.Test != nil:
			ns.ValueText = n.Test.Text()
		}
		if n.Dist != nil {
			ns.DistName = n.Dist.Name
		}
		out.Nodes[i] = ns
	}
	return out
}

func idsToInts(ids []ir.ID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// Encode gob-encodes b through an s2 compressor.
func Encode(b *BundleSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := s2.NewWriter(&buf)
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is Encode's inverse.
func Decode(data []byte) (*BundleSnapshot, error) {
	var b BundleSnapshot
	r := s2.NewReader(bytes.NewReader(data))
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &b, nil
}

// Cache maps an opaque session token to its compressed, gob-encoded BundleSnapshot. A
// long-running host (e.g. an editor-integration process driving internal/wire) uses this to
// avoid re-lowering and re-snapshotting a source file that has not changed between requests.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Put stores bundle's snapshot, encoded and compressed, under token, replacing any existing
// entry.
func (c *Cache) Put(token string, bundle *ir.Bundle) error {
	data, err := Encode(Snapshot(bundle))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = data
	return nil
}

// Get returns the decoded snapshot stored under token, or ok=false if nothing is cached there.
func (c *Cache) Get(token string) (snap *BundleSnapshot, ok bool, err error) {
	c.mu.Lock()
	data, present := c.entries[token]
	c.mu.Unlock()
	if !present {
		return nil, false, nil
	}
	snap, err = Decode(data)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// Evict removes token's cached entry, if any.
func (c *Cache) Evict(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}
