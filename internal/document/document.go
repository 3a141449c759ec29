package document

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfRange is returned when a position or length falls outside the document.
var ErrOutOfRange = errors.New("position out of range")

// Document is an immutable snapshot of the article body. Every operation
// that changes content returns a new Document and leaves the receiver as it was.
type Document struct {
	nodes []Node
}

// Edit describes a user change: delete Delete positions starting at Pos,
// then insert Insert at Pos.
type Edit struct {
	Pos    int
	Delete int
	Insert []Node
}

// New builds a document from nodes. Empty text runs are dropped and
// adjacent runs with identical marks are merged.
func New(nodes ...Node) Document {
	return Document{nodes: normalize(nodes)}
}

func normalize(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind == KindText {
			if n.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Kind == KindText && out[last].Marks == n.Marks {
				out[last].Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// Nodes returns a copy of the node sequence.
func (d Document) Nodes() []Node {
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Len is the total offset length of the document.
func (d Document) Len() int {
	total := 0
	for _, n := range d.nodes {
		total += n.Len()
	}
	return total
}

// IsEmpty reports whether the document has no nodes.
func (d Document) IsEmpty() bool {
	return len(d.nodes) == 0
}

// Walk calls fn for every node with its starting offset, in document order.
// Walking stops early when fn returns false.
func (d Document) Walk(fn func(offset int, n Node) bool) {
	offset := 0
	for _, n := range d.nodes {
		if !fn(offset, n) {
			return
		}
		offset += n.Len()
	}
}

// Insert places nodes at pos. A text run containing pos is split.
func (d Document) Insert(pos int, nodes ...Node) (Document, error) {
	if pos < 0 || pos > d.Len() {
		return d, fmt.Errorf("insert at %d: %w", pos, ErrOutOfRange)
	}
	out := make([]Node, 0, len(d.nodes)+len(nodes)+1)
	inserted := false
	offset := 0
	for _, n := range d.nodes {
		l := n.Len()
		switch {
		case !inserted && pos == offset:
			out = append(out, nodes...)
			out = append(out, n)
			inserted = true
		case !inserted && pos > offset && pos < offset+l:
			head, tail := splitText(n, pos-offset)
			out = append(out, head)
			out = append(out, nodes...)
			out = append(out, tail)
			inserted = true
		default:
			out = append(out, n)
		}
		offset += l
	}
	if !inserted {
		out = append(out, nodes...)
	}
	return New(out...), nil
}

// Delete removes count positions starting at pos.
func (d Document) Delete(pos, count int) (Document, error) {
	if pos < 0 || count < 0 || pos+count > d.Len() {
		return d, fmt.Errorf("delete %d at %d: %w", count, pos, ErrOutOfRange)
	}
	if count == 0 {
		return d, nil
	}
	end := pos + count
	out := make([]Node, 0, len(d.nodes))
	offset := 0
	for _, n := range d.nodes {
		l := n.Len()
		start, stop := offset, offset+l
		offset = stop
		if stop <= pos || start >= end {
			out = append(out, n)
			continue
		}
		if n.Kind != KindText {
			continue
		}
		runes := []rune(n.Text)
		from := max(pos-start, 0)
		to := min(end-start, l)
		kept := string(runes[:from]) + string(runes[to:])
		if kept != "" {
			n.Text = kept
			out = append(out, n)
		}
	}
	return New(out...), nil
}

// Apply performs a single edit.
func (d Document) Apply(e Edit) (Document, error) {
	doc, err := d.Delete(e.Pos, e.Delete)
	if err != nil {
		return d, err
	}
	if len(e.Insert) == 0 {
		return doc, nil
	}
	return doc.Insert(e.Pos, e.Insert...)
}

// NodeAt returns the node covering pos.
func (d Document) NodeAt(pos int) (Node, bool) {
	var found Node
	ok := false
	d.Walk(func(offset int, n Node) bool {
		if pos >= offset && pos < offset+n.Len() {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// TrackingIDs returns the temp ids of staged images in document order.
// An id that appears more than once is reported once.
func (d Document) TrackingIDs() []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, n := range d.nodes {
		if !n.IsStaged() {
			continue
		}
		if _, dup := seen[n.TrackingID]; dup {
			continue
		}
		seen[n.TrackingID] = struct{}{}
		ids = append(ids, n.TrackingID)
	}
	return ids
}

// FindUntracked returns the offset of the first image whose source equals
// src exactly and which carries no tracking id.
func (d Document) FindUntracked(src string) (int, bool) {
	return d.find(func(n Node) bool {
		return n.IsImage() && n.TrackingID == "" && n.Src == src
	})
}

// FindTracked returns the offset of the image staged under tempID.
func (d Document) FindTracked(tempID string) (int, bool) {
	return d.find(func(n Node) bool {
		return n.IsStaged() && n.TrackingID == tempID
	})
}

func (d Document) find(match func(Node) bool) (int, bool) {
	at, ok := 0, false
	d.Walk(func(offset int, n Node) bool {
		if match(n) {
			at, ok = offset, true
			return false
		}
		return true
	})
	return at, ok
}

// Resolve replaces the source of every staged image listed in urls and
// strips its tracking id. Staged images not in urls are left unchanged.
func (d Document) Resolve(urls map[string]string) Document {
	out := d.Nodes()
	for i, n := range out {
		if !n.IsStaged() {
			continue
		}
		if u, ok := urls[n.TrackingID]; ok {
			out[i].Src = u
			out[i].TrackingID = ""
		}
	}
	return Document{nodes: out}
}

// StripTracking removes every tracking id, leaving sources as they are.
func (d Document) StripTracking() Document {
	out := d.Nodes()
	for i := range out {
		out[i].TrackingID = ""
	}
	return Document{nodes: out}
}

// Images returns every image node in document order.
func (d Document) Images() []Node {
	var imgs []Node
	for _, n := range d.nodes {
		if n.IsImage() {
			imgs = append(imgs, n)
		}
	}
	return imgs
}

// HasImageSrc reports whether any image in the document points at src.
func (d Document) HasImageSrc(src string) bool {
	_, ok := d.find(func(n Node) bool { return n.IsImage() && n.Src == src })
	return ok
}

// PlainText returns the text content with one newline per block break.
func (d Document) PlainText() string {
	var b strings.Builder
	for _, n := range d.nodes {
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindBreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Equal reports whether both documents hold the same nodes.
func (d Document) Equal(o Document) bool {
	if len(d.nodes) != len(o.nodes) {
		return false
	}
	for i := range d.nodes {
		if d.nodes[i] != o.nodes[i] {
			return false
		}
	}
	return true
}

func splitText(n Node, at int) (Node, Node) {
	runes := []rune(n.Text)
	head, tail := n, n
	head.Text = string(runes[:at])
	tail.Text = string(runes[at:])
	return head, tail
}
