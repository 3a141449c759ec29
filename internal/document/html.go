package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TrackingAttr is the HTML attribute that carries a staged image's temp id.
const TrackingAttr = "data-upload-id"

// RenderHTML serializes the document to the HTML stored with an article.
// Inline nodes after the last break are closed as a paragraph.
func (d Document) RenderHTML() string {
	var b strings.Builder
	for _, n := range d.htmlTree() {
		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&b, n)
	}
	return b.String()
}

func (d Document) htmlTree() []*html.Node {
	var (
		roots  []*html.Node
		inline []Node
		list   *html.Node
	)
	flush := func(block Block) {
		var el *html.Node
		switch block {
		case BlockBullet, BlockOrdered:
			tag := atom.Ul
			if block == BlockOrdered {
				tag = atom.Ol
			}
			if list == nil || list.DataAtom != tag {
				list = element(tag)
				roots = append(roots, list)
			}
			el = element(atom.Li)
			list.AppendChild(el)
		default:
			list = nil
			el = element(blockAtom(block))
			roots = append(roots, el)
		}
		if len(inline) == 0 {
			el.AppendChild(element(atom.Br))
		}
		for _, n := range inline {
			el.AppendChild(inlineNode(n))
		}
		inline = inline[:0]
	}
	for _, n := range d.nodes {
		if n.Kind == KindBreak {
			flush(n.Block)
			continue
		}
		inline = append(inline, n)
	}
	if len(inline) > 0 {
		flush(BlockParagraph)
	}
	return roots
}

func blockAtom(b Block) atom.Atom {
	switch b {
	case BlockHeading1:
		return atom.H1
	case BlockHeading2:
		return atom.H2
	case BlockHeading3:
		return atom.H3
	case BlockQuote:
		return atom.Blockquote
	case BlockCode:
		return atom.Pre
	default:
		return atom.P
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func inlineNode(n Node) *html.Node {
	if n.Kind == KindImage {
		attrs := []html.Attribute{{Key: "src", Val: n.Src}}
		if n.Alt != "" {
			attrs = append(attrs, html.Attribute{Key: "alt", Val: n.Alt})
		}
		if n.TrackingID != "" {
			attrs = append(attrs, html.Attribute{Key: TrackingAttr, Val: n.TrackingID})
		}
		return element(atom.Img, attrs...)
	}

	node := &html.Node{Type: html.TextNode, Data: n.Text}
	wrap := func(a atom.Atom, attrs ...html.Attribute) {
		el := element(a, attrs...)
		el.AppendChild(node)
		node = el
	}
	m := n.Marks
	if m.Strike {
		wrap(atom.S)
	}
	if m.Underline {
		wrap(atom.U)
	}
	if m.Italic {
		wrap(atom.Em)
	}
	if m.Bold {
		wrap(atom.Strong)
	}
	if m.Link != "" {
		wrap(atom.A, html.Attribute{Key: "href", Val: m.Link})
	}
	return node
}

// ParseHTML loads stored article HTML into a document. Unknown elements
// contribute their content; inline content outside a block becomes a paragraph.
func ParseHTML(r io.Reader) (Document, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	roots, err := html.ParseFragment(r, body)
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	p := &parser{}
	for _, n := range roots {
		p.block(n)
	}
	p.closeLoose()
	return New(p.nodes...), nil
}

// ParseHTMLString is ParseHTML for an in-memory string.
func ParseHTMLString(s string) (Document, error) {
	return ParseHTML(strings.NewReader(s))
}

type parser struct {
	nodes []Node
	loose bool
}

func (p *parser) block(n *html.Node) {
	if n.Type == html.TextNode {
		if strings.TrimSpace(n.Data) == "" {
			return
		}
		p.inline(n, Marks{})
		p.loose = true
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.Blockquote, atom.Pre, atom.Div:
		p.closeLoose()
		p.children(n, Marks{})
		p.nodes = append(p.nodes, Break(blockFor(n.DataAtom)))
	case atom.Ul, atom.Ol:
		p.closeLoose()
		kind := BlockBullet
		if n.DataAtom == atom.Ol {
			kind = BlockOrdered
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				p.children(c, Marks{})
				p.nodes = append(p.nodes, Break(kind))
			}
		}
	default:
		p.inline(n, Marks{})
		p.loose = true
	}
}

func (p *parser) closeLoose() {
	if p.loose {
		p.nodes = append(p.nodes, Break(BlockParagraph))
		p.loose = false
	}
}

func (p *parser) children(n *html.Node, m Marks) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.inline(c, m)
	}
}

func (p *parser) inline(n *html.Node, m Marks) {
	switch n.Type {
	case html.TextNode:
		p.nodes = append(p.nodes, Styled(n.Data, m))
		return
	case html.ElementNode:
	default:
		return
	}
	switch n.DataAtom {
	case atom.Img:
		img := Node{Kind: KindImage}
		for _, a := range n.Attr {
			switch a.Key {
			case "src":
				img.Src = a.Val
			case "alt":
				img.Alt = a.Val
			case TrackingAttr:
				img.TrackingID = a.Val
			}
		}
		p.nodes = append(p.nodes, img)
		return
	case atom.Br:
		return
	case atom.Strong, atom.B:
		m.Bold = true
	case atom.Em, atom.I:
		m.Italic = true
	case atom.U:
		m.Underline = true
	case atom.S, atom.Strike, atom.Del:
		m.Strike = true
	case atom.A:
		for _, a := range n.Attr {
			if a.Key == "href" {
				m.Link = a.Val
			}
		}
	}
	p.children(n, m)
}

func blockFor(a atom.Atom) Block {
	switch a {
	case atom.H1:
		return BlockHeading1
	case atom.H2:
		return BlockHeading2
	case atom.H3:
		return BlockHeading3
	case atom.Blockquote:
		return BlockQuote
	case atom.Pre:
		return BlockCode
	default:
		return BlockParagraph
	}
}
