// Package document models the article body under edit as an immutable,
// ordered sequence of nodes addressed by running offsets.
package document

import (
	"strings"
	"unicode/utf8"
)

// Kind identifies what a Node represents.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindImage
	KindBreak
)

// Block is the block format carried by a Break node. It applies to the
// inline nodes between the previous break and this one.
type Block string

const (
	BlockParagraph Block = "p"
	BlockHeading1  Block = "h1"
	BlockHeading2  Block = "h2"
	BlockHeading3  Block = "h3"
	BlockQuote     Block = "blockquote"
	BlockCode      Block = "pre"
	BlockBullet    Block = "bullet"
	BlockOrdered   Block = "ordered"
)

// Marks holds inline formatting for a text run.
type Marks struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Link      string
}

// Node is a single content node. Only the fields relevant to Kind are set.
type Node struct {
	Kind  Kind
	Text  string
	Marks Marks
	Block Block
	Src   string
	Alt   string

	// TrackingID is the temp id of a staged image. It is present only while
	// the image bytes are waiting for upload.
	TrackingID string
}

// Text returns a plain text run.
func Text(s string) Node {
	return Node{Kind: KindText, Text: s}
}

// Styled returns a text run with the given marks.
func Styled(s string, m Marks) Node {
	return Node{Kind: KindText, Text: s, Marks: m}
}

// Break returns a block terminator.
func Break(b Block) Node {
	if b == "" {
		b = BlockParagraph
	}
	return Node{Kind: KindBreak, Block: b}
}

// Image returns an untracked image embed.
func Image(src string) Node {
	return Node{Kind: KindImage, Src: src}
}

// Staged returns an image embed tagged with the temp id of its pending upload.
func Staged(src, tempID string) Node {
	return Node{Kind: KindImage, Src: src, TrackingID: tempID}
}

// Len is the number of offset positions the node occupies.
func (n Node) Len() int {
	if n.Kind == KindText {
		return utf8.RuneCountInString(n.Text)
	}
	return 1
}

// IsImage reports whether n is an image embed.
func (n Node) IsImage() bool {
	return n.Kind == KindImage
}

// IsStaged reports whether n is an image waiting for upload.
func (n Node) IsStaged() bool {
	return n.Kind == KindImage && n.TrackingID != ""
}

// IsInlineData reports whether n is an image whose source is an inline
// data URI rather than a fetchable URL.
func (n Node) IsInlineData() bool {
	return n.Kind == KindImage && strings.HasPrefix(strings.ToLower(n.Src), "data:")
}
