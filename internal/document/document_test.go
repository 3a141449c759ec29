package document_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/msomdec/inkwell/internal/document"
)

func TestNew_MergesAdjacentRuns(t *testing.T) {
	doc := document.New(
		document.Text("Hello"),
		document.Text(""),
		document.Text(", world"),
		document.Styled("!", document.Marks{Bold: true}),
	)

	want := []document.Node{
		document.Text("Hello, world"),
		document.Styled("!", document.Marks{Bold: true}),
	}
	if diff := cmp.Diff(want, doc.Nodes()); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	if doc.Len() != 13 {
		t.Fatalf("expected length 13, got %d", doc.Len())
	}
}

func TestInsert_SplitsTextRun(t *testing.T) {
	doc := document.New(document.Text("abcdef"), document.Break(document.BlockParagraph))

	got, err := doc.Insert(3, document.Image("x.png"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	want := []document.Node{
		document.Text("abc"),
		document.Image("x.png"),
		document.Text("def"),
		document.Break(document.BlockParagraph),
	}
	if diff := cmp.Diff(want, got.Nodes()); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}

	// The receiver is a snapshot and must not change.
	if doc.Len() != 7 {
		t.Fatalf("original document mutated, length %d", doc.Len())
	}
}

func TestInsert_AtEndAndStart(t *testing.T) {
	doc := document.New(document.Text("ab"))

	end, err := doc.Insert(2, document.Image("end.png"))
	if err != nil {
		t.Fatalf("Insert end: %v", err)
	}
	start, err := end.Insert(0, document.Image("start.png"))
	if err != nil {
		t.Fatalf("Insert start: %v", err)
	}

	want := []document.Node{
		document.Image("start.png"),
		document.Text("ab"),
		document.Image("end.png"),
	}
	if diff := cmp.Diff(want, start.Nodes()); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_OutOfRange(t *testing.T) {
	doc := document.New(document.Text("ab"))
	if _, err := doc.Insert(3, document.Image("x")); !errors.Is(err, document.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := doc.Insert(-1, document.Image("x")); !errors.Is(err, document.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	doc := document.New(
		document.Text("héllo"),
		document.Image("a.png"),
		document.Text("world"),
		document.Break(document.BlockParagraph),
	)

	tests := []struct {
		name  string
		pos   int
		count int
		want  []document.Node
	}{
		{
			name:  "single embed",
			pos:   5,
			count: 1,
			want: []document.Node{
				document.Text("hélloworld"),
				document.Break(document.BlockParagraph),
			},
		},
		{
			name:  "across text and embed",
			pos:   3,
			count: 4,
			want: []document.Node{
				document.Text("hélorld"),
				document.Break(document.BlockParagraph),
			},
		},
		{
			name:  "nothing",
			pos:   2,
			count: 0,
			want:  doc.Nodes(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := doc.Delete(tc.pos, tc.count)
			if err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Nodes()); diff != "" {
				t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := doc.Delete(10, 3); !errors.Is(err, document.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestApply_ReplacesSelection(t *testing.T) {
	doc := document.New(document.Text("hello world"))

	got, err := doc.Apply(document.Edit{Pos: 6, Delete: 5, Insert: []document.Node{document.Text("there")}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.PlainText() != "hello there" {
		t.Fatalf("expected %q, got %q", "hello there", got.PlainText())
	}
}

func TestFindUntracked_UsesRunningOffset(t *testing.T) {
	doc := document.New(
		document.Text("abc"),
		document.Staged("data:image/png;base64,AAAA", "t1"),
		document.Text("de"),
		document.Image("data:image/png;base64,AAAA"),
	)

	pos, ok := doc.FindUntracked("data:image/png;base64,AAAA")
	if !ok {
		t.Fatal("expected to find untracked image")
	}
	// 3 runes + 1 embed + 2 runes.
	if pos != 6 {
		t.Fatalf("expected offset 6, got %d", pos)
	}

	if pos, ok := doc.FindTracked("t1"); !ok || pos != 3 {
		t.Fatalf("expected tracked image at 3, got %d (found=%v)", pos, ok)
	}
	if _, ok := doc.FindUntracked("data:image/gif;base64,AAAA"); ok {
		t.Fatal("did not expect a match for a different source")
	}
}

func TestTrackingIDs_DocumentOrder(t *testing.T) {
	doc := document.New(
		document.Staged("b", "t2"),
		document.Text("x"),
		document.Staged("a", "t1"),
		document.Image("plain.png"),
		document.Staged("b", "t2"),
	)

	want := []string{"t2", "t1"}
	if diff := cmp.Diff(want, doc.TrackingIDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	doc := document.New(
		document.Staged("preview-a", "t1"),
		document.Staged("preview-b", "t2"),
	)

	got := doc.Resolve(map[string]string{"t1": "https://cdn.example.com/a.png"})

	want := []document.Node{
		document.Image("https://cdn.example.com/a.png"),
		document.Staged("preview-b", "t2"),
	}
	if diff := cmp.Diff(want, got.Nodes()); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	if !doc.Nodes()[0].IsStaged() {
		t.Fatal("Resolve mutated the original snapshot")
	}
}

func TestPlainText(t *testing.T) {
	doc := document.New(
		document.Text("Title"),
		document.Break(document.BlockHeading1),
		document.Image("a.png"),
		document.Text("Body"),
		document.Break(document.BlockParagraph),
	)
	if got := doc.PlainText(); got != "Title\nBody\n" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
