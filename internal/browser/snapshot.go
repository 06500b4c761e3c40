package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/dom"
)

// snapshotJS serializes every element of the page in document order. Styles,
// rendered text and live values are only read for the elements that can be
// candidates or labels, which keeps the payload small. The script only reads.
const snapshotJS = `() => {
	const all = Array.from(document.querySelectorAll('*'));
	const index = new Map();
	all.forEach((el, i) => index.set(el, i));
	const nodes = all.map((el) => {
		const tag = el.tagName.toLowerCase();
		const attrs = {};
		for (const a of el.attributes) attrs[a.name] = a.value;
		const node = {
			tag: tag,
			attrs: attrs,
			parent: el.parentElement ? index.get(el.parentElement) : -1,
			editable: !!el.isContentEditable && el.hasAttribute('contenteditable'),
		};
		const field = tag === 'input' || tag === 'textarea' || node.editable;
		if (field) {
			const cs = window.getComputedStyle(el);
			node.display = cs.display;
			node.visibility = cs.visibility;
			if (tag === 'input' || tag === 'textarea') node.value = el.value;
		}
		if (tag === 'label' || node.editable) node.text = el.innerText;
		return node;
	});
	return { url: window.location.href, title: document.title, nodes: nodes };
}`

type snapshotNode struct {
	Tag        string            `json:"tag"`
	Attrs      map[string]string `json:"attrs"`
	Parent     int               `json:"parent"`
	Editable   bool              `json:"editable"`
	Display    string            `json:"display"`
	Visibility string            `json:"visibility"`
	Value      string            `json:"value"`
	Text       string            `json:"text"`
}

type snapshot struct {
	URL   string         `json:"url"`
	Title string         `json:"title"`
	Nodes []snapshotNode `json:"nodes"`
}

// Snapshot captures the current state of the page as a document.
func (s *Session) Snapshot(ctx context.Context) (*dom.Tree, error) {
	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:      snapshotJS,
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate snapshot: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	tree, err := decodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	if IsProtected(tree.URL) {
		return nil, ErrProtectedPage
	}
	log.Debug().Str("url", tree.URL).Msg("page snapshot")
	return tree, nil
}

// Active implements extract.Source over the live page.
func (s *Session) Active(ctx context.Context) (dom.Document, error) {
	tree, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// decodeSnapshot rebuilds the element tree from the serialized list. Parents
// always precede their children in document order.
func decodeSnapshot(raw []byte) (*dom.Tree, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	nodes := make([]*dom.Node, len(snap.Nodes))
	var root *dom.Node
	for i, sn := range snap.Nodes {
		n := &dom.Node{
			TagName:    sn.Tag,
			Attrs:      sn.Attrs,
			InnerText:  sn.Text,
			CurValue:   sn.Value,
			IsEditable: sn.Editable,
			Style:      dom.Style{Display: sn.Display, Visibility: sn.Visibility},
		}
		if n.Attrs == nil {
			n.Attrs = map[string]string{}
		}
		nodes[i] = n
		switch {
		case sn.Parent >= 0 && sn.Parent < i:
			nodes[sn.Parent].Append(n)
		case root == nil:
			root = n
		default:
			return nil, fmt.Errorf("decode snapshot: node %d has no parent", i)
		}
	}
	return dom.NewTree(snap.URL, snap.Title, root), nil
}
