package multigraph

import (
	"io"

	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// WriteDOT writes the graph in Graphviz DOT format with gonum's encoder.
// Nodes are named by id; labels are omitted when the label functions are
// nil or return an empty string.
//
//	digraph {
//		// Node definitions.
//		1 [label=created];
//		2;
//
//		// Edge definitions.
//		1 -> 2 [label=7];
//	}
func WriteDOT[K ~int64, N any, E comparable](w io.Writer, g *MultiDiGraph[K, N, E], nodeLabel func(K, N) string, edgeLabel func(E) string) error {
	out := multi.NewDirectedGraph()
	for _, id := range g.order {
		n := dotNode{id: int64(id)}
		if nodeLabel != nil {
			n.attrs = label(nodeLabel(id, g.nodes[id]))
		}
		out.AddNode(n)
	}
	for i, e := range g.edges {
		l := dotLine{Line: multi.Line{F: out.Node(int64(e.From)), T: out.Node(int64(e.To)), UID: int64(i)}}
		if edgeLabel != nil {
			l.attrs = label(edgeLabel(e.Key))
		}
		out.SetLine(l)
	}
	b, err := dot.MarshalMulti(out, "", "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func label(s string) []encoding.Attribute {
	if s == "" {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: s}}
}

// dotNode is a node carrying DOT attributes.
type dotNode struct {
	id    int64
	attrs []encoding.Attribute
}

func (n dotNode) ID() int64 { return n.id }
func (n dotNode) Attributes() []encoding.Attribute { return n.attrs }

// dotLine is a line carrying DOT attributes.
type dotLine struct {
	multi.Line
	attrs []encoding.Attribute
}

func (l dotLine) Attributes() []encoding.Attribute { return l.attrs }
