package parser

import "encoding/json"

type jsonNode struct {
	Kind     string        `json:"kind"`
	Span     *jsonSpan     `json:"span,omitempty"`
	Token    string        `json:"token,omitempty"`
	Mods     string        `json:"modifiers,omitempty"`
	NoBody   bool          `json:"noBody,omitempty"`
	Error    *jsonError    `json:"error,omitempty"`
	Contract *jsonContract `json:"contract,omitempty"`
	Children []*jsonNode   `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonError struct {
	Message string `json:"message"`
	Got     string `json:"got,omitempty"`
}

// jsonContract counts clauses per kind; the clauses themselves appear
// among the children.
type jsonContract struct {
	Requires           int `json:"requires,omitempty"`
	Ensures            int `json:"ensures,omitempty"`
	ExceptionalEnsures int `json:"exceptionalEnsures,omitempty"`
	Throws             int `json:"throws,omitempty"`
	Modifies           int `json:"modifies,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON(true))
}

// JSON renders the tree, with or without source positions.
func (n *Node) JSON(withPositions bool) ([]byte, error) {
	return json.MarshalIndent(n.toJSON(withPositions), "", "  ")
}

func (n *Node) toJSON(withPositions bool) *jsonNode {
	jn := &jsonNode{
		Kind:   n.Kind.String(),
		NoBody: n.NoBody,
	}

	if withPositions && (n.Span.Start.Line != 0 || n.Span.End.Line != 0) {
		jn.Span = &jsonSpan{
			Start: jsonPosition{Line: n.Span.Start.Line, Column: n.Span.Start.Column},
			End:   jsonPosition{Line: n.Span.End.Line, Column: n.Span.End.Column},
		}
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}
	if n.Mods != 0 {
		jn.Mods = n.Mods.String()
	}

	if n.Error != nil {
		jn.Error = &jsonError{Message: n.Error.Message}
		if n.Error.Got != nil {
			jn.Error.Got = n.Error.Got.Literal
		}
	}

	if !n.Contract.IsEmpty() {
		c := n.Contract
		jn.Contract = &jsonContract{
			Requires:           len(c.Requires),
			Ensures:            len(c.Ensures),
			ExceptionalEnsures: len(c.ExceptionalEnsures),
			Throws:             len(c.Throws),
			Modifies:           len(c.Modifies),
		}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON(withPositions)
		}
	}

	return jn
}
