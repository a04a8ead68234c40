// Package template holds the hand-authored default layout for each campaign
// stage, used to seed a workspace when no saved layout exists.
package template

import (
	"errors"
	"fmt"

	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/panel"
)

// Direction is the axis along which a split divides its area.
type Direction string

const (
	// Horizontal places children side by side.
	Horizontal Direction = "horizontal"
	// Vertical stacks children.
	Vertical Direction = "vertical"
)

// Node is a split tree. Leaves carry a panel; splits carry a direction, the
// percentage given to the first child, and exactly two children.
type Node struct {
	Panel     panel.ID  `json:"panel,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Ratio     float64   `json:"ratio,omitempty"`
	Children  []Node    `json:"children,omitempty"`
}

// Leaf returns a leaf node for id.
func Leaf(id panel.ID) Node {
	return Node{Panel: id}
}

// Split returns a split node.
func Split(direction Direction, ratio float64, first, second Node) Node {
	return Node{Direction: direction, Ratio: ratio, Children: []Node{first, second}}
}

// IsLeaf reports whether n holds a panel rather than children.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	out := n
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Leaves returns the panels of n depth-first, left to right.
func (n Node) Leaves() []panel.ID {
	if n.IsLeaf() {
		if n.Panel == "" {
			return nil
		}
		return []panel.ID{n.Panel}
	}
	var out []panel.ID
	for _, child := range n.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}

// Validate checks the structure of n.
func (n Node) Validate() error {
	if n.IsLeaf() {
		if n.Panel == "" {
			return errors.New("leaf without panel")
		}
		if _, ok := panel.Lookup(n.Panel); !ok {
			return fmt.Errorf("unknown panel %q", n.Panel)
		}
		return nil
	}
	if n.Panel != "" {
		return fmt.Errorf("split carries panel %q", n.Panel)
	}
	if n.Direction != Horizontal && n.Direction != Vertical {
		return fmt.Errorf("invalid direction %q", n.Direction)
	}
	if n.Ratio <= 0 || n.Ratio >= 100 {
		return fmt.Errorf("ratio %v out of range", n.Ratio)
	}
	if len(n.Children) != 2 {
		return fmt.Errorf("split has %d children, want 2", len(n.Children))
	}
	for _, child := range n.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

var defaults = map[panel.Stage]Node{
	panel.StagePrep: Split(Horizontal, 60,
		Split(Vertical, 60, Leaf(panel.CampaignOverview), Leaf(panel.Notes)),
		Split(Vertical, 50, Leaf(panel.NPCs), Leaf(panel.AIGenerator)),
	),
	panel.StageLive: Split(Horizontal, 65,
		Split(Vertical, 70, Leaf(panel.BattleMap), Leaf(panel.Initiative)),
		Split(Vertical, 50,
			Leaf(panel.Chat),
			Split(Vertical, 50, Leaf(panel.DiceRoller), Leaf(panel.SessionLog)),
		),
	),
	panel.StageRecap: Split(Horizontal, 55,
		Split(Vertical, 60, Leaf(panel.RecapSummary), Leaf(panel.SessionLog)),
		Split(Vertical, 50, Leaf(panel.Timeline), Leaf(panel.Notes)),
	),
}

// Default returns a copy of the default tree for stage.
func Default(stage panel.Stage) (Node, error) {
	node, ok := defaults[stage]
	if !ok {
		return Node{}, fmt.Errorf("no default layout for stage %q", stage)
	}
	return node.Clone(), nil
}

// Sides maps a tree onto the two workspace panels. A horizontal root gives
// its first subtree to the left panel and its second to the right; any other
// root is placed entirely on the left.
func Sides(node Node) (left, right []panel.ID, ratio float64) {
	if node.IsLeaf() || node.Direction != Horizontal || len(node.Children) != 2 {
		return node.Leaves(), nil, 100
	}
	return node.Children[0].Leaves(), node.Children[1].Leaves(), node.Ratio
}
