package mdconverter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rgonek/notion-md/blocks"
	"github.com/rgonek/notion-md/converter"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

var taskMarkerRe = regexp.MustCompile(`^\[[ xX]\]\s*`)

// convertListItems builds the blocks for one list level. depth starts at 1.
// ordered comes from the outermost list and applies to every nested level.
// Items that cannot nest any deeper are returned as siblings following the
// item that held them.
func (s *state) convertListItems(list *ast.List, ordered bool, depth int) ([]blocks.Block, error) {
	var content []blocks.Block

	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		if err := s.checkContext(); err != nil {
			return nil, err
		}

		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}

		var (
			converted []blocks.Block
			err       error
		)
		if checkbox := taskCheckBox(item); checkbox != nil {
			converted, err = s.convertTaskItem(item, checkbox.IsChecked, ordered, depth)
		} else {
			converted, err = s.convertListItem(item, ordered, depth)
		}
		if err != nil {
			return nil, err
		}
		content = append(content, converted...)
	}

	return content, nil
}

func (s *state) convertListItem(item *ast.ListItem, ordered bool, depth int) ([]blocks.Block, error) {
	var (
		texts    []string
		children []blocks.Block
		hoisted  []blocks.Block
	)

	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			texts = append(texts, s.rawLines(typed)...)
			if containsImage(typed) {
				children, hoisted = placeNested(s.imageBlocks(typed), children, hoisted, depth)
			}

		case *ast.List:
			if depth < blocks.MaxDepth {
				nested, err := s.convertListItems(typed, ordered, depth+1)
				if err != nil {
					return nil, err
				}
				children = append(children, nested...)
				continue
			}

			s.addWarning(
				converter.WarningDepthExceeded,
				typed.Kind().String(),
				fmt.Sprintf("Nested list at depth %d exceeds maximum depth of %d. Flattening to siblings.", depth+1, blocks.MaxDepth),
			)
			nested, err := s.convertListItems(typed, ordered, depth)
			if err != nil {
				return nil, err
			}
			hoisted = append(hoisted, nested...)

		default:
			converted, err := s.convertNestedBlock(typed, ordered, depth)
			if err != nil {
				return nil, err
			}
			children, hoisted = placeNested(converted, children, hoisted, depth)
		}
	}

	content := []blocks.Block{
		blocks.NewListItem(ordered, strings.Join(texts, "\n"), children...),
	}
	return append(content, hoisted...), nil
}

// placeNested attaches non-list blocks under an item when they fit inside the
// depth limit, otherwise it hoists them to follow the item.
func placeNested(converted, children, hoisted []blocks.Block, depth int) ([]blocks.Block, []blocks.Block) {
	if len(converted) == 0 {
		return children, hoisted
	}
	if depth+nestingDepth(converted) <= blocks.MaxDepth {
		return append(children, converted...), hoisted
	}
	return children, append(hoisted, converted...)
}

// imageBlocks builds one image block per inline image in node.
func (s *state) imageBlocks(node ast.Node) []blocks.Block {
	images := s.collectImages(node)
	content := make([]blocks.Block, 0, len(images))
	for _, image := range images {
		content = append(content, blocks.NewImage(image.url, image.alt))
	}
	return content
}

// convertTaskItem builds a to-do block. To-dos carry no children, so nested
// content is converted at the same depth and follows the item.
func (s *state) convertTaskItem(item *ast.ListItem, checked, ordered bool, depth int) ([]blocks.Block, error) {
	var (
		texts   []string
		hoisted []blocks.Block
	)

	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			lines := s.rawLines(typed)
			if len(texts) == 0 && len(lines) > 0 {
				lines[0] = taskMarkerRe.ReplaceAllString(lines[0], "")
			}
			texts = append(texts, lines...)

		case *ast.List:
			s.addWarning(
				converter.WarningDroppedFeature,
				typed.Kind().String(),
				"Nested list inside a to-do item cannot be attached as children. Flattening to siblings.",
			)
			nested, err := s.convertListItems(typed, ordered, depth)
			if err != nil {
				return nil, err
			}
			hoisted = append(hoisted, nested...)

		default:
			converted, err := s.convertNestedBlock(typed, ordered, depth-1)
			if err != nil {
				return nil, err
			}
			hoisted = append(hoisted, converted...)
		}
	}

	content := []blocks.Block{
		blocks.NewToDo(strings.Join(texts, "\n"), checked),
	}
	return append(content, hoisted...), nil
}

func taskCheckBox(item *ast.ListItem) *extast.TaskCheckBox {
	container := item.FirstChild()
	if container == nil {
		return nil
	}

	switch container.(type) {
	case *ast.TextBlock, *ast.Paragraph:
		checkbox, _ := container.FirstChild().(*extast.TaskCheckBox)
		return checkbox
	default:
		return nil
	}
}

// convertNestedBlock converts a block found inside a list item. Lists within
// it continue counting from parentDepth and keep the enclosing ordered flag.
func (s *state) convertNestedBlock(node ast.Node, ordered bool, parentDepth int) ([]blocks.Block, error) {
	savedDepth, savedOrdered := s.listDepth, s.listOrdered
	s.listDepth, s.listOrdered = parentDepth, ordered
	defer func() { s.listDepth, s.listOrdered = savedDepth, savedOrdered }()

	return s.convertBlockNode(node)
}

// nestingDepth is the number of block levels in the forest.
func nestingDepth(list []blocks.Block) int {
	deepest := 0
	for _, block := range list {
		if depth := 1 + nestingDepth(blocks.ChildrenOf(block)); depth > deepest {
			deepest = depth
		}
	}
	return deepest
}
