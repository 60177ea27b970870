package extractor

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"knowledge-ingest/internal/models"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExtractMarkdown drops markdown syntax and keeps the readable text.
// Each block (heading, paragraph, list item, code block, table cell) ends up on its own line.
func ExtractMarkdown(data []byte) (string, error) {
	doc := markdown.Parser().Parse(text.NewReader(data))

	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(data))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				sb.Write(node.URL(data))
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				newline()
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(data))
				}
				newline()
			}
			return ast.WalkSkipChildren, nil
		default:
			if n.Type() == ast.TypeBlock {
				newline()
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", extractionError(models.FormatMarkdown, err)
	}

	return sanitize(strings.TrimSpace(sb.String())), nil
}
