// -----------------------------------------------------------------------
// Markdown -> PDF rendering via a goldmark AST walk. Shared by the
// flowing document format and the landscape deck format, which differ
// only in page geometry and type scale.
// -----------------------------------------------------------------------

package reports

import (
	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// docStyle is the type scale one format renders with
type docStyle struct {
	baseSize    float64
	headingSize [4]float64 // h1, h2, h3, h4 and deeper
	lineHeight  float64
}

var (
	documentStyle = docStyle{
		baseSize:    9,
		headingSize: [4]float64{14, 12, 11, 10},
		lineHeight:  5,
	}
	deckStyle = docStyle{
		baseSize:    13,
		headingSize: [4]float64{26, 20, 16, 14},
		lineHeight:  7,
	}
)

func (st docStyle) forHeading(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 4 {
		level = 4
	}
	return st.headingSize[level-1]
}

type docRenderer struct {
	pdf    *fpdf.Fpdf
	style  docStyle
	logger arbor.ILogger

	source []byte
	font   string
	bold   bool
	italic bool
	inList bool
	depth  int // list nesting
}

func newDocRenderer(pdf *fpdf.Fpdf, style docStyle, logger arbor.ILogger) *docRenderer {
	return &docRenderer{pdf: pdf, style: style, logger: logger, font: "Arial"}
}

// usableWidth is the page width inside the horizontal margins
func (r *docRenderer) usableWidth() float64 {
	w, _ := r.pdf.GetPageSize()
	left, _, right, _ := r.pdf.GetMargins()
	return w - left - right
}

// writeHeading emits a section title outside of any markdown body
func (r *docRenderer) writeHeading(title string, level int) {
	r.pdf.SetFont(r.font, "B", r.style.forHeading(level))
	r.pdf.Write(r.style.forHeading(level) / 2, title)
	r.pdf.Ln(r.style.lineHeight + 3)
	r.updateFont()
}

// writeMarkdown parses and renders one markdown body at the current position
func (r *docRenderer) writeMarkdown(markdown string) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)
	r.source = []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(r.source))
	r.updateFont()
	return ast.Walk(doc, r.walk)
}

// writeImage embeds a PNG scaled to fit the given box, preserving aspect
// ratio. A zero maxH means flow with automatic page breaks.
func (r *docRenderer) writeImage(path string, maxH float64) {
	opt := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	info := r.pdf.RegisterImageOptions(path, opt)
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		r.logger.Warn().Str("path", path).Msg("Skipping unreadable chart image")
		return
	}

	w := r.usableWidth()
	h := info.Height() * w / info.Width()
	if maxH > 0 && h > maxH {
		h = maxH
		w = info.Width() * h / info.Height()
	}

	left, _, _, _ := r.pdf.GetMargins()
	r.pdf.ImageOptions(path, left, r.pdf.GetY(), w, h, true, opt, 0, "")
	r.pdf.Ln(3)
}

func (r *docRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.style.baseSize)
}

func (r *docRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(r.style.lineHeight + 2)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(r.style.lineHeight, string(n.Text(r.source)))
		}
	case ast.KindEmphasis:
		return r.handleEmphasis(n.(*ast.Emphasis), entering)
	case ast.KindCodeSpan:
		return r.handleCodeSpan(n, entering)
	case ast.KindList:
		return r.handleList(n.(*ast.List), entering)
	case ast.KindListItem:
		return r.handleListItem(entering)
	case ast.KindThematicBreak:
		if entering {
			left, _, _, _ := r.pdf.GetMargins()
			r.pdf.Ln(2)
			r.pdf.Line(left, r.pdf.GetY(), left+r.usableWidth(), r.pdf.GetY())
			r.pdf.Ln(2)
		}
	case extast.KindTable:
		return r.handleTable(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (r *docRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(4)
		r.pdf.SetFont(r.font, "B", r.style.forHeading(n.Level))
	} else {
		r.pdf.Ln(r.style.lineHeight + 2)
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

func (r *docRenderer) handleEmphasis(n *ast.Emphasis, entering bool) (ast.WalkStatus, error) {
	if n.Level == 2 {
		r.bold = entering
	} else {
		r.italic = entering
	}
	r.updateFont()
	return ast.WalkContinue, nil
}

func (r *docRenderer) handleCodeSpan(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.SetFont("Courier", "", r.style.baseSize)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				r.pdf.Write(r.style.lineHeight, string(t.Segment.Value(r.source)))
			}
		}
	} else {
		r.updateFont()
	}
	return ast.WalkSkipChildren, nil
}

func (r *docRenderer) handleList(n *ast.List, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.inList = true
		r.depth++
	} else {
		r.depth--
		if r.depth == 0 {
			r.inList = false
			r.pdf.Ln(2)
		}
	}
	return ast.WalkContinue, nil
}

func (r *docRenderer) handleListItem(entering bool) (ast.WalkStatus, error) {
	if entering {
		left, _, _, _ := r.pdf.GetMargins()
		r.pdf.Ln(r.style.lineHeight)
		r.pdf.SetX(left + float64(r.depth)*5.0)
		r.pdf.Write(r.style.lineHeight, "- ")
	}
	return ast.WalkContinue, nil
}

func (r *docRenderer) handleTable(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var rows [][]string
	var collect func(node ast.Node)
	collect = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch row := c.(type) {
			case *extast.TableRow:
				rows = append(rows, r.extractRow(row))
			case *extast.TableHeader:
				collect(row)
			}
		}
	}
	collect(n)

	r.renderTable(rows)
	return ast.WalkSkipChildren, nil
}

func (r *docRenderer) extractRow(n *extast.TableRow) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(r.source)))
		}
	}
	return row
}

// renderTable emits a bordered grid with a shaded header row. Columns are
// sized to their widest cell, scaled down when the row overflows the page.
func (r *docRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	numCols := len(rows[0])
	fontSize := r.style.baseSize - 1
	lineHeight := r.style.lineHeight

	r.pdf.SetFont(r.font, "B", fontSize)
	widths := make([]float64, numCols)
	for _, row := range rows {
		for i, cell := range row {
			if i >= numCols {
				break
			}
			if w := r.pdf.GetStringWidth(cell) + 4; w > widths[i] {
				widths[i] = w
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if max := r.usableWidth(); total > max {
		scale := max / total
		for i := range widths {
			widths[i] *= scale
		}
	}

	r.pdf.Ln(2)
	left, _, _, _ := r.pdf.GetMargins()
	for i, row := range rows {
		fill := false
		if i == 0 {
			r.pdf.SetFont(r.font, "B", fontSize)
			r.pdf.SetFillColor(230, 230, 230)
			fill = true
		} else {
			r.pdf.SetFont(r.font, "", fontSize)
		}
		r.pdf.SetX(left)
		for j, cell := range row {
			if j >= numCols {
				break
			}
			r.pdf.CellFormat(widths[j], lineHeight+2, r.fitCell(cell, widths[j]-2), "1", 0, "L", fill, 0, "")
		}
		r.pdf.Ln(lineHeight + 2)
	}
	r.pdf.Ln(2)
	r.updateFont()
}

// fitCell truncates cell text with an ellipsis when it cannot fit the
// column width
func (r *docRenderer) fitCell(text string, width float64) string {
	if r.pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 1 && r.pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
