package docx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Styling applied to appended rows. Sizes are in half-points.
const (
	FontFace       = "Arial"
	RowFontSize    = 18 // 9 pt
	BannerFontSize = 14 // 7 pt

	// RowWidth is the number of values an item row carries.
	RowWidth = 3
)

// Replacement substitutes every occurrence of Marker with Value.
type Replacement struct {
	Marker string
	Value  string
}

// Substitute applies the replacements, in order, to every text run of the
// body paragraphs and of the paragraphs inside body tables. Matching is
// scoped to a single run: a marker whose text Word split across runs is left
// untouched. It returns the number of runs changed.
func (d *Document) Substitute(replacements []Replacement) int {
	changed := 0
	for _, p := range d.paragraphs() {
		for _, r := range children(p, "r") {
			if substituteRun(r, replacements) {
				changed++
			}
		}
	}
	return changed
}

// substituteRun rewrites each stretch of w:t texts between the run's other
// content (tabs, breaks, ...) on its own, so those elements keep their place.
func substituteRun(r *etree.Element, replacements []Replacement) bool {
	changed := false
	for _, texts := range textSegments(r) {
		if substituteTexts(r, texts, replacements) {
			changed = true
		}
	}
	return changed
}

// textSegments groups consecutive w:t children of r. Run properties do not
// split a segment; any other element does.
func textSegments(r *etree.Element) [][]*etree.Element {
	var segments [][]*etree.Element
	var current []*etree.Element
	for _, c := range r.ChildElements() {
		switch {
		case c.Space == "w" && c.Tag == "t":
			current = append(current, c)
		case c.Space == "w" && c.Tag == "rPr":
		default:
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
		}
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

func substituteTexts(r *etree.Element, texts []*etree.Element, replacements []Replacement) bool {
	var sb strings.Builder
	for _, t := range texts {
		sb.WriteString(t.Text())
	}
	original := sb.String()

	replaced := original
	for _, rep := range replacements {
		if rep.Marker == "" || !strings.Contains(replaced, rep.Marker) {
			continue
		}
		replaced = strings.ReplaceAll(replaced, rep.Marker, rep.Value)
	}
	if replaced == original {
		return false
	}

	setText(texts[0], replaced)
	for _, t := range texts[1:] {
		r.RemoveChild(t)
	}
	return true
}

// paragraphs lists body paragraphs followed by table cell paragraphs.
func (d *Document) paragraphs() []*etree.Element {
	paragraphs := children(d.body, "p")
	for _, tbl := range d.tables() {
		for _, tr := range children(tbl, "tr") {
			for _, tc := range children(tr, "tc") {
				paragraphs = append(paragraphs, children(tc, "p")...)
			}
		}
	}
	return paragraphs
}

func (d *Document) tables() []*etree.Element {
	return children(d.body, "tbl")
}

func (d *Document) table(index int) (*etree.Element, error) {
	tables := d.tables()
	if index < 0 || index >= len(tables) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoTable, index, len(tables))
	}
	return tables[index], nil
}

// AppendRow adds a row of exactly RowWidth values to the table at index.
// Each cell is centred both ways and set in FontFace at RowFontSize.
func (d *Document) AppendRow(index int, values []string) error {
	tbl, err := d.table(index)
	if err != nil {
		return err
	}
	if len(values) != RowWidth {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowArity, len(values), RowWidth)
	}

	widths := gridWidths(tbl)
	columns := len(widths)
	if columns == 0 {
		columns = len(values)
	}

	tr := etree.NewElement("w:tr")
	for i := 0; i < columns; i++ {
		text := ""
		if i < len(values) {
			text = values[i]
		}
		width := ""
		if i < len(widths) {
			width = widths[i]
		}
		tr.AddChild(newCell(text, width, 1, RowFontSize))
	}
	tbl.AddChild(tr)
	return nil
}

// AppendMergedRow adds a row holding a single cell that spans the whole
// table grid, set in FontFace at BannerFontSize.
func (d *Document) AppendMergedRow(index int, text string) error {
	tbl, err := d.table(index)
	if err != nil {
		return err
	}

	widths := gridWidths(tbl)
	span := len(widths)
	if span == 0 {
		span = 1
	}
	total := 0
	for _, w := range widths {
		n, _ := strconv.Atoi(w)
		total += n
	}
	width := ""
	if total > 0 {
		width = strconv.Itoa(total)
	}

	tr := etree.NewElement("w:tr")
	tr.AddChild(newCell(text, width, span, BannerFontSize))
	tbl.AddChild(tr)
	return nil
}

// TableRows returns the text of every cell of the table at index.
func (d *Document) TableRows(index int) ([][]string, error) {
	tbl, err := d.table(index)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, tr := range children(tbl, "tr") {
		var cells []string
		for _, tc := range children(tr, "tc") {
			cells = append(cells, textOf(tc))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Paragraphs returns the text of each body paragraph outside tables.
func (d *Document) Paragraphs() []string {
	var texts []string
	for _, p := range children(d.body, "p") {
		texts = append(texts, textOf(p))
	}
	return texts
}

func newCell(text, width string, span, halfPoints int) *etree.Element {
	tc := etree.NewElement("w:tc")

	tcPr := tc.CreateElement("w:tcPr")
	if width != "" {
		tcW := tcPr.CreateElement("w:tcW")
		tcW.CreateAttr("w:w", width)
		tcW.CreateAttr("w:type", "dxa")
	}
	if span > 1 {
		tcPr.CreateElement("w:gridSpan").CreateAttr("w:val", strconv.Itoa(span))
	}
	tcPr.CreateElement("w:vAlign").CreateAttr("w:val", "center")

	p := tc.CreateElement("w:p")
	p.CreateElement("w:pPr").CreateElement("w:jc").CreateAttr("w:val", "center")

	r := p.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", FontFace)
	fonts.CreateAttr("w:hAnsi", FontFace)
	fonts.CreateAttr("w:cs", FontFace)
	size := strconv.Itoa(halfPoints)
	rPr.CreateElement("w:sz").CreateAttr("w:val", size)
	rPr.CreateElement("w:szCs").CreateAttr("w:val", size)

	setText(r.CreateElement("w:t"), text)
	return tc
}

func gridWidths(tbl *etree.Element) []string {
	grid := tbl.SelectElement("w:tblGrid")
	if grid == nil {
		return nil
	}
	var widths []string
	for _, col := range children(grid, "gridCol") {
		widths = append(widths, col.SelectAttrValue("w:w", ""))
	}
	return widths
}

func setText(t *etree.Element, text string) {
	t.RemoveAttr("xml:space")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
}

// children returns the direct w:<tag> children of e.
func children(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Space == "w" && c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func textOf(e *etree.Element) string {
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Space == "w" && c.Tag == "t" {
				sb.WriteString(c.Text())
				continue
			}
			walk(c)
		}
	}
	walk(e)
	return sb.String()
}
