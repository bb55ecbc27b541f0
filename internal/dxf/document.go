// Package dxf reads DXF drawings (ASCII and binary) into a document model of
// layers, blocks, layouts and drawable entities. Reading is tolerant: damaged
// or truncated files load as far as possible and the problems found are kept
// in Document.Warnings.
package dxf

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/investit/dwg2pdf/internal/geom"
)

const (
	modelSpaceBlock = "*MODEL_SPACE"
	paperSpaceBlock = "*PAPER_SPACE"
	// ModelLayoutName is the name of the modelspace layout.
	ModelLayoutName = "Model"
)

type Header struct {
	Version  string
	CodePage string
	InsUnits int
	ExtMin   geom.Point
	ExtMax   geom.Point
}

type Layer struct {
	Name       string
	Color      int
	TrueColor  int
	Off        bool
	Frozen     bool
	Plot       bool
	LineWeight int
}

// Visible reports whether entities on the layer are drawn.
func (l *Layer) Visible() bool {
	return !l.Off && !l.Frozen && l.Plot
}

type Block struct {
	Name     string
	Base     geom.Point
	XRef     bool
	Entities []Entity
}

type Layout struct {
	Name     string
	Block    string
	TabOrder int
	Entities []Entity
}

func (l *Layout) IsModel() bool {
	return strings.EqualFold(l.Block, modelSpaceBlock) || strings.EqualFold(l.Name, ModelLayoutName)
}

type Document struct {
	Header   Header
	Layers   map[string]*Layer
	Blocks   map[string]*Block
	Layouts  []*Layout
	Warnings []string
}

// defaultLayer stands in for layers referenced by entities but missing from
// the LAYER table.
var defaultLayer = Layer{Name: "0", Color: ColorForeground, TrueColor: -1, Plot: true, LineWeight: LineWeightDefault}

func (d *Document) Layer(name string) *Layer {
	if l, ok := d.Layers[strings.ToUpper(name)]; ok {
		return l
	}
	l := defaultLayer
	l.Name = name
	return &l
}

func (d *Document) Block(name string) (*Block, bool) {
	b, ok := d.Blocks[strings.ToUpper(name)]
	return b, ok
}

// Modelspace returns the modelspace layout, which always exists.
func (d *Document) Modelspace() *Layout {
	for _, l := range d.Layouts {
		if l.IsModel() {
			return l
		}
	}
	return d.Layouts[0]
}

// PaperspaceLayouts returns the paperspace layouts in tab order.
func (d *Document) PaperspaceLayouts() []*Layout {
	return lo.Filter(d.Layouts, func(l *Layout, _ int) bool { return !l.IsModel() })
}

func (d *Document) warnf(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return doc, nil
}

type section struct {
	name string
	tags []Tag
}

func Read(data []byte) (*Document, error) {
	tags, warnings, err := ReadTags(data)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Layers:   map[string]*Layer{},
		Blocks:   map[string]*Block{},
		Warnings: warnings,
	}
	sections := doc.splitSections(tags)
	if len(sections) == 0 {
		return nil, fmt.Errorf("no sections found, not a DXF file")
	}

	if s, ok := sections["HEADER"]; ok {
		doc.Header = parseHeader(s.tags)
	}
	decode := codepageDecoder(doc.Header.CodePage)
	for _, s := range sections {
		for i := range s.tags {
			s.tags[i].Value = decode(s.tags[i].Value)
		}
	}

	records := map[string]string{}
	layoutOfRecord := map[string]string{}
	if s, ok := sections["TABLES"]; ok {
		doc.parseTables(s.tags, records, layoutOfRecord)
	}
	if s, ok := sections["BLOCKS"]; ok {
		doc.parseBlocks(s.tags)
	}
	var entities []Entity
	if s, ok := sections["ENTITIES"]; ok {
		entities = doc.collectEntities(s.tags)
	}
	var layouts []*Layout
	if s, ok := sections["OBJECTS"]; ok {
		layouts = parseLayouts(s.tags, records, layoutOfRecord)
	}
	doc.assignLayouts(layouts, entities)
	return doc, nil
}

func (d *Document) splitSections(tags []Tag) map[string]*section {
	rsl := map[string]*section{}
	var cur *section
	sawEOF := false
	for i := 0; i < len(tags); i++ {
		tag := tags[i]
		switch {
		case tag.Is(0, "SECTION"):
			if cur != nil {
				d.warnf("section %s not closed", cur.name)
			}
			name := ""
			if i+1 < len(tags) && tags[i+1].Code == 2 {
				name = strings.ToUpper(strings.TrimSpace(tags[i+1].Value))
				i++
			}
			cur = &section{name: name}
			if _, dup := rsl[name]; !dup {
				rsl[name] = cur
			}
		case tag.Is(0, "ENDSEC"):
			cur = nil
		case tag.Is(0, "EOF"):
			sawEOF = true
			i = len(tags)
		default:
			if cur != nil {
				cur.tags = append(cur.tags, tag)
			}
		}
	}
	if cur != nil {
		d.warnf("section %s not closed", cur.name)
	}
	if !sawEOF && len(rsl) > 0 {
		d.warnf("missing EOF marker, file may be truncated")
	}
	return rsl
}

func parseHeader(tags []Tag) Header {
	var h Header
	vars := map[string]tagList{}
	var name string
	for _, tag := range tags {
		if tag.Code == 9 {
			name = strings.ToUpper(strings.TrimSpace(tag.Value))
			vars[name] = tagList{tag}
			continue
		}
		if name != "" {
			vars[name] = append(vars[name], tag)
		}
	}
	h.Version = strings.TrimSpace(vars["$ACADVER"].str(1, ""))
	h.CodePage = strings.TrimSpace(vars["$DWGCODEPAGE"].str(3, "ANSI_1252"))
	h.InsUnits = vars["$INSUNITS"].int(70, 0)
	h.ExtMin = vars["$EXTMIN"].point(10)
	h.ExtMax = vars["$EXTMAX"].point(10)
	return h
}

// chunks splits tags at every (0, ...) tag.
func chunks(tags []Tag) []tagList {
	var rsl []tagList
	start := -1
	for i, tag := range tags {
		if tag.Code != 0 {
			continue
		}
		if start >= 0 {
			rsl = append(rsl, tags[start:i])
		}
		start = i
	}
	if start >= 0 {
		rsl = append(rsl, tags[start:])
	}
	return rsl
}

func chunkType(c tagList) string {
	return strings.ToUpper(strings.TrimSpace(c[0].Value))
}

func (d *Document) parseTables(tags []Tag, records, layoutOfRecord map[string]string) {
	for _, c := range chunks(tags) {
		c = c.stripped()
		switch chunkType(c) {
		case "LAYER":
			name := strings.TrimSpace(c.str(2, ""))
			if name == "" {
				continue
			}
			color := c.int(62, ColorForeground)
			flags := c.int(70, 0)
			l := &Layer{
				Name:       name,
				Color:      color,
				TrueColor:  c.int(420, -1),
				Off:        color < 0,
				Frozen:     flags&1 != 0,
				Plot:       c.int(290, 1) != 0,
				LineWeight: c.int(370, LineWeightDefault),
			}
			if l.Color < 0 {
				l.Color = -l.Color
			}
			d.Layers[strings.ToUpper(name)] = l
		case "BLOCK_RECORD":
			handle := strings.ToUpper(strings.TrimSpace(c.str(5, "")))
			name := strings.TrimSpace(c.str(2, ""))
			if handle == "" || name == "" {
				continue
			}
			records[handle] = name
			if layout := c.str(340, ""); layout != "" {
				layoutOfRecord[strings.ToUpper(strings.TrimSpace(layout))] = name
			}
		}
	}
}

func (d *Document) parseBlocks(tags []Tag) {
	var cur *Block
	var body []Tag
	flush := func() {
		if cur == nil {
			return
		}
		if !cur.XRef {
			cur.Entities = d.collectEntities(body)
		}
		d.Blocks[strings.ToUpper(cur.Name)] = cur
		cur, body = nil, nil
	}
	for _, c := range chunks(tags) {
		switch chunkType(c) {
		case "BLOCK":
			flush()
			c = c.stripped()
			cur = &Block{
				Name: strings.TrimSpace(c.str(2, c.str(3, ""))),
				Base: c.point(10),
				XRef: c.int(70, 0)&4 != 0,
			}
		case "ENDBLK":
			flush()
		default:
			if cur != nil {
				body = append(body, c...)
			}
		}
	}
	if cur != nil {
		d.warnf("block %s not closed", cur.Name)
		flush()
	}
}

// collectEntities builds the entities of an ENTITIES section or block body,
// joining POLYLINE/VERTEX/SEQEND and INSERT/ATTRIB/SEQEND sequences.
func (d *Document) collectEntities(tags []Tag) []Entity {
	cs := chunks(tags)
	var rsl []Entity
	skipped := map[string]int{}
	for i := 0; i < len(cs); i++ {
		typ := chunkType(cs[i])
		switch typ {
		case "POLYLINE":
			var vertices []tagList
			j := i + 1
			for ; j < len(cs) && chunkType(cs[j]) == "VERTEX"; j++ {
				vertices = append(vertices, cs[j])
			}
			if j < len(cs) && chunkType(cs[j]) == "SEQEND" {
				j++
			}
			if p, ok := buildPolyline(cs[i], vertices); ok {
				rsl = append(rsl, p)
			} else {
				skipped["POLYLINE (mesh)"]++
			}
			i = j - 1
		case "INSERT":
			e, _ := buildEntity(cs[i])
			ins := e.(*Insert)
			j := i + 1
			for ; j < len(cs) && chunkType(cs[j]) == "ATTRIB"; j++ {
				if a, ok := buildEntity(cs[j]); ok {
					ins.Attribs = append(ins.Attribs, a.(*Text))
				}
			}
			if j < len(cs) && chunkType(cs[j]) == "SEQEND" {
				j++
			}
			rsl = append(rsl, ins)
			i = j - 1
		case "SEQEND", "VERTEX", "ATTDEF":
		default:
			if e, ok := buildEntity(cs[i]); ok {
				rsl = append(rsl, e)
			} else {
				skipped[typ]++
			}
		}
	}
	keys := lo.Keys(skipped)
	sort.Strings(keys)
	for _, k := range keys {
		d.warnf("skipped %d unsupported %s entities", skipped[k], k)
	}
	return rsl
}

func parseLayouts(tags []Tag, records, layoutOfRecord map[string]string) []*Layout {
	var rsl []*Layout
	for _, c := range chunks(tags) {
		if chunkType(c) != "LAYOUT" {
			continue
		}
		handle := strings.ToUpper(strings.TrimSpace(c.str(5, "")))
		// the layout's own groups follow the AcDbLayout subclass marker
		var own tagList
		for i, tag := range c {
			if tag.Is(100, "AcDbLayout") {
				own = c[i:]
				break
			}
		}
		if own == nil {
			continue
		}
		l := &Layout{
			Name:     strings.TrimSpace(own.str(1, "")),
			TabOrder: own.int(71, 0),
		}
		if record, ok := records[strings.ToUpper(strings.TrimSpace(own.str(330, "")))]; ok {
			l.Block = record
		} else if record, ok := layoutOfRecord[handle]; ok {
			l.Block = record
		}
		rsl = append(rsl, l)
	}
	sort.SliceStable(rsl, func(i, j int) bool { return rsl[i].TabOrder < rsl[j].TabOrder })
	return rsl
}

func (d *Document) assignLayouts(layouts []*Layout, entities []Entity) {
	var model, paper []Entity
	for _, e := range entities {
		if e.Common().PaperSpace {
			paper = append(paper, e)
		} else {
			model = append(model, e)
		}
	}
	if b, ok := d.Block(modelSpaceBlock); ok {
		model = append(model, b.Entities...)
	}
	if b, ok := d.Block(paperSpaceBlock); ok {
		paper = append(paper, b.Entities...)
	}

	modelLayout := &Layout{Name: ModelLayoutName, Block: modelSpaceBlock, Entities: model}
	d.Layouts = []*Layout{modelLayout}
	seenActivePaper := false
	for _, l := range layouts {
		if l.IsModel() {
			continue
		}
		switch {
		case strings.EqualFold(l.Block, paperSpaceBlock):
			l.Entities = paper
			seenActivePaper = true
		case l.Block != "":
			if b, ok := d.Block(l.Block); ok {
				l.Entities = b.Entities
			}
		}
		d.Layouts = append(d.Layouts, l)
	}
	if !seenActivePaper && len(paper) > 0 {
		d.Layouts = append(d.Layouts, &Layout{Name: "Layout1", Block: paperSpaceBlock, Entities: paper})
	}
}
