package diagfmt

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"volt/internal/diag"
	"volt/internal/source"
)

// tabWidth задаёт ширину табуляции при выравнивании подчёркиваний.
const tabWidth = 4

// maxRenderedSuggestions ограничивает число подсказок на одну диагностику.
const maxRenderedSuggestions = 4

// maxMarginDepth ограничивает вложенность многострочных подчёркиваний;
// более глубокие рисуются только по первой строке.
const maxMarginDepth = 6

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает заголовок "error[TYP3308]: message",
// строку "--> file:line:col", размеченные строки исходника с
// подчёркиваниями ^/- и метками, затем = note/= help и подсказки.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	ew := &errWriter{w: w}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			ew.print("\n")
		}
		newPrettyRenderer(ew, fs, opts, p).render(d)
	}
	return ew.err
}

// PrettyEmitter прогоняет каждую диагностику через Pretty-формат сразу при
// отправке из Handler.
type PrettyEmitter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	p    palette
	n    int
}

func NewPrettyEmitter(w io.Writer, fs *source.FileSet, opts PrettyOpts) *PrettyEmitter {
	return &PrettyEmitter{w: w, fs: fs, opts: opts, p: newPalette(opts.Color)}
}

func (e *PrettyEmitter) Emit(d *diag.Diagnostic) {
	ew := &errWriter{w: e.w}
	if e.n > 0 {
		ew.print("\n")
	}
	e.n++
	newPrettyRenderer(ew, e.fs, e.opts, e.p).render(d)
}

func (e *PrettyEmitter) ShouldShowExplain() bool { return true }

// errWriter запоминает первую ошибку записи и глушит остальные, чтобы не
// проверять каждый Fprintf.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

type palette struct {
	err    *color.Color
	warn   *color.Color
	note   *color.Color
	help   *color.Color
	bold   *color.Color
	border *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		note:   mk(color.FgGreen, color.Bold),
		help:   mk(color.FgCyan, color.Bold),
		bold:   mk(color.Bold),
		border: mk(color.FgBlue, color.Bold),
	}
}

func (p *palette) level(l diag.Level) *color.Color {
	switch l {
	case diag.LevelWarning:
		return p.warn
	case diag.LevelNote:
		return p.note
	case diag.LevelHelp:
		return p.help
	default:
		return p.err
	}
}

func levelTitle(l diag.Level) string {
	switch l {
	case diag.LevelBug:
		return "error: internal compiler error"
	case diag.LevelFatal, diag.LevelError, diag.LevelFailureNote:
		return "error"
	case diag.LevelWarning:
		return "warning"
	case diag.LevelNote:
		return "note"
	case diag.LevelHelp:
		return "help"
	default:
		return l.String()
	}
}

type prettyRenderer struct {
	ew   *errWriter
	fs   *source.FileSet
	opts PrettyOpts
	p    palette
	gw   int
}

func newPrettyRenderer(ew *errWriter, fs *source.FileSet, opts PrettyOpts, p palette) *prettyRenderer {
	return &prettyRenderer{ew: ew, fs: fs, opts: opts, p: p}
}

func (r *prettyRenderer) render(d *diag.Diagnostic) {
	r.gw = r.gutterWidth(d)
	lc := r.p.level(d.Level)

	title := levelTitle(d.Level)
	if d.Code != diag.NoCode && d.Level != diag.LevelBug {
		title += "[" + d.Code.ID() + "]"
	}
	r.ew.print(lc.Sprint(title))
	r.ew.print(r.p.bold.Sprint(": " + d.Message))
	r.ew.print("\n")

	snippet := r.renderSpanned(&d.Span, lc)

	var eqRows []string
	if r.opts.ShowNotes {
		eqRows = append(eqRows, r.plainChildRows(d)...)
	}
	if r.opts.ShowFixes {
		eqRows = append(eqRows, r.compactSuggestionRows(d)...)
	}
	if snippet && len(eqRows) > 0 {
		r.emptyGutterRow(r.gw)
	}
	for _, row := range eqRows {
		r.ew.print(row)
	}

	if r.opts.ShowNotes {
		r.renderSpannedChildren(d)
	}
	if r.opts.ShowFixes {
		r.renderSuggestionWindows(d)
	}
}

// gutterWidth подбирает ширину колонки с номерами строк по самой дальней
// строке, которой касается диагностика.
func (r *prettyRenderer) gutterWidth(d *diag.Diagnostic) int {
	maxLine := 1
	span := func(sp source.Span) {
		if r.fs == nil || int(sp.File) >= r.fs.Len() {
			return
		}
		if line := int(r.fs.Get(sp.File).PositionFor(sp.End).Line); line > maxLine {
			maxLine = line
		}
	}
	multi := func(ms *diag.MultiSpan) {
		for _, sp := range ms.Primary {
			span(sp)
		}
		for _, l := range ms.Labels {
			span(l.Span)
		}
	}
	multi(&d.Span)
	for i := range d.Children {
		multi(&d.Children[i].Span)
	}
	for i := range d.Suggestions {
		for _, sub := range d.Suggestions[i].Substitutions {
			for _, part := range sub.Parts {
				span(part.Span)
				maxLine += strings.Count(part.Snippet, "\n")
			}
		}
	}
	return digits(maxLine)
}

func digits(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}

func pad(n int) string { return strings.Repeat(" ", n) }

func (r *prettyRenderer) emptyGutterRow(gw int) {
	r.ew.print(pad(gw) + " " + r.p.border.Sprint("|") + "\n")
}

// renderSpanned печатает локацию и размеченный исходник для набора спанов.
// Возвращает false, если печатать нечего.
func (r *prettyRenderer) renderSpanned(ms *diag.MultiSpan, lc *color.Color) bool {
	first, ok := ms.PrimarySpan()
	if !ok || r.fs == nil || int(first.File) >= r.fs.Len() {
		return false
	}
	for i, fid := range fileOrder(ms) {
		if int(fid) >= r.fs.Len() {
			continue
		}
		f := r.fs.Get(fid)
		anns := fileAnnotations(ms, f)
		if len(anns) == 0 {
			continue
		}
		if i == 0 {
			pos := f.PositionFor(first.Start)
			r.ew.print(pad(r.gw) + r.p.border.Sprint("--> "))
			r.ew.printf("%s:%d:%d\n", pathFor(f, r.fs, r.opts.PathMode), pos.Line, pos.Col)
		} else {
			r.ew.print(pad(r.gw) + r.p.border.Sprint("::: "))
			r.ew.printf("%s:%d:%d\n", pathFor(f, r.fs, r.opts.PathMode), anns[0].startLine, anns[0].startCol+1)
		}
		r.fileBlock(f, anns, lc)
	}
	return true
}

// fileOrder перечисляет файлы мультиспана: сначала файл первичного спана,
// остальные в порядке появления.
func fileOrder(ms *diag.MultiSpan) []source.FileID {
	var order []source.FileID
	seen := make(map[source.FileID]bool)
	add := func(id source.FileID) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, sp := range ms.Primary {
		add(sp.File)
	}
	for _, l := range ms.Labels {
		add(l.Span.File)
	}
	return order
}

// annotation — один подчёркиваемый регион в координатах строк и рун.
type annotation struct {
	startLine uint32
	endLine   uint32
	startCol  int // руны, 0-based
	endCol    int // руны, не включительно (на endLine)
	primary   bool
	label     string
	slot      int // колонка в поле многострочных скобок, -1 для однострочных
}

func fileAnnotations(ms *diag.MultiSpan, f *source.File) []annotation {
	var anns []annotation
	labeled := make(map[source.Span]bool)
	for _, l := range ms.Labels {
		if l.Span.File != f.ID {
			continue
		}
		labeled[l.Span] = true
		anns = append(anns, makeAnnotation(f, l.Span, ms.IsPrimary(l.Span), l.Text))
	}
	for _, sp := range ms.Primary {
		if sp.File != f.ID || labeled[sp] {
			continue
		}
		anns = append(anns, makeAnnotation(f, sp, true, ""))
	}
	sortAnnotations(anns)
	return anns
}

func makeAnnotation(f *source.File, sp source.Span, primary bool, label string) annotation {
	start := f.PositionFor(sp.Start)
	end := f.PositionFor(sp.End)
	a := annotation{
		startLine: start.Line,
		endLine:   end.Line,
		startCol:  runeColumn(f.GetLine(start.Line), start.Col),
		endCol:    runeColumn(f.GetLine(end.Line), end.Col),
		primary:   primary,
		label:     label,
		slot:      -1,
	}
	if a.endLine < a.startLine {
		a.endLine = a.startLine
	}
	if a.endLine == a.startLine && a.endCol <= a.startCol {
		// пустой спан (вставка) подчёркивается одной кареткой
		a.endCol = a.startCol + 1
	}
	return a
}

func sortAnnotations(anns []annotation) {
	for i := 1; i < len(anns); i++ {
		for j := i; j > 0; j-- {
			a, b := &anns[j-1], &anns[j]
			if a.startLine < b.startLine || (a.startLine == b.startLine && a.startCol <= b.startCol) {
				break
			}
			anns[j-1], anns[j] = anns[j], anns[j-1]
		}
	}
}

// runeColumn переводит байтовую колонку (1-based) в руновый индекс строки.
func runeColumn(line string, byteCol uint32) int {
	idx := int(byteCol) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(line) {
		idx = len(line)
	}
	return utf8.RuneCountInString(line[:idx])
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", pad(tabWidth))
}

// displayCol считает экранную колонку руны с учётом табов и широких рун.
func displayCol(line string, runeIdx int) int {
	w, i := 0, 0
	for _, rn := range line {
		if i >= runeIdx {
			break
		}
		if rn == '\t' {
			w += tabWidth
		} else {
			w += runewidth.RuneWidth(rn)
		}
		i++
	}
	return w
}

func (r *prettyRenderer) annColor(a *annotation, lc *color.Color) *color.Color {
	if a.primary {
		return lc
	}
	return r.p.border
}

func (r *prettyRenderer) fileBlock(f *source.File, anns []annotation, lc *color.Color) {
	// многострочным подчёркиваниям раздаются колонки в поле слева
	mw := 0
	slotColors := make([]*color.Color, 0, maxMarginDepth)
	for i := range anns {
		a := &anns[i]
		if a.endLine == a.startLine {
			continue
		}
		if mw == maxMarginDepth {
			line := f.GetLine(a.startLine)
			a.endLine = a.startLine
			a.endCol = utf8.RuneCountInString(line)
			if a.endCol <= a.startCol {
				a.endCol = a.startCol + 1
			}
			continue
		}
		a.slot = mw
		slotColors = append(slotColors, r.annColor(a, lc))
		mw++
	}

	lines := displayLines(anns)
	open := make([]bool, mw)

	r.emptyGutterRow(r.gw)
	prev := uint32(0)
	for _, l := range lines {
		if prev != 0 && l > prev+1 {
			if l == prev+2 {
				r.sourceRow(f, prev+1, open, slotColors, mw)
			} else {
				r.ew.print(r.p.border.Sprint("...") + "\n")
			}
		}
		r.sourceRow(f, l, open, slotColors, mw)
		for i := range anns {
			a := &anns[i]
			if a.slot >= 0 && a.endLine == l && open[a.slot] {
				r.closingRow(f, a, open, slotColors, mw, lc)
				open[a.slot] = false
			}
		}
		for i := range anns {
			a := &anns[i]
			if a.slot >= 0 && a.startLine == l {
				r.openingRow(f, a, open, slotColors, mw, lc)
				open[a.slot] = true
			}
		}
		r.inlineRows(f, l, anns, open, slotColors, mw, lc)
		prev = l
	}
}

// displayLines выбирает строки для показа: строки однострочных
// подчёркиваний, края многострочных и короткие внутренности целиком.
func displayLines(anns []annotation) []uint32 {
	show := make(map[uint32]bool)
	for i := range anns {
		a := &anns[i]
		show[a.startLine] = true
		if a.slot < 0 {
			continue
		}
		show[a.endLine] = true
		if a.endLine-a.startLine <= 3 {
			for l := a.startLine + 1; l < a.endLine; l++ {
				show[l] = true
			}
		} else {
			show[a.startLine+1] = true
		}
	}
	lines := make([]uint32, 0, len(show))
	for l := range show {
		lines = append(lines, l)
	}
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j-1] > lines[j]; j-- {
			lines[j-1], lines[j] = lines[j], lines[j-1]
		}
	}
	return lines
}

func (r *prettyRenderer) margin(open []bool, slotColors []*color.Color, mw int) string {
	if mw == 0 {
		return ""
	}
	var b strings.Builder
	for s := 0; s < mw; s++ {
		if open[s] {
			b.WriteString(slotColors[s].Sprint("|"))
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

func (r *prettyRenderer) sourceRow(f *source.File, line uint32, open []bool, slotColors []*color.Color, mw int) {
	text := expandTabs(f.GetLine(line))
	r.ew.print(r.p.border.Sprintf("%*d |", r.gw, line))
	r.ew.print(" " + r.margin(open, slotColors, mw) + text + "\n")
}

func (r *prettyRenderer) rowPrefix() string {
	return pad(r.gw) + " " + r.p.border.Sprint("|") + " "
}

// openingRow рисует начало многострочного подчёркивания: подвод из '_' к
// первой колонке спана.
func (r *prettyRenderer) openingRow(f *source.File, a *annotation, open []bool, slotColors []*color.Color, mw int, lc *color.Color) {
	c := r.annColor(a, lc)
	mark := "^"
	if !a.primary {
		mark = "-"
	}
	target := mw + 1 + displayCol(f.GetLine(a.startLine), a.startCol)
	var b strings.Builder
	for s := 0; s < a.slot; s++ {
		if open[s] {
			b.WriteString(slotColors[s].Sprint("|"))
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	run := target - a.slot - 1
	if run < 0 {
		run = 0
	}
	b.WriteString(c.Sprint(strings.Repeat("_", run) + mark))
	r.ew.print(r.rowPrefix() + b.String() + "\n")
}

// closingRow завершает многострочное подчёркивание и печатает его метку.
func (r *prettyRenderer) closingRow(f *source.File, a *annotation, open []bool, slotColors []*color.Color, mw int, lc *color.Color) {
	c := r.annColor(a, lc)
	mark := "^"
	if !a.primary {
		mark = "-"
	}
	endCol := a.endCol - 1
	if endCol < 0 {
		endCol = 0
	}
	target := mw + 1 + displayCol(f.GetLine(a.endLine), endCol)
	var b strings.Builder
	for s := 0; s < a.slot; s++ {
		if open[s] {
			b.WriteString(slotColors[s].Sprint("|"))
		} else {
			b.WriteByte(' ')
		}
	}
	run := target - a.slot - 1
	if run < 0 {
		run = 0
	}
	b.WriteString(c.Sprint("|" + strings.Repeat("_", run) + mark))
	if a.label != "" {
		b.WriteString(" " + c.Sprint(a.label))
	}
	r.ew.print(r.rowPrefix() + b.String() + "\n")
}

// inlineRows рисует каретки для однострочных подчёркиваний на строке line,
// потом столбиком доносит метки, не поместившиеся в первый ряд.
func (r *prettyRenderer) inlineRows(f *source.File, line uint32, anns []annotation, open []bool, slotColors []*color.Color, mw int, lc *color.Color) {
	var here []*annotation
	for i := range anns {
		a := &anns[i]
		if a.slot < 0 && a.startLine == line && a.endLine == line {
			here = append(here, a)
		}
	}
	if len(here) == 0 {
		return
	}
	text := f.GetLine(line)
	segs := make([]inlineSeg, len(here))
	maxEnd := 0
	for i, a := range here {
		ds := displayCol(text, a.startCol)
		de := displayCol(text, a.endCol)
		if de <= ds {
			de = ds + 1
		}
		segs[i] = inlineSeg{ann: a, ds: ds, de: de}
		if de > maxEnd {
			maxEnd = de
		}
	}

	canvas := make([]byte, maxEnd)
	for i := range canvas {
		canvas[i] = ' '
	}
	fill := func(s inlineSeg, ch byte) {
		for i := s.ds; i < s.de; i++ {
			canvas[i] = ch
		}
	}
	for _, s := range segs {
		if !s.ann.primary {
			fill(s, '-')
		}
	}
	for _, s := range segs {
		if s.ann.primary {
			fill(s, '^')
		}
	}

	// метка самого правого подчёркивания едет в хвост первого ряда
	var inline *inlineSeg
	for i := range segs {
		s := &segs[i]
		if s.ann.label == "" {
			continue
		}
		if s.de == maxEnd && (inline == nil || s.ds > inline.ds) {
			inline = s
		}
	}

	marginStr := r.margin(open, slotColors, mw)
	row := r.rowPrefix() + marginStr + r.colorCanvas(canvas, lc)
	if inline != nil {
		row += " " + r.annColor(inline.ann, lc).Sprint(inline.ann.label)
	}
	r.ew.print(row + "\n")

	var stacked []inlineSeg
	for _, s := range segs {
		if s.ann.label != "" && (inline == nil || s.ann != inline.ann) {
			stacked = append(stacked, s)
		}
	}
	if len(stacked) == 0 {
		return
	}
	for i := 1; i < len(stacked); i++ {
		for j := i; j > 0 && stacked[j-1].ds > stacked[j].ds; j-- {
			stacked[j-1], stacked[j] = stacked[j], stacked[j-1]
		}
	}
	pipeRow := func(upto int) (string, int) {
		var b strings.Builder
		col := 0
		for _, s := range stacked[:upto] {
			if s.ds < col {
				continue
			}
			b.WriteString(pad(s.ds - col))
			b.WriteString(r.annColor(s.ann, lc).Sprint("|"))
			col = s.ds + 1
		}
		return b.String(), col
	}
	pipes, _ := pipeRow(len(stacked))
	r.ew.print(r.rowPrefix() + marginStr + pipes + "\n")
	for i := len(stacked) - 1; i >= 0; i-- {
		s := stacked[i]
		pipes, col := pipeRow(i)
		gap := s.ds - col
		if gap < 0 {
			gap = 0
		}
		row := r.rowPrefix() + marginStr + pipes + pad(gap) +
			r.annColor(s.ann, lc).Sprint(s.ann.label)
		r.ew.print(row + "\n")
	}
}

// inlineSeg — однострочное подчёркивание в экранных колонках.
type inlineSeg struct {
	ann    *annotation
	ds, de int
}

func (r *prettyRenderer) colorCanvas(canvas []byte, lc *color.Color) string {
	var b strings.Builder
	i := 0
	for i < len(canvas) {
		j := i
		for j < len(canvas) && canvas[j] == canvas[i] {
			j++
		}
		chunk := string(canvas[i:j])
		switch canvas[i] {
		case '^':
			b.WriteString(lc.Sprint(chunk))
		case '-':
			b.WriteString(r.p.border.Sprint(chunk))
		default:
			b.WriteString(chunk)
		}
		i = j
	}
	return b.String()
}

// plainChildRows собирает безместные note/help в строки вида "= note: msg".
func (r *prettyRenderer) plainChildRows(d *diag.Diagnostic) []string {
	var rows []string
	for i := range d.Children {
		c := &d.Children[i]
		if c.Span.HasPrimary() {
			continue
		}
		rows = append(rows, r.eqRow(c.Level, c.Message))
	}
	return rows
}

func (r *prettyRenderer) eqRow(level diag.Level, msg string) string {
	name := levelTitle(level)
	head := pad(r.gw) + " " + r.p.border.Sprint("=") + " " + r.p.level(level).Sprint(name) + ": "
	lines := strings.Split(msg, "\n")
	row := head + lines[0] + "\n"
	indent := pad(r.gw + 3 + len(name) + 2)
	for _, extra := range lines[1:] {
		row += indent + extra + "\n"
	}
	return row
}

// renderSpannedChildren печатает дочерние сообщения, у которых есть свой
// спан, отдельными мини-сниппетами.
func (r *prettyRenderer) renderSpannedChildren(d *diag.Diagnostic) {
	for i := range d.Children {
		c := &d.Children[i]
		if !c.Span.HasPrimary() {
			continue
		}
		lc := r.p.level(c.Level)
		r.ew.print(lc.Sprint(levelTitle(c.Level)))
		r.ew.print(r.p.bold.Sprint(": " + c.Message))
		r.ew.print("\n")
		r.renderSpanned(&c.Span, lc)
	}
}

// compactSuggestionRows превращает короткие подсказки в строки
// "= help: msg: `snippet`".
func (r *prettyRenderer) compactSuggestionRows(d *diag.Diagnostic) []string {
	var rows []string
	shown := 0
	for i := range d.Suggestions {
		s := &d.Suggestions[i]
		if s.Style == diag.StyleCompletelyHidden {
			continue
		}
		if shown == maxRenderedSuggestions {
			break
		}
		shown++
		switch s.Style {
		case diag.StyleHideCodeAlways:
			rows = append(rows, r.eqRow(diag.LevelHelp, s.Message))
		case diag.StyleHideCodeInline:
			if snip, ok := inlineSnippet(s, r.fs); ok {
				rows = append(rows, r.eqRow(diag.LevelHelp, s.Message+": `"+snip+"`"))
			} else {
				rows = append(rows, r.eqRow(diag.LevelHelp, s.Message))
			}
		default:
			if snip, ok := inlineSnippet(s, r.fs); ok {
				rows = append(rows, r.eqRow(diag.LevelHelp, s.Message+": `"+snip+"`"))
			}
		}
	}
	return rows
}

// inlineSnippet решает, можно ли показать замену одной строкой: одна
// подстановка из одной части, короткая, без переносов, поверх
// однострочного спана.
func inlineSnippet(s *diag.CodeSuggestion, fs *source.FileSet) (string, bool) {
	if len(s.Substitutions) != 1 || len(s.Substitutions[0].Parts) != 1 {
		return "", false
	}
	part := s.Substitutions[0].Parts[0]
	if strings.Contains(part.Snippet, "\n") || utf8.RuneCountInString(part.Snippet) > 40 {
		return "", false
	}
	if fs == nil || int(part.Span.File) >= fs.Len() {
		return "", false
	}
	f := fs.Get(part.Span.File)
	if f.PositionFor(part.Span.Start).Line != f.PositionFor(part.Span.End).Line {
		return "", false
	}
	return part.Snippet, true
}

// renderSuggestionWindows печатает подсказки, не уместившиеся в одну
// строку: заголовок "help: ..." и срезанный через Splice фрагмент с
// маркерами замен.
func (r *prettyRenderer) renderSuggestionWindows(d *diag.Diagnostic) {
	if r.fs == nil {
		return
	}
	shown := 0
	for i := range d.Suggestions {
		s := &d.Suggestions[i]
		if s.Style == diag.StyleCompletelyHidden {
			continue
		}
		if shown == maxRenderedSuggestions {
			break
		}
		shown++
		if s.Style != diag.StyleShowCode {
			continue
		}
		if _, ok := inlineSnippet(s, r.fs); ok {
			continue
		}
		spliced, ok := s.Splice(r.fs)
		if !ok {
			continue
		}
		r.ew.print(r.p.help.Sprint("help"))
		r.ew.print(r.p.bold.Sprint(": " + s.Message))
		r.ew.print("\n")
		for _, sub := range spliced {
			r.suggestionWindow(&sub)
		}
	}
}

func (r *prettyRenderer) suggestionWindow(sub *diag.SplicedSubstitution) {
	if len(sub.Parts) == 0 || r.fs == nil || int(sub.Parts[0].Span.File) >= r.fs.Len() {
		return
	}
	f := r.fs.Get(sub.Parts[0].Span.File)
	startLine := f.PositionFor(sub.Parts[0].Span.Start).Line
	lines := strings.Split(sub.Text, "\n")
	gw := r.gw
	if w := digits(int(startLine) + len(lines) - 1); w > gw {
		gw = w
	}

	r.ew.print(pad(gw) + " " + r.p.border.Sprint("|") + "\n")
	for i, ln := range lines {
		r.ew.print(r.p.border.Sprintf("%*d |", gw, startLine+uint32(i)))
		r.ew.print(" " + expandTabs(ln) + "\n")

		canvas := markerCanvas(sub.Highlights, i, ln)
		if canvas != "" {
			r.ew.print(pad(gw) + " " + r.p.border.Sprint("|") + " " + r.p.help.Sprint(canvas) + "\n")
		}
	}
}

// markerCanvas строит ряд '~' и '+' под изменёнными участками строки.
func markerCanvas(highlights []diag.SpliceHighlight, line int, text string) string {
	var canvas []byte
	for _, h := range highlights {
		if h.Line != line {
			continue
		}
		ds := displayCol(text, h.StartCol)
		de := displayCol(text, h.EndCol)
		if de <= ds {
			de = ds + 1
		}
		for len(canvas) < de {
			canvas = append(canvas, ' ')
		}
		ch := byte('~')
		if h.Insert {
			ch = '+'
		}
		for i := ds; i < de; i++ {
			canvas[i] = ch
		}
	}
	return strings.TrimRight(string(canvas), " ")
}
