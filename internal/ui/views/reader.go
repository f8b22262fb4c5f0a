package views

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karasuda/yomu/internal/common"
	"github.com/karasuda/yomu/internal/config"
	"github.com/karasuda/yomu/internal/geometry"
	"github.com/karasuda/yomu/internal/page"
	"github.com/karasuda/yomu/internal/sched"
	"github.com/karasuda/yomu/internal/sequence"
	"github.com/karasuda/yomu/internal/source"
	"github.com/karasuda/yomu/internal/store"
	"github.com/karasuda/yomu/internal/ui"
	"github.com/karasuda/yomu/internal/ui/components"
)

// restoreSettleDelay defers the saved-position scroll until the first layout
// pass has produced offsets; restoreRetryDelay spaces the single retry.
const (
	restoreSettleDelay = 60 * time.Millisecond
	restoreRetryDelay  = 300 * time.Millisecond
)

// ScrollByMsg nudges the reader by a pixel delta. Sent by the app when the
// volume input bridge fires.
type ScrollByMsg struct{ Px int }

// chunkKey addresses one chunk of one page.
type chunkKey struct {
	Page  int
	Chunk int
}

// ReaderView is the paginated reading surface: it feeds scroll and
// visibility events to the scheduler, triggers eligible loads, and renders
// pages as placeholders, error overlays, or half-block rasters.
type ReaderView struct {
	styles   ui.Styles
	cfg      *config.Config
	provider source.Provider
	decoder  source.Decoder
	progress store.ProgressStore

	seqID   string
	session string

	width  int // content cells
	height int

	mode     geometry.FitMode
	deviceW  int
	pxPerRow int

	cont     *sequence.Container
	sch      *sched.Scheduler
	throttle *sched.ScrollThrottle

	scrollPx int

	// gen invalidates in-flight messages across wholesale sequence reloads.
	gen int
	// dwellGen / settleGen cancel superseded debounce timers.
	dwellGen  int
	settleGen int

	pageImages  map[int]image.Image
	chunkImages map[chunkKey]image.Image
	renderCache map[string]string

	fetchErr error
}

// NewReaderView creates the reader for one sequence.
func NewReaderView(cfg *config.Config, styles ui.Styles, provider source.Provider, decoder source.Decoder, progress store.ProgressStore, seqID string) *ReaderView {
	mode, err := geometry.ParseFitMode(cfg.FitMode)
	if err != nil {
		log.Printf("config: %v, falling back to contain", err)
	}
	return &ReaderView{
		styles:      styles,
		cfg:         cfg,
		provider:    provider,
		decoder:     decoder,
		progress:    progress,
		seqID:       seqID,
		session:     store.NewSessionID(),
		mode:        mode,
		deviceW:     cfg.DeviceWidthPx,
		pxPerRow:    cfg.PxPerRow,
		throttle:    sched.NewScrollThrottle(cfg.ScrollDeltaPx),
		pageImages:  make(map[int]image.Image),
		chunkImages: make(map[chunkKey]image.Image),
		renderCache: make(map[string]string),
	}
}

func (v *ReaderView) Init() tea.Cmd { return v.loadSources() }

func (v *ReaderView) SetSize(w, h int) {
	resized := v.width != w || v.height != h
	v.width = w
	v.height = h
	if resized && v.cont != nil {
		// Cover heights depend on the device height, so a resize is a full
		// relayout, same as a fit-mode change.
		v.cont.Relayout(v.geom(), v.estimate())
		v.renderCache = make(map[string]string)
		v.clampScroll()
	}
}

// ── Geometry helpers ────────────────────────────────────────────────────────

func (v *ReaderView) geom() page.Geometry {
	return page.Geometry{
		Mode:          v.mode,
		DeviceW:       v.deviceW,
		DeviceH:       v.viewportPx(),
		TallThreshold: v.cfg.TallThreshold,
		ChunkHeight:   v.cfg.ChunkHeightPx,
	}
}

func (v *ReaderView) estimate() int {
	return geometry.EstimatedHeight(v.deviceW, v.cfg.DefaultAspect)
}

func (v *ReaderView) viewportPx() int {
	if v.height < 1 {
		return v.pxPerRow
	}
	return v.height * v.pxPerRow
}

func (v *ReaderView) maxScroll() int {
	if v.cont == nil {
		return 0
	}
	m := v.cont.TotalHeight() - v.viewportPx()
	if m < 0 {
		m = 0
	}
	return m
}

func (v *ReaderView) clampScroll() {
	if v.scrollPx < 0 {
		v.scrollPx = 0
	}
	if m := v.maxScroll(); v.scrollPx > m {
		v.scrollPx = m
	}
}

// ── Messages and commands ───────────────────────────────────────────────────

type sourcesMsg struct {
	gen  int
	refs []source.Ref
	err  error
}

type progressMsg struct {
	gen   int
	saved store.Progress
	ok    bool
}

type pageDecodedMsg struct {
	gen   int
	index int
	res   *source.Result
	err   error
}

type chunkDecodedMsg struct {
	gen   int
	key   chunkKey
	res   *source.Result
	err   error
}

type dwellTickMsg struct{ gen int }
type settleTickMsg struct{ gen int }
type restoreTickMsg struct{ gen int }
type prefetchDoneMsg struct{}

func (v *ReaderView) loadSources() tea.Cmd {
	provider, seqID, gen := v.provider, v.seqID, v.gen
	return func() tea.Msg {
		refs, err := provider.PageSources(context.Background(), seqID)
		return sourcesMsg{gen: gen, refs: refs, err: err}
	}
}

func (v *ReaderView) readProgress() tea.Cmd {
	progressStore, seqID, gen := v.progress, v.seqID, v.gen
	return func() tea.Msg {
		saved, ok, err := progressStore.Get(seqID)
		if err != nil {
			// Best-effort: a broken progress file means starting at page 1.
			log.Printf("progress read failed: %v", err)
			return progressMsg{gen: gen}
		}
		return progressMsg{gen: gen, saved: saved, ok: ok}
	}
}

func (v *ReaderView) decodePage(idx int, prio source.Priority) tea.Cmd {
	dec, gen := v.decoder, v.gen
	ref := source.Ref(v.cont.Entry(idx).Ref)
	return func() tea.Msg {
		res, err := dec.Decode(context.Background(), ref, source.DecodeOptions{Priority: prio})
		return pageDecodedMsg{gen: gen, index: idx, res: res, err: err}
	}
}

func (v *ReaderView) decodeChunk(key chunkKey, prio source.Priority) tea.Cmd {
	dec, gen := v.decoder, v.gen
	e := v.cont.Entry(key.Page)
	ref := source.Ref(e.Ref)
	c := e.Chunks()[key.Chunk]
	crop := &source.Rect{X: 0, Y: c.StartY, W: e.Size().W, H: c.Height}
	return func() tea.Msg {
		res, err := dec.Decode(context.Background(), ref, source.DecodeOptions{Priority: prio, Crop: crop})
		return chunkDecodedMsg{gen: gen, key: key, res: res, err: err}
	}
}

func (v *ReaderView) prefetch(idx int) tea.Cmd {
	dec := v.decoder
	ref := source.Ref(v.cont.Entry(idx).Ref)
	return func() tea.Msg {
		if err := dec.Prefetch(context.Background(), ref); err != nil {
			// Prefetch is advisory; a failure only costs a later cache miss.
			log.Printf("prefetch %s: %v", ref, err)
		}
		return prefetchDoneMsg{}
	}
}

func (v *ReaderView) persistProgress(idx int) tea.Cmd {
	progressStore := v.progress
	p := store.Progress{
		SequenceID: v.seqID,
		Index:      idx,
		Total:      v.cont.Len(),
		UpdatedAt:  time.Now(),
		Session:    v.session,
	}
	return func() tea.Msg {
		if err := progressStore.Put(p); err != nil {
			// Never blocks reading; the record is retried on the next settle.
			log.Printf("progress save failed: %v", err)
		}
		return nil
	}
}

// ── Update ──────────────────────────────────────────────────────────────────

func (v *ReaderView) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case sourcesMsg:
		if msg.gen != v.gen {
			return v, nil
		}
		return v.handleSources(msg)

	case progressMsg:
		if msg.gen != v.gen || v.cont == nil {
			return v, nil
		}
		return v.handleProgress(msg)

	case pageDecodedMsg:
		if msg.gen != v.gen || v.cont == nil {
			return v, nil
		}
		return v.handlePageDecoded(msg)

	case chunkDecodedMsg:
		if msg.gen != v.gen || v.cont == nil {
			return v, nil
		}
		return v.handleChunkDecoded(msg)

	case dwellTickMsg:
		if msg.gen != v.dwellGen || v.cont == nil {
			return v, nil
		}
		return v, v.applyVisibility()

	case settleTickMsg:
		if msg.gen != v.settleGen || v.cont == nil {
			return v, nil
		}
		if idx, changed := v.sch.Settle(); changed {
			return v, v.persistProgress(idx)
		}
		return v, nil

	case restoreTickMsg:
		if msg.gen != v.gen || v.cont == nil {
			return v, nil
		}
		return v, v.attemptRestore()

	case prefetchDoneMsg:
		return v, nil

	case common.RefreshMsg:
		// Wholesale reload: the session keeps its id, the sequence is
		// replaced (order fixed, truncation allowed).
		v.gen++
		v.fetchErr = nil
		return v, v.loadSources()

	case ScrollByMsg:
		return v, v.scrollBy(msg.Px)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return v, v.scrollBy(-3 * v.pxPerRow)
		case tea.MouseButtonWheelDown:
			return v, v.scrollBy(3 * v.pxPerRow)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *ReaderView) handleSources(msg sourcesMsg) (common.View, tea.Cmd) {
	if msg.err != nil {
		v.fetchErr = msg.err
		v.cont = nil
		return v, common.CmdErr(msg.err)
	}
	refs := make([]string, len(msg.refs))
	for i, r := range msg.refs {
		refs[i] = string(r)
	}

	v.fetchErr = nil
	v.cont = sequence.New(refs, v.estimate())
	v.sch = sched.New(len(refs), sched.Config{
		LookAhead:     v.cfg.LookAhead,
		BehindMargin:  v.cfg.BehindMargin,
		PrefetchAhead: v.cfg.PrefetchAhead,
		InitialBatch:  v.cfg.InitialBatch,
	})
	v.pageImages = make(map[int]image.Image)
	v.chunkImages = make(map[chunkKey]image.Image)
	v.renderCache = make(map[string]string)
	v.scrollPx = 0
	v.throttle = sched.NewScrollThrottle(v.cfg.ScrollDeltaPx)

	cmds := []tea.Cmd{v.readProgress()}
	cmds = append(cmds, v.syncLoads()...)
	return v, tea.Batch(cmds...)
}

func (v *ReaderView) handleProgress(msg progressMsg) (common.View, tea.Cmd) {
	if !msg.ok || msg.saved.Index <= 0 {
		return v, nil
	}
	v.cont.RequestRestore(msg.saved.Index)
	if _, pending := v.cont.PendingRestore(); !pending {
		// Saved index no longer inside the (possibly truncated) sequence.
		return v, nil
	}
	v.sch.SeedSaved(msg.saved.Index)
	cmds := v.syncLoads()
	gen := v.gen
	cmds = append(cmds, tea.Tick(restoreSettleDelay, func(time.Time) tea.Msg {
		return restoreTickMsg{gen: gen}
	}))
	return v, tea.Batch(cmds...)
}

func (v *ReaderView) handlePageDecoded(msg pageDecodedMsg) (common.View, tea.Cmd) {
	if msg.index >= v.cont.Len() {
		return v, nil
	}
	e := v.cont.Entry(msg.index)
	if msg.err != nil {
		e.FailLoad(msg.err)
		log.Printf("page %d: %v", msg.index+1, msg.err)
		return v, nil
	}

	layout, ok := e.CompleteLoad(geometry.Size{W: msg.res.Width, H: msg.res.Height}, v.geom())
	if !ok {
		return v, nil
	}
	v.cont.SetHeight(msg.index, layout.DisplayHeight)
	if !layout.IsTall {
		v.pageImages[msg.index] = msg.res.Image
	}
	delete(v.renderCache, pageCacheKey(msg.index))

	// The layout shifted below this index; re-derive visibility and loads.
	return v, v.applyVisibility()
}

func (v *ReaderView) handleChunkDecoded(msg chunkDecodedMsg) (common.View, tea.Cmd) {
	if msg.key.Page >= v.cont.Len() {
		return v, nil
	}
	e := v.cont.Entry(msg.key.Page)
	if msg.err != nil {
		e.FailChunkLoad(msg.key.Chunk, msg.err)
		log.Printf("page %d chunk %d: %v", msg.key.Page+1, msg.key.Chunk, msg.err)
		return v, nil
	}
	if e.CompleteChunkLoad(msg.key.Chunk) {
		v.chunkImages[msg.key] = msg.res.Image
		delete(v.renderCache, chunkCacheKey(msg.key))
	}
	return v, nil
}

func (v *ReaderView) handleKey(msg tea.KeyMsg) (common.View, tea.Cmd) {
	if v.cont == nil {
		return v, nil
	}
	switch msg.String() {
	case "j", "down":
		return v, v.scrollBy(3 * v.pxPerRow)
	case "k", "up":
		return v, v.scrollBy(-3 * v.pxPerRow)
	case " ", "pgdown", "ctrl+d":
		return v, v.scrollBy(v.viewportPx())
	case "b", "pgup", "ctrl+u":
		return v, v.scrollBy(-v.viewportPx())
	case "g", "home":
		return v, v.scrollTo(0)
	case "G", "end":
		return v, v.scrollTo(v.maxScroll())
	case "f":
		return v.cycleFitMode()
	case "x":
		return v, tea.Batch(v.retryFailed()...)
	}
	return v, nil
}

// ── Scrolling and visibility ────────────────────────────────────────────────

func (v *ReaderView) scrollBy(px int) tea.Cmd {
	return v.scrollTo(v.scrollPx + px)
}

func (v *ReaderView) scrollTo(px int) tea.Cmd {
	if v.cont == nil {
		return nil
	}
	v.scrollPx = px
	v.clampScroll()

	var cmds []tea.Cmd
	if v.throttle.Sample(v.scrollPx) {
		// Debounce the visibility recompute by the dwell window.
		v.dwellGen++
		gen := v.dwellGen
		cmds = append(cmds, tea.Tick(time.Duration(v.cfg.DwellMs)*time.Millisecond, func(time.Time) tea.Msg {
			return dwellTickMsg{gen: gen}
		}))
	}

	// Progress persists only once scrolling comes to rest.
	v.settleGen++
	gen := v.settleGen
	cmds = append(cmds, tea.Tick(time.Duration(v.cfg.SettleMs)*time.Millisecond, func(time.Time) tea.Msg {
		return settleTickMsg{gen: gen}
	}))
	return tea.Batch(cmds...)
}

// applyVisibility recomputes the visible window and issues every load and
// prefetch the new window makes eligible.
func (v *ReaderView) applyVisibility() tea.Cmd {
	top := v.scrollPx
	bottom := v.scrollPx + v.viewportPx()
	visible := v.cont.VisibleIndices(top, bottom, v.cfg.VisibleFraction)
	v.sch.Observe(visible)

	cmds := v.syncLoads()
	for _, idx := range v.sch.PrefetchTargets() {
		cmds = append(cmds, v.prefetch(idx))
	}
	return tea.Batch(cmds...)
}

// syncLoads starts a decode for every eligible unloaded page and every
// chunk inside the widened chunk margin.
func (v *ReaderView) syncLoads() []tea.Cmd {
	var cmds []tea.Cmd
	lo, hi, _ := v.sch.Window()

	for i := 0; i < v.cont.Len(); i++ {
		e := v.cont.Entry(i)
		if e.State() == page.Unloaded && v.sch.Eligible(i) {
			if e.BeginLoad() {
				prio := source.PriorityNormal
				if i >= lo && i <= hi {
					prio = source.PriorityHigh
				}
				cmds = append(cmds, v.decodePage(i, prio))
			}
		}
		if e.State() == page.Ready && e.IsTall() {
			cmds = append(cmds, v.syncChunkLoads(i, e)...)
		}
	}
	return cmds
}

// syncChunkLoads starts decodes for the chunks of tall page i that fall
// within one chunk margin of the viewport.
func (v *ReaderView) syncChunkLoads(i int, e *page.Entry) []tea.Cmd {
	var cmds []tea.Cmd
	intrinsicH := e.Size().H
	if intrinsicH <= 0 {
		return nil
	}
	pageTop := v.cont.Offset(i)
	displayH := e.DisplayHeight()
	margin := int(v.cfg.ChunkMarginVH * float64(v.viewportPx()))
	viewTop, viewBottom := v.scrollPx, v.scrollPx+v.viewportPx()

	for _, c := range e.Chunks() {
		// Scale the chunk's source-pixel extent into display pixels.
		top := pageTop + c.StartY*displayH/intrinsicH
		bottom := pageTop + (c.StartY+c.Height)*displayH/intrinsicH
		if !sched.ChunkVisible(top, bottom, viewTop, viewBottom, margin) {
			continue
		}
		if e.ChunkState(c.Index) != page.Unloaded {
			continue
		}
		if e.BeginChunkLoad(c.Index) {
			cmds = append(cmds, v.decodeChunk(chunkKey{Page: i, Chunk: c.Index}, source.PriorityNormal))
		}
	}
	return cmds
}

// retryFailed re-triggers every failed page and chunk near the viewport.
// Retry is manual only; nothing auto-retries a failed decode.
func (v *ReaderView) retryFailed() []tea.Cmd {
	var cmds []tea.Cmd
	for i := 0; i < v.cont.Len(); i++ {
		e := v.cont.Entry(i)
		if e.State() == page.Failed && v.sch.Eligible(i) && e.BeginLoad() {
			cmds = append(cmds, v.decodePage(i, source.PriorityHigh))
		}
		if e.State() != page.Ready || !e.IsTall() {
			continue
		}
		for _, c := range e.Chunks() {
			if e.ChunkState(c.Index) == page.Failed && e.BeginChunkLoad(c.Index) {
				cmds = append(cmds, v.decodeChunk(chunkKey{Page: i, Chunk: c.Index}, source.PriorityHigh))
			}
		}
	}
	return cmds
}

func (v *ReaderView) cycleFitMode() (common.View, tea.Cmd) {
	v.mode = v.mode.Next()
	if v.cont != nil {
		v.cont.Relayout(v.geom(), v.estimate())
		v.renderCache = make(map[string]string)
		v.clampScroll()
	}
	mode := v.mode.String()
	persist := func() tea.Msg {
		if err := config.SaveFitMode(mode); err != nil {
			log.Printf("save fit mode: %v", err)
		}
		return nil
	}
	return v, tea.Batch(common.CmdInfo("fit: "+mode), persist, v.applyVisibility())
}

// attemptRestore performs the one-shot scroll to a saved index. A target
// outside the current layout is an expected transient failure: it retries
// once after a delay, then falls back to the top.
func (v *ReaderView) attemptRestore() tea.Cmd {
	target, pending := v.cont.PendingRestore()
	if !pending {
		return nil
	}
	if v.width == 0 || v.height == 0 || target >= v.cont.Len() {
		if v.cont.RestoreFailed() {
			gen := v.gen
			return tea.Tick(restoreRetryDelay, func(time.Time) tea.Msg {
				return restoreTickMsg{gen: gen}
			})
		}
		log.Printf("restore to page %d abandoned, starting from the top", target+1)
		return v.scrollTo(0)
	}
	v.cont.RestoreSucceeded()
	return v.scrollTo(v.cont.Offset(target))
}

// ── Rendering ───────────────────────────────────────────────────────────────

func pageCacheKey(i int) string       { return fmt.Sprintf("p%d", i) }
func chunkCacheKey(k chunkKey) string { return fmt.Sprintf("c%d.%d", k.Page, k.Chunk) }

func (v *ReaderView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	if v.fetchErr != nil {
		msg := v.styles.ErrorOverlay.Render("✗ could not load chapter") + "\n\n" +
			v.styles.Muted.Render(ui.Truncate(v.fetchErr.Error(), v.width-8)) + "\n\n" +
			v.styles.Muted.Render("press r to retry")
		return ui.PlaceCentre(v.width, v.height, msg)
	}
	if v.cont == nil {
		return ui.PlaceCentre(v.width, v.height, v.styles.LoadingLabel.Render("… fetching page list"))
	}
	if v.cont.Len() == 0 {
		return ui.PlaceCentre(v.width, v.height, v.styles.Muted.Render("chapter is empty, press r to retry"))
	}

	contentW := v.width - 2 // scrollbar column + gutter
	if contentW < 4 {
		contentW = v.width
	}

	var rows []string
	first := v.cont.IndexAt(v.scrollPx)
	for i := first; i < v.cont.Len() && len(rows) < v.height; i++ {
		segment := v.renderEntry(i, contentW)
		if i == first {
			skip := (v.scrollPx - v.cont.Offset(i)) / v.pxPerRow
			if skip > 0 && skip < len(segment) {
				segment = segment[skip:]
			}
		}
		rows = append(rows, segment...)
	}
	for len(rows) < v.height {
		rows = append(rows, "")
	}
	rows = rows[:v.height]
	content := strings.Join(rows, "\n")

	scrollPct := 0.0
	if m := v.maxScroll(); m > 0 {
		scrollPct = float64(v.scrollPx) / float64(m)
	}
	bar := components.RenderScrollbar(v.styles, v.height, v.cont.TotalHeight(), v.viewportPx(), scrollPct)
	if bar == "" {
		return content
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(contentW+1).Render(content), bar)
}

// entryRows converts an entry's display height to terminal rows (minimum 1).
func (v *ReaderView) entryRows(i int) int {
	rows := v.cont.Height(i) / v.pxPerRow
	if rows < 1 {
		rows = 1
	}
	return rows
}

// renderEntry renders page i as a slice of terminal rows.
func (v *ReaderView) renderEntry(i int, contentW int) []string {
	e := v.cont.Entry(i)
	rows := v.entryRows(i)

	switch e.State() {
	case page.Ready:
		if e.IsTall() {
			return v.renderTallEntry(i, e, contentW)
		}
		return v.renderFlatEntry(i, contentW, rows)
	case page.Loading:
		label := v.styles.LoadingLabel.Render(fmt.Sprintf("… loading page %d", i+1))
		return v.frame(contentW, rows, label)
	case page.Failed:
		label := v.styles.ErrorOverlay.Render(fmt.Sprintf("✗ page %d failed", i+1)) + "\n" +
			v.styles.Muted.Render("press x to retry")
		return v.frame(contentW, rows, label)
	default: // Unloaded: a lightweight index-labelled placeholder
		label := v.styles.PageLabel.Render(fmt.Sprintf("Page %d", i+1))
		return v.frame(contentW, rows, label)
	}
}

func (v *ReaderView) renderFlatEntry(i, contentW, rows int) []string {
	key := pageCacheKey(i)
	cached, ok := v.renderCache[key]
	if !ok {
		img := v.pageImages[i]
		if img == nil {
			return v.frame(contentW, rows, v.styles.LoadingLabel.Render("…"))
		}
		cached = components.RenderImage(img, contentW, rows)
		v.renderCache[key] = cached
	}
	return strings.Split(cached, "\n")
}

// renderTallEntry stacks the page's chunk segments with zero gap.
func (v *ReaderView) renderTallEntry(i int, e *page.Entry, contentW int) []string {
	intrinsicH := e.Size().H
	displayH := e.DisplayHeight()
	var out []string
	for _, c := range e.Chunks() {
		chunkPx := c.Height * displayH / intrinsicH
		rows := chunkPx / v.pxPerRow
		if rows < 1 {
			rows = 1
		}
		key := chunkKey{Page: i, Chunk: c.Index}
		switch e.ChunkState(c.Index) {
		case page.Ready:
			ck := chunkCacheKey(key)
			cached, ok := v.renderCache[ck]
			if !ok {
				cached = components.RenderImage(v.chunkImages[key], contentW, rows)
				v.renderCache[ck] = cached
			}
			out = append(out, strings.Split(cached, "\n")...)
		case page.Loading:
			out = append(out, v.frame(contentW, rows, v.styles.LoadingLabel.Render("…"))...)
		case page.Failed:
			label := v.styles.ErrorOverlay.Render(fmt.Sprintf("✗ slice %d/%d", c.Index+1, c.Total)) + "\n" +
				v.styles.Muted.Render("press x to retry")
			out = append(out, v.frame(contentW, rows, label)...)
		default:
			out = append(out, v.frame(contentW, rows, v.styles.ChunkPending.Render("·"))...)
		}
	}
	return out
}

// frame renders a bordered placeholder box of the given cell size with a
// centred label, as rows.
func (v *ReaderView) frame(contentW, rows int, label string) []string {
	if rows <= 2 || contentW <= 4 {
		line := lipgloss.PlaceHorizontal(contentW, lipgloss.Center, label)
		out := make([]string, rows)
		out[0] = line
		return out
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(v.styles.Theme.Placeholder).
		Width(contentW - 2).
		Height(rows - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(label)
	return strings.Split(box, "\n")
}

// ── Status and help ─────────────────────────────────────────────────────────

func (v *ReaderView) Status() components.StatusBarData {
	data := components.StatusBarData{Title: v.seqID, FitMode: v.mode.String()}
	if v.cont == nil {
		return data
	}
	data.Total = v.cont.Len()
	data.Page = v.sch.CurrentPage() + 1
	if m := v.maxScroll(); m > 0 {
		data.Percent = v.scrollPx * 100 / m
	} else if data.Total > 0 {
		data.Percent = 100
	}
	_, data.Restoring = v.cont.PendingRestore()
	for i := 0; i < v.cont.Len(); i++ {
		switch v.cont.Entry(i).State() {
		case page.Loading:
			data.Loading++
		case page.Failed:
			data.Failed++
		}
	}
	return data
}

func (v *ReaderView) ShortHelp() []components.HelpEntry {
	return []components.HelpEntry{
		{Key: "j/k", Desc: "Scroll"},
		{Key: "space / b", Desc: "Page down / up"},
		{Key: "g / G", Desc: "First / last page"},
		{Key: "f", Desc: "Cycle fit mode"},
		{Key: "x", Desc: "Retry failed pages"},
	}
}
