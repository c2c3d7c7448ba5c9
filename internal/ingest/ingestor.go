// Package ingest pulls ticket windows from the relational source,
// embeds them and upserts them into the vector index, both at startup
// and on a nightly schedule.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/eruditedesk/ticketsearch/internal/embed"
	"github.com/eruditedesk/ticketsearch/internal/store"
	"github.com/eruditedesk/ticketsearch/internal/textproc"
)

// windowLength bounds each incremental fetch to 30 days of tickets.
const windowLength = 2_592_000 * time.Second

// refreshHour is the local wall-clock hour of the nightly run.
const refreshHour = 3

// window is one half-open ingestion interval over registry_date.
type window struct {
	from time.Time
	to   time.Time
}

// Ingestor orchestrates windowed catch-up ingestion. It holds no state
// beyond references to its collaborators; the watermark lives in the
// vector index.
type Ingestor struct {
	embedder embed.Embedder
	source   store.TicketSource
	index    store.VectorIndex

	// now is swapped in tests.
	now func() time.Time
}

// New creates an ingestor.
func New(embedder embed.Embedder, source store.TicketSource, index store.VectorIndex) *Ingestor {
	return &Ingestor{
		embedder: embedder,
		source:   source,
		index:    index,
		now:      time.Now,
	}
}

// Update performs one catch-up pass: it splits [watermark, now] into
// consecutive windows of at most 30 days and ingests them in order. A
// window whose fetch fails is skipped; the next scheduled run retries it
// because the watermark only advances through successful upserts.
func (in *Ingestor) Update(ctx context.Context) error {
	from := in.index.Watermark()
	now := in.now()
	windows := splitWindows(from, now)

	slog.Info("ingestion pass starting",
		slog.Time("from", from),
		slog.Time("to", now),
		slog.Int("windows", len(windows)))

	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			slog.Info("ingestion cancelled between windows")
			return err
		}
		if err := in.ingestWindow(ctx, w); err != nil {
			slog.Warn("window skipped",
				slog.Time("from", w.from),
				slog.Time("to", w.to),
				slog.Any("error", err))
		}
	}

	slog.Info("ingestion pass finished", slog.Time("watermark", in.index.Watermark()))
	return nil
}

func (in *Ingestor) ingestWindow(ctx context.Context, w window) error {
	tickets, err := in.source.FetchWindow(ctx, w.from, w.to)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		slog.Debug("window empty", slog.Time("from", w.from), slog.Time("to", w.to))
		return nil
	}

	texts := make([]string, len(tickets))
	for i, t := range tickets {
		texts[i] = textproc.BertText(t.Problem)
	}

	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	points := make([]store.Point, len(tickets))
	for i, t := range tickets {
		points[i] = store.Point{
			ID:     t.Number,
			Vector: vectors[i],
			Payload: store.Payload{
				Text:         t.Problem,
				Client:       t.Client,
				Product:      t.Product,
				RegistryDate: float64(t.RegistryDate.Unix()),
			},
		}
	}

	if err := in.index.Upsert(ctx, points); err != nil {
		return err
	}

	slog.Info("window ingested",
		slog.Time("from", w.from),
		slog.Time("to", w.to),
		slog.Int("tickets", len(tickets)))
	return nil
}

// Run performs one update immediately, then wakes at 03:00 local time
// every night for the next pass. It exits cleanly on context
// cancellation; an in-flight update completes without interruption.
func (in *Ingestor) Run(ctx context.Context) error {
	in.safeUpdate(ctx)

	for {
		next := nextRunAt(in.now())
		slog.Info("next ingestion scheduled", slog.Time("at", next))

		timer := time.NewTimer(next.Sub(in.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("ingestion scheduler stopping")
			return ctx.Err()
		case <-timer.C:
			in.safeUpdate(ctx)
		}
	}
}

// safeUpdate runs one update, containing panics and errors so the
// scheduler loop keeps running.
func (in *Ingestor) safeUpdate(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ingestion pass panicked", slog.Any("panic", r))
		}
	}()
	if err := in.Update(ctx); err != nil && ctx.Err() == nil {
		slog.Error("ingestion pass failed", slog.Any("error", err))
	}
}

// splitWindows cuts [from, now] into consecutive windows of at most 30
// days, the final one ending exactly at now.
func splitWindows(from, now time.Time) []window {
	var windows []window
	for from.Before(now) {
		to := from.Add(windowLength)
		if to.After(now) {
			to = now
		}
		windows = append(windows, window{from: from, to: to})
		from = to
	}
	return windows
}

// nextRunAt returns the next wall-clock refresh time strictly after
// now, in now's location.
func nextRunAt(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), refreshHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
