package catalog

import (
	"context"
	"log"
	"sync"
)

// DefaultConcurrency is the number of concurrent tag lookups.
const DefaultConcurrency = 5

// Tagger looks up descriptive tags for a track, most popular first.
type Tagger interface {
	TagNames(ctx context.Context, artist, track string) ([]string, error)
}

// Enricher fills in missing genres from an external tag source.
type Enricher struct {
	tagger      Tagger
	concurrency int
}

// EnrichOption configures an Enricher.
type EnrichOption func(*Enricher)

// WithConcurrency sets the number of concurrent tag lookups.
func WithConcurrency(n int) EnrichOption {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEnricher creates an Enricher backed by tagger.
func NewEnricher(tagger Tagger, opts ...EnrichOption) *Enricher {
	e := &Enricher{
		tagger:      tagger,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich looks up tags for every song with neither a genre nor a super-genre
// and maps them with SuperGenreFromTags. Lookups that fail or return nothing
// leave the song untouched. Songs are updated in place; the returned count is
// the number of songs that gained a super-genre. A cancelled context stops
// outstanding lookups and is reported as the error.
func (e *Enricher) Enrich(ctx context.Context, songs []Song) (int, error) {
	var pending []int
	for i, s := range songs {
		if s.Genre == "" && s.SuperGenre == "" && s.Name != "" && s.Artists != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	workCh := make(chan int, len(pending))
	for _, i := range pending {
		workCh <- i
	}
	close(workCh)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		enriched int
		failed   int
	)
	for range e.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					continue
				}

				// Each worker owns songs[i]; indices are unique.
				s := &songs[i]
				tags, err := e.tagger.TagNames(ctx, s.PrimaryArtist(), s.Name)
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}

				sg := SuperGenreFromTags(tags)
				if sg == "" {
					continue
				}
				s.Genre = tags[0]
				s.SuperGenre = sg

				mu.Lock()
				enriched++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if failed > 0 {
		log.Printf("catalog: tag lookup failed for %d of %d songs", failed, len(pending))
	}
	if err := ctx.Err(); err != nil {
		return enriched, err
	}
	return enriched, nil
}
