package catalog

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the catalog file must be quiet before a reload.
const reloadDebounce = 250 * time.Millisecond

// Watcher reloads a MemoryStore when its CSV file changes on disk.
type Watcher struct {
	Path string

	// Reloaded receives the song count after every successful reload.
	// Sends are dropped when nobody is listening.
	Reloaded <-chan int

	store    *MemoryStore
	reloaded chan int
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher that keeps store in sync with the CSV at path.
func NewWatcher(path string, store *MemoryStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}

	ch := make(chan int, 1)
	return &Watcher{
		Path:     abs,
		Reloaded: ch,
		store:    store,
		reloaded: ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. The parent directory is watched rather than the file
// so that atomic replace-by-rename is picked up. On failure the watcher is
// closed and must not be stopped.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		w.watcher.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(reloadDebounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < reloadDebounce {
				continue
			}
			pending = time.Time{}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("catalog: watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	songs, err := LoadCSV(w.Path)
	if err != nil {
		// Keep serving the previous catalog.
		log.Printf("catalog: reload failed: %v", err)
		return
	}

	w.store.Replace(songs)
	n := w.store.Len()
	log.Printf("catalog: reloaded %d songs from %s", n, w.Path)

	select {
	case w.reloaded <- n:
	default:
	}
}
