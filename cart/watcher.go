package cart

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports external modifications of the persisted cart. Each time
// another process writes or removes the cart file, the current contents
// are re-loaded and sent on the returned channel. Last writer still
// wins; watching only makes the winning write visible to long-lived
// sessions instead of letting them run on a stale snapshot.
//
// The watch ends when ctx is cancelled, closing the channel.
func (s *Store) Watch(ctx context.Context) (<-chan []Item, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: atomic saves replace the file
	// by rename, which would silently drop a file-level watch.
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	updates := make(chan []Item, 1)

	go func() {
		defer watcher.Close()
		defer close(updates)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != FileName {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) {
					continue
				}
				select {
				case updates <- s.Load():
				case <-ctx.Done():
					return
				default:
					// Receiver is behind; drop this snapshot. The next
					// event delivers a fresh load anyway.
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Cart watcher error", slog.String("error", err.Error()))
			}
		}
	}()

	return updates, nil
}
