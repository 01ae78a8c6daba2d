package dashboard

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the course and directive directories and marks the served
// analysis stale when a document changes. It blocks until the context is
// cancelled.
func (s *Server) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dashboard: create watcher: %w", err)
	}
	defer watcher.Close()

	watching := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.logger.Printf("dashboard: cannot watch %s: %v", dir, err)
			continue
		}
		watching++
	}
	if watching == 0 {
		return fmt.Errorf("dashboard: no watchable directories")
	}
	s.logger.Printf("dashboard: watching %d directories for document changes", watching)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.logger.Printf("dashboard: %s changed, marking analysis stale", event.Name)
				s.MarkStale()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Printf("dashboard: watcher error: %v", err)
		}
	}
}
