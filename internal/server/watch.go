package server

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/soup/pkg/provider"
	"github.com/matzehuels/soup/pkg/recipe"
)

// watchManifests reloads the snapshot when a manifest directory of the
// current snapshot sees a Recipe.sml change. The watched set follows each
// new snapshot.
func (s *Server) watchManifests(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool)
	s.syncWatches(watcher, watched)

	reloaded := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != recipe.RecipeFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(s.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				s.logger.Info("manifest changed, resolving", "file", event.Name)
				if _, err := s.Reload(ctx, false); err != nil {
					s.logger.Error("reload failed", "err", err)
				}
				select {
				case reloaded <- struct{}{}:
				default:
				}
			})

		case <-reloaded:
			s.syncWatches(watcher, watched)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "err", err)
		}
	}
}

// syncWatches makes watcher follow the manifest directories of the current
// snapshot.
func (s *Server) syncWatches(watcher *fsnotify.Watcher, watched map[string]bool) {
	want := manifestDirs(s.store.Load())
	for dir := range watched {
		if !slices.Contains(want, dir) {
			_ = watcher.Remove(dir)
			delete(watched, dir)
		}
	}
	for _, dir := range want {
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			s.logger.Debug("cannot watch directory", "dir", dir, "err", err)
			continue
		}
		watched[dir] = true
	}
}

// manifestDirs lists the existing directories holding manifests the
// snapshot loaded or failed to load, sorted.
func manifestDirs(snap *provider.Snapshot) []string {
	if snap == nil {
		return nil
	}
	seen := map[string]bool{filepath.Dir(snap.RootPath): true}
	for _, id := range snap.Provider.PackageIDs() {
		if info, err := snap.Provider.GetPackageInfo(id); err == nil {
			seen[info.PackageRoot] = true
		}
	}
	for _, n := range snap.Notifications {
		seen[filepath.Dir(n.Path)] = true
	}

	var dirs []string
	for dir := range seen {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	slices.Sort(dirs)
	return dirs
}
