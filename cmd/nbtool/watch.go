package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/internal/fs"
	"github.com/akeil/notebook/internal/logging"
	"github.com/akeil/notebook/pkg/notify"
)

const (
	notificationsPath = "/notifications"
	settleTime        = 200 * time.Millisecond
)

func doWatch(s settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closer, err := openStorage(s)
	if err != nil {
		return err
	}
	defer closer()
	book, err := nb.Open(st)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	for _, p := range watchPaths(s) {
		err = watcher.Add(p)
		if err != nil {
			return fmt.Errorf("failed to watch %q: %w", p, err)
		}
	}

	hub := notify.NewHub()
	mux := http.NewServeMux()
	mux.Handle(notificationsPath, hub)
	srv := &http.Server{Addr: s.Listen, Handler: mux}
	srvErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()
	defer func() {
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("%v watching %q, notifications at ws://%v%v\n", ellipsis, s.Path, s.Listen, notificationsPath)

	// Changes usually come in bursts, wait for the storage to settle.
	settle := time.NewTimer(settleTime)
	settle.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Stop watching.")
			return nil
		case err := <-srvErr:
			return err
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watcher error: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(s, event) {
				continue
			}
			logging.Debug("Storage event %v", event)
			if s.Backend != "sqlite" && event.Has(fsnotify.Create) {
				// new node directories must be watched, too
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					watcher.Add(event.Name)
				}
			}
			settle.Reset(settleTime)
		case <-settle.C:
			// syncs run one at a time on this goroutine
			fresh, err := nb.Open(st)
			if err != nil {
				fmt.Printf("%v Failed to read notebook: %v\n", crossmark, err)
				continue
			}
			report := diff(book, fresh)
			book = fresh
			if report.Empty() {
				continue
			}
			printReport(report)
			hub.Publish(notify.Messages(book, report)...)
		}
	}
}

// watchPaths lists the directories to watch for the configured backend.
func watchPaths(s settings) []string {
	if s.Backend == "sqlite" {
		return []string{filepath.Dir(s.Path)}
	}

	paths := []string{s.Path}
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return paths
	}
	for _, e := range entries {
		if e.IsDir() && !fs.IsTemp(e.Name()) {
			paths = append(paths, filepath.Join(s.Path, e.Name()))
		}
	}
	return paths
}

// relevant filters out events for files that do not belong to the notebook.
func relevant(s settings, event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if fs.IsTemp(name) {
		return false
	}
	if s.Backend == "sqlite" {
		// the database and its journal files
		return strings.HasPrefix(name, filepath.Base(s.Path))
	}
	return true
}

// diff compares two versions of a notebook.
// Added and Removed are nodes that exist only in fresh or old,
// Updated are nodes with changed attributes or payloads.
func diff(old, fresh *nb.Notebook) *nb.SyncReport {
	r := &nb.SyncReport{
		Added:   make([]string, 0),
		Created: make([]string, 0),
		Updated: make([]string, 0),
		Removed: make([]string, 0),
	}

	for _, n := range fresh.Nodes() {
		o := old.Node(n.ID())
		if o == nil {
			r.Added = append(r.Added, n.ID())
		} else if changed(o, n) {
			r.Updated = append(r.Updated, n.ID())
		}
	}
	for _, o := range old.Nodes() {
		if fresh.Node(o.ID()) == nil {
			r.Removed = append(r.Removed, o.ID())
		}
	}

	r.Preferences = !reflect.DeepEqual(prefsSnapshot(old.Preferences()), prefsSnapshot(fresh.Preferences()))

	return r
}

func changed(a, b *nb.Node) bool {
	if a.ContentType() != b.ContentType() {
		return true
	}
	if !reflect.DeepEqual(a.StoredAttributes(), b.StoredAttributes()) {
		return true
	}
	return !reflect.DeepEqual(a.PayloadNames(), b.PayloadNames())
}

func prefsSnapshot(p *nb.Preferences) map[string]interface{} {
	m := make(map[string]interface{})
	for _, k := range p.Keys() {
		m[k], _ = p.Get(k)
	}
	for _, name := range p.Sections() {
		m[name] = prefsSnapshot(p.Section(name))
	}
	return m
}

func doListen(s settings, url string) error {
	if url == "" {
		url = "ws://" + s.Listen + notificationsPath
	}

	l := notify.NewListener(url)
	l.OnMessage(func(m notify.Message) {
		ts := m.PublishTime.Local().Format(time.Kitchen)
		if m.NodeID == "" {
			fmt.Printf("%v %v\n", ts, m.Event)
		} else if m.Title == "" {
			fmt.Printf("%v %v %v\n", ts, m.Event, m.NodeID)
		} else {
			fmt.Printf("%v %v %v %q\n", ts, m.Event, m.NodeID, m.Title)
		}
	})

	err := l.Connect()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		l.Disconnect()
		<-l.Done()
	case <-l.Done():
		fmt.Println("Server closed the connection.")
	}
	return nil
}
