package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/converter"
	"imgcatalog/src/log"
	"imgcatalog/src/normalizer"
)

// Watcher monitors the converter base folder and re-converts sections whose raw images change
type Watcher struct {
	cfg        *config.Config
	base       string
	exts       map[string]bool
	converter  *converter.Converter
	normalizer *normalizer.Normalizer
	watcher    *fsnotify.Watcher
	events     chan Event

	mu      sync.Mutex
	timers  map[string]*time.Timer
	started bool
	stopped bool

	// runMu serializes section runs so two never touch the same tree at once
	runMu sync.Mutex

	wg       sync.WaitGroup
	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

// Event represents something the watcher saw or did
type Event struct {
	Type     EventType
	Section  string
	FilePath string
}

// EventType represents the type of watcher event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventSectionAdded
	EventConverted
	EventNormalized
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventSectionAdded:
		return "section added"
	case EventConverted:
		return "converted"
	case EventNormalized:
		return "normalized"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// NewWatcher creates a new section watcher
func NewWatcher(cfg *config.Config) (*Watcher, error) {
	conv, err := converter.NewConverter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:        cfg,
		base:       filepath.Clean(cfg.Converter.BaseDir),
		exts:       common.ExtensionSet(cfg.Catalog.Extensions),
		converter:  conv,
		normalizer: normalizer.NewNormalizer(cfg),
		watcher:    fsWatcher,
		events:     make(chan Event, 100),
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}, nil
}

// Start begins monitoring the base folder and every section in it
func (w *Watcher) Start() error {
	sections, err := common.ListSections(w.base)
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	if err := w.watcher.Add(w.base); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.base, err)
	}
	for _, sec := range sections {
		if err := w.watcher.Add(sec.Path); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", sec.Path, err)
		}
		log.Debugf("Watching folder: %s", sec.Path)
	}
	log.Progressf("👀 Watching %d sections under %s", len(sections), w.base)

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()

	// Start event processing goroutine
	go w.processEvents()

	return nil
}

// processEvents handles fsnotify events until the watcher is closed
func (w *Watcher) processEvents() {
	defer close(w.loopDone)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("Watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

// handleEvent filters one fsnotify event and schedules the affected section
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	dir := filepath.Dir(name)

	// Skip temp files
	if strings.HasPrefix(filepath.Base(name), ".") {
		return
	}

	if dir == w.base {
		if event.Has(fsnotify.Create) {
			w.addSection(name)
		}
		return
	}

	if filepath.Dir(dir) != w.base || !common.HasExtension(name, w.exts) {
		return
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreated
	case event.Has(fsnotify.Write):
		eventType = EventModified
	default:
		return // Ignore other events
	}

	section := filepath.Base(dir)
	log.Debugf("File %v: %s", eventType, name)
	w.emit(Event{Type: eventType, Section: section, FilePath: name})
	w.schedule(section)
}

// addSection starts watching a folder created under the base
func (w *Watcher) addSection(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	if err := w.watcher.Add(path); err != nil {
		log.Errorf("Failed to watch folder %s: %v", path, err)
		return
	}

	section := filepath.Base(path)
	log.Progressf("📁 New section: %s", section)
	w.emit(Event{Type: EventSectionAdded, Section: section, FilePath: path})

	// images may have landed before the watch was in place
	if images, err := common.ListImages(path, w.exts); err == nil && len(images) > 0 {
		w.schedule(section)
	}
}

// schedule (re)starts the debounce timer of a section
func (w *Watcher) schedule(section string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	if timer, exists := w.timers[section]; exists && timer.Stop() {
		w.wg.Done()
	}

	var timer *time.Timer
	w.wg.Add(1)
	timer = time.AfterFunc(w.cfg.Watch.Debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.timers[section] == timer {
			delete(w.timers, section)
		}
		w.mu.Unlock()

		w.runSection(section)
	})
	w.timers[section] = timer
}

// runSection converts a section and optionally normalizes its manifest
func (w *Watcher) runSection(name string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	sec := common.Section{Name: name, Path: filepath.Join(w.base, name)}
	if _, err := os.Stat(sec.Path); err != nil {
		log.Warnf("⚠️ Section %s disappeared: %v", name, err)
		return
	}

	report := w.converter.ConvertSection(sec)
	if err := report.Err(); err != nil {
		log.Errorf("❌ %s: %v", name, err)
	}
	w.emit(Event{Type: EventConverted, Section: name, FilePath: common.ManifestPath(sec)})

	if w.cfg.Watch.Normalize {
		w.normalizer.NormalizeSection(sec)
		w.emit(Event{Type: EventNormalized, Section: name, FilePath: common.ManifestPath(sec)})
	}
}

// emit sends an event unless the watcher is stopping
func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Events returns the event channel. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher, cancels pending runs and waits for a running one to finish
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.loopDone
		}

		w.mu.Lock()
		w.stopped = true
		for section, timer := range w.timers {
			if timer.Stop() {
				w.wg.Done()
			}
			delete(w.timers, section)
		}
		w.mu.Unlock()

		w.wg.Wait()
		close(w.events)
	})
	return err
}
