// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package workspace is the studio's data layer: a per-client namespaced
// in-memory cache backed by the durable store.
//
// # Description
//
// One client's data set is held in memory at a time. Getters are
// synchronous and never fail; saves replace the in-memory value
// immediately, then write through to the durable store on a serialized
// background queue, then broadcast a change signal on the event bus.
// Switching clients flushes pending writes, reloads the cache for the
// target client, and broadcasts a client-changed signal.
//
// The persona record is self-healing: the admin workspace reseeds from
// the gold template when the record is missing or structurally broken,
// and an ordered migration list patches records written by older schema
// versions on every load (see migrations.go).
//
// # Ownership
//
// Workspace is an explicit context object: main constructs one and
// hands it to whatever needs data access. There is no package-level
// singleton.
//
// # Thread Safety
//
// Safe for concurrent use. The cache is guarded by an RWMutex; a save's
// in-memory update is visible to every getter that starts after the
// save call returns, regardless of when the durable write lands.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
	"github.com/StudioLoomAI/StudioLoom/services/studio/events"
	"github.com/StudioLoomAI/StudioLoom/services/studio/storage"
)

// -----------------------------------------------------------------------------
// Keys
// -----------------------------------------------------------------------------

// Fixed global keys. Everything else is namespaced per client.
const (
	keyClients      = "loom_clients"
	keyActiveClient = "loom_active_client"
	keySettings     = "loom_settings"
)

// Data kinds, used both as cache slots and in durable keys.
const (
	kindBrain      = "brain"
	kindFeed       = "feed"
	kindBank       = "bank"
	kindHighlights = "highlights"
	kindStories    = "stories"
	kindPlaybook   = "playbook"
	kindTemplates  = "templates"
	kindDraft      = "draft"
	kindSprint     = "sprint"
)

// clientKey builds the durable key for one client's data kind.
func clientKey(clientID, kind string) string {
	return fmt.Sprintf("loom_%s_%s", clientID, kind)
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrEmptyClientName indicates CreateClient was called with a
	// blank (after trimming) display name.
	ErrEmptyClientName = errors.New("client name must not be empty")

	// ErrClientNotFound indicates the requested client id is not in
	// the registry.
	ErrClientNotFound = errors.New("client not found")
)

// -----------------------------------------------------------------------------
// Workspace
// -----------------------------------------------------------------------------

// Config configures a Workspace.
type Config struct {
	// Store is the durable key-value boundary. Required.
	Store storage.Store

	// Bus receives change signals. Required.
	Bus *events.Bus

	// Logger for data-layer operations. Defaults to slog.Default().
	Logger *slog.Logger
}

// cacheState is the in-memory data set for the active client.
type cacheState struct {
	brain      *datatypes.Brain
	feed       []datatypes.FeedPost
	bank       []datatypes.BankItem
	highlights []datatypes.Highlight
	stories    []datatypes.StoryItem
	playbook   []datatypes.TrendCard
	templates  []datatypes.PostTemplate
	draft      datatypes.Draft
	sprint     datatypes.Sprint
}

// Workspace multiplexes the durable store across client namespaces with
// a synchronous read cache. See the package documentation for the
// contract.
type Workspace struct {
	store  storage.Store
	bus    *events.Bus
	logger *slog.Logger
	queue  *writeQueue

	mu       sync.RWMutex
	clients  []datatypes.ClientMeta
	active   string
	settings datatypes.AppSettings
	cache    cacheState
}

// New creates a Workspace. Call Initialize before using any getter.
func New(cfg Config) (*Workspace, error) {
	if cfg.Store == nil {
		return nil, errors.New("store must not be nil")
	}
	if cfg.Bus == nil {
		return nil, errors.New("bus must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "workspace"))

	return &Workspace{
		store:  cfg.Store,
		bus:    cfg.Bus,
		logger: logger,
		queue:  newWriteQueue(cfg.Store, logger),
	}, nil
}

// Initialize loads the client registry (seeding the single admin entry
// when empty), the active-client pointer (defaulting to admin), the
// global settings (defaulting to the fixed preset), and the active
// client's full data set.
//
// Must complete before any getter is considered valid; callers await it
// once at startup.
func (w *Workspace) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Registry
	var clients []datatypes.ClientMeta
	found, err := w.loadJSON(ctx, keyClients, &clients)
	if err != nil {
		return fmt.Errorf("load client registry: %w", err)
	}
	if !found || len(clients) == 0 {
		clients = []datatypes.ClientMeta{{
			ID:         datatypes.AdminClientID,
			Name:       "Studio",
			Configured: true,
		}}
		if err := w.persistJSON(ctx, keyClients, clients); err != nil {
			return fmt.Errorf("seed client registry: %w", err)
		}
		w.logger.Info("seeded client registry with admin workspace")
	}
	w.clients = clients

	// Active pointer
	var active string
	found, err = w.loadJSON(ctx, keyActiveClient, &active)
	if err != nil {
		return fmt.Errorf("load active client pointer: %w", err)
	}
	if !found || !hasClient(clients, active) {
		active = datatypes.AdminClientID
	}

	// Settings
	var settings datatypes.AppSettings
	found, err = w.loadJSON(ctx, keySettings, &settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !found {
		settings = datatypes.DefaultSettings()
	}
	w.settings = settings

	w.loadClientLocked(ctx, active)
	w.logger.Info("workspace initialized",
		"active_client", active, "clients", len(clients))
	return nil
}

// loadClientLocked replaces the entire in-memory cache with the given
// client's data set. Caller holds w.mu.
//
// The persona record is self-healed here; all other kinds load from the
// durable store or default to an empty collection. Load errors on
// individual kinds are logged and treated as absence, never surfaced.
func (w *Workspace) loadClientLocked(ctx context.Context, clientID string) {
	start := time.Now()
	cs := cacheState{
		feed:       []datatypes.FeedPost{},
		bank:       []datatypes.BankItem{},
		highlights: []datatypes.Highlight{},
		stories:    []datatypes.StoryItem{},
		playbook:   []datatypes.TrendCard{},
		templates:  []datatypes.PostTemplate{},
	}

	cs.brain = w.loadBrain(ctx, clientID)

	w.loadCollection(ctx, clientID, kindFeed, &cs.feed)
	w.loadCollection(ctx, clientID, kindBank, &cs.bank)
	w.loadCollection(ctx, clientID, kindHighlights, &cs.highlights)
	w.loadCollection(ctx, clientID, kindStories, &cs.stories)
	w.loadCollection(ctx, clientID, kindPlaybook, &cs.playbook)
	w.loadCollection(ctx, clientID, kindTemplates, &cs.templates)
	w.loadCollection(ctx, clientID, kindDraft, &cs.draft)
	w.loadCollection(ctx, clientID, kindSprint, &cs.sprint)

	w.cache = cs
	w.active = clientID
	clientLoadSeconds.Observe(time.Since(start).Seconds())
}

// loadBrain loads and self-heals one client's persona record.
//
// Admin: a missing or structurally broken record is replaced wholesale
// with the gold template and persisted immediately; otherwise the
// migration list patches missing sub-structures and persists the
// patched record. Non-admin: a missing record falls back to the blank
// template without persisting (the first explicit save persists it);
// an existing record is normalized in memory only.
func (w *Workspace) loadBrain(ctx context.Context, clientID string) *datatypes.Brain {
	var loaded datatypes.Brain
	brain := &loaded
	found, err := w.loadJSON(ctx, clientKey(clientID, kindBrain), &loaded)
	if err != nil {
		w.logger.Warn("persona record unreadable, treating as absent",
			"client_id", clientID, "error", err)
		found = false
	}
	if !found {
		brain = nil
	}

	if clientID != datatypes.AdminClientID {
		if brain == nil {
			return datatypes.BlankBrain()
		}
		repairBrain(brain, datatypes.BlankBrain())
		return brain
	}

	if needsReseed(brain) {
		brain = datatypes.GoldBrain()
		brainRepairsTotal.WithLabelValues("reseed").Inc()
		w.logger.Warn("admin persona record missing or broken, reseeding from gold template")
		if err := w.persistJSON(ctx, clientKey(clientID, kindBrain), brain); err != nil {
			w.logger.Error("failed to persist reseeded persona record", "error", err)
		}
		return brain
	}

	if applied := repairBrain(brain, datatypes.GoldBrain()); len(applied) > 0 {
		for _, step := range applied {
			brainRepairsTotal.WithLabelValues(step).Inc()
		}
		w.logger.Info("patched admin persona record on load", "migrations", applied)
		if err := w.persistJSON(ctx, clientKey(clientID, kindBrain), brain); err != nil {
			w.logger.Error("failed to persist patched persona record", "error", err)
		}
	}
	return brain
}

// loadCollection loads one data kind into out, leaving the default in
// place when the key is absent or unreadable.
func (w *Workspace) loadCollection(ctx context.Context, clientID, kind string, out any) {
	if _, err := w.loadJSON(ctx, clientKey(clientID, kind), out); err != nil {
		w.logger.Warn("data kind unreadable, using default",
			"client_id", clientID, "kind", kind, "error", err)
	}
}

// -----------------------------------------------------------------------------
// Getters (synchronous, never fail)
// -----------------------------------------------------------------------------

// Brain returns the active client's persona record. Never returns nil:
// an empty cache yields a deep copy of the blank template, so callers
// never handle an absent persona.
func (w *Workspace) Brain() *datatypes.Brain {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.cache.brain == nil {
		return datatypes.BlankBrain()
	}
	return w.cache.brain.Clone()
}

// Feed returns the active client's feed slots in grid order.
func (w *Workspace) Feed() []datatypes.FeedPost {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.FeedPost{}, w.cache.feed...)
}

// Bank returns the active client's unplaced images.
func (w *Workspace) Bank() []datatypes.BankItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.BankItem{}, w.cache.bank...)
}

// Highlights returns the active client's highlight slots.
func (w *Workspace) Highlights() []datatypes.Highlight {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.Highlight{}, w.cache.highlights...)
}

// Stories returns the active client's story frames.
func (w *Workspace) Stories() []datatypes.StoryItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.StoryItem{}, w.cache.stories...)
}

// Playbook returns the active client's trend cards.
func (w *Workspace) Playbook() []datatypes.TrendCard {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.TrendCard{}, w.cache.playbook...)
}

// Templates returns the active client's post templates.
func (w *Workspace) Templates() []datatypes.PostTemplate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.PostTemplate{}, w.cache.templates...)
}

// Draft returns the active client's scratch draft.
func (w *Workspace) Draft() datatypes.Draft {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cache.draft
}

// Sprint returns the active client's planning sprint.
func (w *Workspace) Sprint() datatypes.Sprint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cache.sprint
}

// Settings returns the global application settings.
func (w *Workspace) Settings() datatypes.AppSettings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// Clients returns the client registry.
func (w *Workspace) Clients() []datatypes.ClientMeta {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]datatypes.ClientMeta{}, w.clients...)
}

// ActiveClientID returns the currently active client id.
func (w *Workspace) ActiveClientID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.active
}

// -----------------------------------------------------------------------------
// Saves (synchronous cache update, fire-and-forget persistence)
// -----------------------------------------------------------------------------

// SaveBrain replaces the active client's persona record.
func (w *Workspace) SaveBrain(brain *datatypes.Brain) {
	if brain == nil {
		return
	}
	w.mu.Lock()
	w.cache.brain = brain.Clone()
	key := clientKey(w.active, kindBrain)
	data := w.marshal(kindBrain, w.cache.brain)
	w.mu.Unlock()

	w.commit(kindBrain, key, data, events.EventBrainChanged)
}

// SaveFeed replaces the active client's feed slots.
func (w *Workspace) SaveFeed(feed []datatypes.FeedPost) {
	w.mu.Lock()
	w.cache.feed = append([]datatypes.FeedPost{}, feed...)
	key := clientKey(w.active, kindFeed)
	data := w.marshal(kindFeed, w.cache.feed)
	w.mu.Unlock()

	w.commit(kindFeed, key, data, events.EventDataChanged)
}

// SaveBank replaces the active client's image bank.
func (w *Workspace) SaveBank(bank []datatypes.BankItem) {
	w.mu.Lock()
	w.cache.bank = append([]datatypes.BankItem{}, bank...)
	key := clientKey(w.active, kindBank)
	data := w.marshal(kindBank, w.cache.bank)
	w.mu.Unlock()

	w.commit(kindBank, key, data, events.EventDataChanged)
}

// SaveHighlights replaces the active client's highlight slots.
func (w *Workspace) SaveHighlights(highlights []datatypes.Highlight) {
	w.mu.Lock()
	w.cache.highlights = append([]datatypes.Highlight{}, highlights...)
	key := clientKey(w.active, kindHighlights)
	data := w.marshal(kindHighlights, w.cache.highlights)
	w.mu.Unlock()

	w.commit(kindHighlights, key, data, events.EventDataChanged)
}

// SaveStories replaces the active client's story frames.
func (w *Workspace) SaveStories(stories []datatypes.StoryItem) {
	w.mu.Lock()
	w.cache.stories = append([]datatypes.StoryItem{}, stories...)
	key := clientKey(w.active, kindStories)
	data := w.marshal(kindStories, w.cache.stories)
	w.mu.Unlock()

	w.commit(kindStories, key, data, events.EventDataChanged)
}

// SavePlaybook replaces the active client's trend cards.
func (w *Workspace) SavePlaybook(playbook []datatypes.TrendCard) {
	w.mu.Lock()
	w.cache.playbook = append([]datatypes.TrendCard{}, playbook...)
	key := clientKey(w.active, kindPlaybook)
	data := w.marshal(kindPlaybook, w.cache.playbook)
	w.mu.Unlock()

	w.commit(kindPlaybook, key, data, events.EventDataChanged)
}

// SaveTemplates replaces the active client's post templates.
func (w *Workspace) SaveTemplates(templates []datatypes.PostTemplate) {
	w.mu.Lock()
	w.cache.templates = append([]datatypes.PostTemplate{}, templates...)
	key := clientKey(w.active, kindTemplates)
	data := w.marshal(kindTemplates, w.cache.templates)
	w.mu.Unlock()

	w.commit(kindTemplates, key, data, events.EventDataChanged)
}

// SaveDraft replaces the active client's scratch draft.
func (w *Workspace) SaveDraft(draft datatypes.Draft) {
	w.mu.Lock()
	w.cache.draft = draft
	key := clientKey(w.active, kindDraft)
	data := w.marshal(kindDraft, draft)
	w.mu.Unlock()

	w.commit(kindDraft, key, data, events.EventDataChanged)
}

// SaveSprint replaces the active client's planning sprint.
func (w *Workspace) SaveSprint(sprint datatypes.Sprint) {
	w.mu.Lock()
	w.cache.sprint = sprint
	key := clientKey(w.active, kindSprint)
	data := w.marshal(kindSprint, sprint)
	w.mu.Unlock()

	w.commit(kindSprint, key, data, events.EventDataChanged)
}

// SaveSettings replaces the global application settings.
func (w *Workspace) SaveSettings(settings datatypes.AppSettings) {
	w.mu.Lock()
	w.settings = settings
	data := w.marshal("settings", settings)
	w.mu.Unlock()

	w.commit("settings", keySettings, data, events.EventDataChanged)
}

// commit enqueues the durable write and broadcasts the change signal.
// The in-memory update already happened under the lock, so synchronous
// readers see the new value before the write is even issued.
func (w *Workspace) commit(kind, key string, data []byte, event events.Event) {
	if data == nil {
		return
	}
	savesTotal.WithLabelValues(kind).Inc()
	w.queue.enqueue(key, data)
	w.bus.Publish(event)
}

// -----------------------------------------------------------------------------
// Client lifecycle
// -----------------------------------------------------------------------------

// SetActiveClient switches the workspace to the given client.
//
// No-op when id is already active. Otherwise pending writes are flushed
// (so a late write can never land under the new client's session), the
// pointer is persisted, the cache is replaced with the target client's
// data set, and EventClientChanged is broadcast so the UI fully
// re-renders.
func (w *Workspace) SetActiveClient(ctx context.Context, id string) error {
	w.mu.Lock()
	if id == w.active {
		w.mu.Unlock()
		return nil
	}
	if !hasClient(w.clients, id) {
		w.mu.Unlock()
		return ErrClientNotFound
	}

	if err := w.queue.Flush(ctx); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("flush before client switch: %w", err)
	}
	if err := w.persistJSON(ctx, keyActiveClient, id); err != nil {
		// Best-effort: the switch still happens for this session.
		w.logger.Error("failed to persist active client pointer", "error", err)
	}
	w.loadClientLocked(ctx, id)
	w.mu.Unlock()

	w.logger.Info("active client switched", "client_id", id)
	w.bus.Publish(events.EventClientChanged)
	return nil
}

// CreateClient registers a new client namespace and durably seeds its
// blank persona record. Does not switch the active client; the caller
// decides.
//
// Outputs:
//
//	string - The new client id.
//	error - ErrEmptyClientName when name trims to nothing.
func (w *Workspace) CreateClient(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyClientName
	}

	id := "client_" + uuid.New().String()

	// Registry writes happen under the lock so concurrent lifecycle
	// calls cannot persist stale snapshots over each other.
	w.mu.Lock()
	w.clients = append(w.clients, datatypes.ClientMeta{
		ID:         id,
		Name:       name,
		Configured: false,
	})
	if err := w.persistJSON(ctx, keyClients, w.clients); err != nil {
		w.logger.Error("failed to persist client registry", "error", err)
	}
	w.mu.Unlock()

	if err := w.persistJSON(ctx, clientKey(id, kindBrain), datatypes.BlankBrain()); err != nil {
		w.logger.Error("failed to seed persona record for new client",
			"client_id", id, "error", err)
	}

	w.logger.Info("client created", "client_id", id, "name", name)
	w.bus.Publish(events.EventDataChanged)
	return id, nil
}

// DeleteClient removes a client from the registry. The admin workspace
// is permanent, so deleting it is a no-op; deleting the active client
// falls back to the admin workspace.
func (w *Workspace) DeleteClient(ctx context.Context, id string) error {
	if id == datatypes.AdminClientID {
		return nil
	}

	w.mu.Lock()
	idx := -1
	for i, c := range w.clients {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return nil
	}
	w.clients = append(w.clients[:idx], w.clients[idx+1:]...)
	wasActive := w.active == id
	if err := w.persistJSON(ctx, keyClients, w.clients); err != nil {
		w.logger.Error("failed to persist client registry", "error", err)
	}
	w.mu.Unlock()

	w.logger.Info("client deleted", "client_id", id)
	if wasActive {
		return w.SetActiveClient(ctx, datatypes.AdminClientID)
	}
	w.bus.Publish(events.EventDataChanged)
	return nil
}

// MarkConfigured flips the registry entry's configured flag once the
// operator finishes persona setup.
func (w *Workspace) MarkConfigured(ctx context.Context, id string) error {
	w.mu.Lock()
	found := false
	for i := range w.clients {
		if w.clients[i].ID == id {
			w.clients[i].Configured = true
			found = true
			break
		}
	}
	if found {
		if err := w.persistJSON(ctx, keyClients, w.clients); err != nil {
			w.logger.Error("failed to persist client registry", "error", err)
		}
	}
	w.mu.Unlock()

	if !found {
		return ErrClientNotFound
	}
	w.bus.Publish(events.EventDataChanged)
	return nil
}

// -----------------------------------------------------------------------------
// Durability
// -----------------------------------------------------------------------------

// Flush awaits every durable write enqueued before the call. UI-facing
// saves never need it; callers that want a durability point (client
// switch does this internally, shutdown, explicit user action) do.
func (w *Workspace) Flush(ctx context.Context) error {
	return w.queue.Flush(ctx)
}

// Close flushes pending writes and stops the write queue. The durable
// store itself belongs to the caller and is not closed here.
func (w *Workspace) Close(ctx context.Context) error {
	return w.queue.Stop(ctx)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// loadJSON reads and decodes one key. Absence is (false, nil); decode
// failures are errors for the caller to downgrade as it sees fit.
func (w *Workspace) loadJSON(ctx context.Context, key string, out any) (bool, error) {
	data, found, err := w.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// persistJSON synchronously writes one key, bypassing the queue. Used
// for registry, pointer, and repair writes that must be durable before
// the operation completes.
func (w *Workspace) persistJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return w.store.Set(ctx, key, data)
}

// marshal encodes a cache value for the write queue. The data model is
// plain JSON-safe structs, so failure indicates a programming error;
// it is logged and the write skipped rather than crashing the session.
func (w *Workspace) marshal(kind string, value any) []byte {
	data, err := json.Marshal(value)
	if err != nil {
		w.logger.Error("failed to encode value for durable write",
			"kind", kind, "error", err)
		return nil
	}
	return data
}

func hasClient(clients []datatypes.ClientMeta, id string) bool {
	for _, c := range clients {
		if c.ID == id {
			return true
		}
	}
	return false
}
