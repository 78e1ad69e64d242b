package messaging

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// topBrandCount caps how many brands the aggregate snapshot carries.
const topBrandCount = 3

// ActivityEvent is one user action pushed to connected dashboard clients.
type ActivityEvent struct {
	Type      string    `json:"type"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	BrandID   string    `json:"brandId,omitempty"`
	BrandName string    `json:"brandName,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BrandTally is one entry of the snapshot's top-brand list.
type BrandTally struct {
	BrandID string `json:"brandId"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
}

// ActivitySnapshot is the aggregate payload broadcast on each tick.
type ActivitySnapshot struct {
	Type           string       `json:"type"`
	ScansToday     int          `json:"scansToday"`
	FavoritesTotal int          `json:"favoritesTotal"`
	TopBrands      []BrandTally `json:"topBrands"`
	ActiveClients  int          `json:"activeClients"`
	Timestamp      time.Time    `json:"timestamp"`
}

// ActivityBroadcaster fans user activity out to connected dashboard clients
// and broadcasts aggregate counters on a fixed interval. All client map
// mutation happens on the Run goroutine; sends never block it.
type ActivityBroadcaster struct {
	clients    map[*ActivityClient]bool
	register   chan *ActivityClient
	unregister chan *ActivityClient
	events     chan ActivityEvent
	history    user.HistoryRepository
	favorites  user.FavoritesRepository
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewActivityBroadcaster creates a broadcaster instance.
func NewActivityBroadcaster(history user.HistoryRepository, favorites user.FavoritesRepository, logger *logging.ChanneledLogger) *ActivityBroadcaster {
	return &ActivityBroadcaster{
		clients:    make(map[*ActivityClient]bool),
		register:   make(chan *ActivityClient),
		unregister: make(chan *ActivityClient),
		events:     make(chan ActivityEvent, 64),
		history:    history,
		favorites:  favorites,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *ActivityBroadcaster) Run() {
	ticker := time.NewTicker(config.ActivityBroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Activity().Debug("Activity client registered", "username", client.Username, "clients", count)

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Activity().Debug("Activity client unregistered", "username", client.Username, "clients", count)

		case event := <-b.events:
			b.broadcastEvent(event)

		case <-ticker.C:
			b.broadcastSnapshot()
		}
	}
}

// Register queues a client for registration.
func (b *ActivityBroadcaster) Register(client *ActivityClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *ActivityBroadcaster) Unregister(client *ActivityClient) {
	b.unregister <- client
}

// Publish queues one activity event for fan-out. The event is dropped when
// the hub is saturated rather than blocking the caller.
func (b *ActivityBroadcaster) Publish(event ActivityEvent) {
	if event.Type == "" {
		event.Type = "activity"
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case b.events <- event:
	default:
		b.logger.Activity().Warn("Activity event dropped, hub saturated", "action", event.Action)
	}
}

// ClientCount returns the number of connected clients.
func (b *ActivityBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *ActivityBroadcaster) broadcastEvent(event ActivityEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.Activity().Error("Failed to marshal activity event", "error", err.Error(), "action", event.Action)
		return
	}
	b.send(message)
}

// broadcastSnapshot gathers and sends the aggregate counters. Skipped when
// nobody is listening so idle deployments stay off the database.
func (b *ActivityBroadcaster) broadcastSnapshot() {
	if b.ClientCount() == 0 {
		return
	}

	snapshot, err := b.buildSnapshot()
	if err != nil {
		b.logger.Activity().Error("Failed to build activity snapshot", "error", err.Error())
		return
	}

	message, err := json.Marshal(snapshot)
	if err != nil {
		b.logger.Activity().Error("Failed to marshal activity snapshot", "error", err.Error())
		return
	}
	b.send(message)
}

func (b *ActivityBroadcaster) send(message []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
			b.logger.Activity().Warn("Activity client buffer full, frame dropped", "username", client.Username)
		}
	}
}

func (b *ActivityBroadcaster) buildSnapshot() (*ActivitySnapshot, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)

	scansToday, err := b.history.CountSince(midnight)
	if err != nil {
		return nil, err
	}
	favoritesTotal, err := b.favorites.CountAll()
	if err != nil {
		return nil, err
	}
	brandIDs, err := b.history.ListBrandIDsSince(midnight)
	if err != nil {
		return nil, err
	}

	return &ActivitySnapshot{
		Type:           "snapshot",
		ScansToday:     scansToday,
		FavoritesTotal: favoritesTotal,
		TopBrands:      tallyBrands(brandIDs, topBrandCount),
		ActiveClients:  b.ClientCount(),
		Timestamp:      time.Now().UTC(),
	}, nil
}

// tallyBrands counts scan occurrences per brand id and keeps the top n.
// Ties break on id so consecutive snapshots stay stable.
func tallyBrands(brandIDs []string, n int) []BrandTally {
	counts := make(map[string]int, len(brandIDs))
	for _, id := range brandIDs {
		counts[id]++
	}

	tallies := make([]BrandTally, 0, len(counts))
	for id, count := range counts {
		name := id
		if record, ok := brand.Lookup(id); ok {
			name = record.Name
		}
		tallies = append(tallies, BrandTally{BrandID: id, Name: name, Count: count})
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return tallies[i].BrandID < tallies[j].BrandID
	})

	if len(tallies) > n {
		tallies = tallies[:n]
	}
	return tallies
}

var _ Publisher = (*ActivityBroadcaster)(nil)
