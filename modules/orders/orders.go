// Package orders persists the order ledger: a JSON document mapping user ids
// to their order history. The ledger is the system of record, so unlike the
// catalog it fails hard on corrupt content.
package orders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bakerybot/modules/catalog"
)

var (
	// ErrLedgerCorrupt indicates the ledger document exists but cannot be
	// parsed. Operator intervention is required; the content is never
	// silently discarded.
	ErrLedgerCorrupt = errors.New("orders: ledger corrupt")
	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("orders: order not found")
)

// Order is one committed purchase. OrderID is sequential per user, starting
// at 1, and is never reused.
type Order struct {
	OrderID   int          `json:"order_id"`
	Item      string       `json:"item"`
	Kind      catalog.Kind `json:"type"`
	Price     int          `json:"price"`
	Paid      bool         `json:"paid"`
	Date      string       `json:"date"`
	Timestamp int64        `json:"timestamp"`
}

// Line carries the order fields the caller supplies; id, paid flag, and
// dates are assigned by the store.
type Line struct {
	Item  string
	Kind  catalog.Kind
	Price int
}

// Ledger maps a user id to that user's order history.
type Ledger map[string][]Order

// Store reads and writes the ledger document. All mutations are a full
// read-modify-write of the document, serialized by a single process-wide
// mutex so concurrent appends never race on the next order id or clobber
// one another.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewStore creates an order store over the given ledger path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// LoadAll reads the full ledger. An absent or empty document yields an empty
// ledger; malformed content yields ErrLedgerCorrupt.
func (s *Store) LoadAll() (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// SaveAll overwrites the ledger document. The write is atomic from the
// reader's perspective: content lands in a temp file first and is renamed
// into place.
func (s *Store) SaveAll(ledger Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ledger)
}

// AddOrder appends a single order for the user, assigning the next
// sequential id, and persists the ledger.
func (s *Store) AddOrder(userID string, line Line) (Order, error) {
	added, err := s.AddOrders(userID, []Line{line})
	if err != nil {
		return Order{}, err
	}
	return added[0], nil
}

// AddOrders appends all lines for the user in a single ledger write, so a
// multi-line checkout either persists fully or not at all.
func (s *Store) AddOrders(userID string, lines []Line) ([]Order, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	history := ledger[userID]
	nextID := 0
	for _, o := range history {
		if o.OrderID > nextID {
			nextID = o.OrderID
		}
	}

	now := s.now()
	added := make([]Order, 0, len(lines))
	for _, line := range lines {
		nextID++
		order := Order{
			OrderID:   nextID,
			Item:      line.Item,
			Kind:      line.Kind,
			Price:     line.Price,
			Paid:      false,
			Date:      now.Format("2006-01-02"),
			Timestamp: now.Unix(),
		}
		history = append(history, order)
		added = append(added, order)
	}
	ledger[userID] = history

	if err := s.saveLocked(ledger); err != nil {
		return nil, err
	}
	return added, nil
}

// GetOrders returns the user's order history, oldest first.
func (s *Store) GetOrders(userID string) ([]Order, error) {
	ledger, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	return ledger[userID], nil
}

// ListUnpaid returns the user's orders that have not been paid yet.
func (s *Store) ListUnpaid(userID string) ([]Order, error) {
	history, err := s.GetOrders(userID)
	if err != nil {
		return nil, err
	}
	unpaid := make([]Order, 0, len(history))
	for _, o := range history {
		if !o.Paid {
			unpaid = append(unpaid, o)
		}
	}
	return unpaid, nil
}

// MarkPaid flags one order as paid. There is no bot-side trigger for this;
// it exists for the operator workflow that reconciles payments.
func (s *Store) MarkPaid(userID string, orderID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadLocked()
	if err != nil {
		return err
	}
	history := ledger[userID]
	for i := range history {
		if history[i].OrderID == orderID {
			if history[i].Paid {
				return nil
			}
			history[i].Paid = true
			ledger[userID] = history
			return s.saveLocked(ledger)
		}
	}
	return fmt.Errorf("%w: user %s order %d", ErrOrderNotFound, userID, orderID)
}

func (s *Store) loadLocked() (Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Ledger{}, nil
		}
		return nil, fmt.Errorf("orders: read ledger: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Ledger{}, nil
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLedgerCorrupt, s.path, err)
	}
	return ledger, nil
}

func (s *Store) saveLocked(ledger Ledger) error {
	if ledger == nil {
		ledger = Ledger{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(ledger); err != nil {
		return fmt.Errorf("orders: encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return fmt.Errorf("orders: create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("orders: write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("orders: close ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("orders: replace ledger: %w", err)
	}
	return nil
}
