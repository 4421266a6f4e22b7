package feed

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a snapshot of an adapter's connection and throughput counters.
type Stats struct {
	Name           string    `json:"name"`
	Connected      bool      `json:"connected"`
	LastMessage    time.Time `json:"last_message"`
	MessagesTotal  uint64    `json:"messages_total"`
	MessagesPerSec float64   `json:"messages_per_sec"`
	Reconnects     int       `json:"reconnects"`
}

// ADSBClient reads BaseStation-format lines from a local receiver over TCP
// and forwards decoded snapshots to the engine. It reconnects with
// exponential backoff and never assumes delivery order across adapters.
type ADSBClient struct {
	host string
	port int
	sink Sink

	mu             sync.RWMutex
	connected      bool
	lastMessage    time.Time
	messagesPerSec float64
	reconnects     int

	messagesTotal uint64
	messageCount  uint64
}

func NewADSBClient(host string, port int, sink Sink) *ADSBClient {
	return &ADSBClient{host: host, port: port, sink: sink}
}

func (c *ADSBClient) Run(ctx context.Context) {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	backoff := time.Second

	go c.calculateMessageRate(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.connect(ctx, addr); err != nil {
			c.setConnected(false)
			log.Printf("[FEED] ADS-B connection error: %v, reconnecting in %v", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, 30*time.Second)
			c.mu.Lock()
			c.reconnects++
			c.mu.Unlock()
		} else {
			backoff = time.Second
		}
	}
}

func (c *ADSBClient) connect(ctx context.Context, addr string) error {
	log.Printf("[FEED] Connecting to ADS-B receiver at %s", addr)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	log.Printf("[FEED] Connected to %s", addr)
	c.setConnected(true)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		s := ParseSBS(scanner.Text())
		if s == nil {
			continue
		}
		c.recordMessage()
		if err := c.sink.SubmitState(ctx, *s); err != nil {
			c.setConnected(false)
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		c.setConnected(false)
		return fmt.Errorf("read error: %w", err)
	}

	log.Printf("[FEED] Connection closed")
	c.setConnected(false)
	return nil
}

func (c *ADSBClient) calculateMessageRate(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count := atomic.SwapUint64(&c.messageCount, 0)
			c.mu.Lock()
			c.messagesPerSec = float64(count)
			c.mu.Unlock()
		}
	}
}

func (c *ADSBClient) recordMessage() {
	atomic.AddUint64(&c.messageCount, 1)
	atomic.AddUint64(&c.messagesTotal, 1)
	c.mu.Lock()
	c.lastMessage = time.Now()
	c.mu.Unlock()
}

func (c *ADSBClient) setConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
}

func (c *ADSBClient) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Name:           "adsb",
		Connected:      c.connected,
		LastMessage:    c.lastMessage,
		MessagesTotal:  atomic.LoadUint64(&c.messagesTotal),
		MessagesPerSec: c.messagesPerSec,
		Reconnects:     c.reconnects,
	}
}
