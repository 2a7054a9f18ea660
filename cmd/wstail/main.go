// Package main connects a number of clients to the activity stream and
// reports how many events each one receives.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the tail results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8000", "API server host")
	email := flag.String("email", "demo@example.com", "User email")
	password := flag.String("password", "password123", "User password")
	clients := flag.Int("clients", 5, "Number of concurrent clients")
	duration := flag.Duration("duration", 30*time.Second, "Tail duration")
	flag.Parse()

	token, err := login(*host, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s, opening %d connections for %v", *email, *clients, *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go runClient(*host, token, i, stop, &wg)
	}

	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("Interrupted")
	}

	close(stop)
	wg.Wait()

	log.Printf("connections: attempted=%d ok=%d failed=%d events=%d",
		metrics.ConnectionsAttempted, metrics.ConnectionsSuccess, metrics.ConnectionsFailed, metrics.EventsReceived)
}

func login(host, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(fmt.Sprintf("http://%s/api/auth/login", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func runClient(host, token string, id int, stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws"}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		log.Printf("client %d: dial failed: %v", id, err)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			log.Printf("client %d: %s", id, msg)
		}
	}()

	select {
	case <-stop:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
}
