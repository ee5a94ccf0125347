// deauthsim generates synthetic deauthentication traffic against a running
// deauthguard REST ingest: sparse background frames with occasional attack
// bursts, for demos and end-to-end testing without a radio.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"
)

type simEvent struct {
	Timestamp   string `json:"timestamp"`
	Transmitter string `json:"transmitter"`
	Destination string `json:"destination"`
	Reason      int    `json:"reason"`
}

const broadcast = "ff:ff:ff:ff:ff:ff"

var attackTypes = []string{"broadcast", "targeted", "flood"}

func main() {
	target := flag.String("target", "http://localhost:8080/events", "deauthguard REST ingest URL")
	normalRate := flag.Float64("rate", 0.1, "background frames per second")
	attackProb := flag.Float64("attack-prob", 0.002, "per-tick probability of starting an attack burst")
	duration := flag.Duration("duration", 0, "how long to run (0 = forever)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	deadline := time.Time{}
	if *duration > 0 {
		deadline = time.Now().Add(*duration)
	}

	fmt.Fprintf(os.Stderr, "deauthsim: posting to %s\n", *target)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return
		}
		if rand.Float64() < *attackProb {
			runAttack(client, *target)
			continue
		}
		if rand.Float64() < *normalRate/10 {
			send(client, *target, normalFrame())
		}
	}
}

func runAttack(client *http.Client, target string) {
	attackType := attackTypes[rand.Intn(len(attackTypes))]
	packets := 15 + rand.Intn(36)
	burst := time.Duration(2+rand.Intn(5)) * time.Second
	gap := burst / time.Duration(packets)
	src := randomMAC()
	fmt.Fprintf(os.Stderr, "deauthsim: %s attack, %d frames over %s\n", attackType, packets, burst)
	for i := 0; i < packets; i++ {
		var ev simEvent
		switch attackType {
		case "broadcast":
			ev = frame(src, broadcast, pick(1, 4, 5, 8))
		case "targeted":
			ev = frame(src, randomMAC(), pick(1, 4, 7))
		default: // flood: fresh spoofed source per frame
			dst := broadcast
			if rand.Intn(2) == 0 {
				dst = randomMAC()
			}
			ev = frame(randomMAC(), dst, pick(1, 4))
		}
		send(client, target, ev)
		time.Sleep(gap)
	}
}

func normalFrame() simEvent {
	dst := broadcast
	if rand.Intn(2) == 0 {
		dst = randomMAC()
	}
	return frame(randomMAC(), dst, pick(1, 4, 5, 7))
}

func frame(src, dst string, reason int) simEvent {
	return simEvent{
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Transmitter: src,
		Destination: dst,
		Reason:      reason,
	}
}

func send(client *http.Client, target string, ev simEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	resp, err := client.Post(target, "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "deauthsim: post failed: %v\n", err)
		return
	}
	resp.Body.Close()
}

func pick(reasons ...int) int {
	return reasons[rand.Intn(len(reasons))]
}

func randomMAC() string {
	buf := make([]byte, 6)
	rand.Read(buf)
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", buf[0], buf[1], buf[2], buf[3], buf[4], buf[5])
}
