package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var addr = flag.String("addr", "localhost:3000", "server address")

// send wraps a payload in the event envelope and writes it out.
func send(c *websocket.Conn, evtType string, payload any) error {
	evt := map[string]any{"type": evtType}
	if payload != nil {
		evt["payload"] = payload
	}
	return c.WriteJSON(evt)
}

func usage() {
	fmt.Println(`commands:
  name <displayName>
  list
  create [title]
  join <room>
  leave <room>
  start <room> [X|O]
  play <room> <index 0-8>
  clear <room>
  end <room>
  again <room>
  jump <room> <move>
  quit`)
}

func main() {
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			var evt struct {
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}
			if err := c.ReadJSON(&evt); err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s %s", evt.Type, string(evt.Payload))
		}
	}()

	go func() {
		<-interrupt
		log.Println("Interrupt received, closing connection.")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close error:", err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		os.Exit(0)
	}()

	usage()

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		var sendErr error

		switch cmd {
		case "name":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "identify", map[string]string{"name": strings.Join(args, " ")})
		case "list":
			sendErr = send(c, "list_rooms", nil)
		case "create":
			sendErr = send(c, "create_room", map[string]string{"title": strings.Join(args, " ")})
		case "join":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "join_room", map[string]string{"id": args[0]})
		case "leave":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "leave_room", map[string]string{"id": args[0]})
		case "start":
			if len(args) < 1 {
				usage()
				continue
			}
			first := "X"
			if len(args) > 1 {
				first = args[1]
			}
			sendErr = send(c, "start", map[string]string{"id": args[0], "firstPlayer": first})
		case "play":
			if len(args) < 2 {
				usage()
				continue
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				usage()
				continue
			}
			sendErr = send(c, "play", map[string]any{"id": args[0], "index": index})
		case "clear":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "clear", map[string]string{"id": args[0]})
		case "end":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "end_round", map[string]string{"id": args[0]})
		case "again":
			if len(args) < 1 {
				usage()
				continue
			}
			sendErr = send(c, "play_again", map[string]string{"id": args[0]})
		case "jump":
			if len(args) < 2 {
				usage()
				continue
			}
			move, err := strconv.Atoi(args[1])
			if err != nil {
				usage()
				continue
			}
			sendErr = send(c, "jump", map[string]any{"id": args[0], "move": move})
		case "quit":
			return
		default:
			usage()
		}

		if sendErr != nil {
			log.Println("Write error:", sendErr)
			return
		}
	}
}
