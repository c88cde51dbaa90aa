// Command gameclient drives one player connection: the lobby RPC
// handshake (room discovery or creation) followed by the game-instance
// session the rest of internal/client implements (spec.md §4.K/§4.L).
// Rendering is out of this binary's scope — it exercises the protocol
// and reports state transitions on stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/voidrunner/arcade/internal/client"
	"github.com/voidrunner/arcade/internal/wire"
)

const defaultLobbyAddr = "127.0.0.1:50010"

func main() {
	verbose := flag.Bool("v", false, "verbose logging (debug level)")
	useDefault := flag.Bool("d", false, "connect to the default lobby address "+defaultLobbyAddr+" without prompting")
	flag.BoolVar(verbose, "verbose", false, "verbose logging (debug level)")
	flag.BoolVar(useDefault, "default", false, "connect to the default lobby address without prompting")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, log, *useDefault); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, useDefault bool) error {
	lobbyAddr := defaultLobbyAddr
	if !useDefault {
		addr, err := promptHostPort()
		if err != nil {
			return fmt.Errorf("reading server address: %w", err)
		}
		lobbyAddr = addr
	}

	lobbyClient, err := client.DialLobby(lobbyAddr)
	if err != nil {
		return fmt.Errorf("dialing lobby at %s: %w", lobbyAddr, err)
	}
	defer lobbyClient.Close()
	log.Info("connected to lobby", "addr", lobbyAddr)

	rooms, err := lobbyClient.ListRooms()
	if err != nil {
		return fmt.Errorf("listing rooms: %w", err)
	}

	var roomID uint32
	var port uint16
	if len(rooms.Rooms) > 0 {
		roomID = rooms.Rooms[0].RoomID
		log.Info("joining first available room", "roomID", roomID, "name", rooms.Rooms[0].Name)
		join, err := lobbyClient.JoinRoom(roomID, "")
		if err != nil {
			return fmt.Errorf("joining room %d: %w", roomID, err)
		}
		port = join.Port
	} else {
		log.Info("no rooms available, creating one")
		created, err := lobbyClient.CreateRoom(wire.CreateRoom{Name: "quickplay", Capacity: 4})
		if err != nil {
			return fmt.Errorf("creating room: %w", err)
		}
		roomID, port = created.RoomID, created.Port
	}

	host := hostOf(lobbyAddr)
	serverAddr := fmt.Sprintf("%s:%d", host, port)
	log.Info("connecting to game instance", "addr", serverAddr, "roomID", roomID)

	gameClient, err := client.Dial(client.Config{ServerAddr: serverAddr, DisplayName: "player"}, log.With("component", "client"))
	if err != nil {
		return fmt.Errorf("dialing game instance: %w", err)
	}
	defer gameClient.Close()

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	done := make(chan struct{})
	go func() {
		gameClient.Run(runCtx)
		close(done)
	}()

	go reportHandshake(runCtx, gameClient, log)

	select {
	case <-ctx.Done():
	case <-done:
	}
	return nil
}

func reportHandshake(ctx context.Context, c *client.Client, log *slog.Logger) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if denied, reason := c.Pipeline.JoinDenied(); denied {
				log.Error("join denied", "reason", reason)
				return
			}
			if c.Pipeline.GameStarted() {
				log.Info("game started", "assignedPlayerID", c.Pipeline.AssignedPlayerID())
				return
			}
		}
	}
}

func promptHostPort() (string, error) {
	fmt.Printf("Lobby address [%s]: ", defaultLobbyAddr)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultLobbyAddr, nil
	}
	return line, nil
}

func hostOf(hostport string) string {
	i := strings.LastIndex(hostport, ":")
	if i < 0 {
		return hostport
	}
	return hostport[:i]
}
