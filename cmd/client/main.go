// Command client is a line-oriented terminal front end for the game client.
// It stands in for the graphical UI: it feeds requests into the phase driver
// and renders the driver's events, including a plain-text board.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/connect4/internal/client"
	"github.com/udisondev/connect4/internal/config"
	"github.com/udisondev/connect4/internal/game"
)

const ConfigPath = "config/client.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("CONNECT4_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadClient(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	conn, err := client.Dial(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close()

	requests := make(chan client.Request, 16)
	events := make(chan client.Event, 16)
	driver := client.NewDriver(cfg, conn, requests, events)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		return driver.Run(gctx)
	})

	g.Go(func() error {
		defer conn.Close()
		return uiLoop(gctx, requests, events)
	})

	return g.Wait()
}

// uiLoop reads commands from stdin and renders events.
// Commands: name <username>, play, drop <column>, quit.
func uiLoop(ctx context.Context, requests chan<- client.Request, events <-chan client.Event) error {
	defer close(requests)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	var (
		board    [game.Columns][game.Rows]uint8
		myPiece  uint8
		opponent string
	)

	fmt.Println("commands: name <username> | play | drop <column> | quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "name":
				if len(fields) != 2 {
					fmt.Println("usage: name <username>")
					continue
				}
				requests <- client.RequestUsername{Username: fields[1]}
			case "play":
				requests <- client.SearchForGame{}
				fmt.Println("searching for a game...")
			case "drop":
				if len(fields) != 2 {
					fmt.Println("usage: drop <column>")
					continue
				}
				col, err := strconv.Atoi(fields[1])
				if err != nil || col < 0 || col >= game.Columns {
					fmt.Printf("column must be 0..%d\n", game.Columns-1)
					continue
				}
				requests <- client.PlacePiece{Column: uint8(col)}
			case "quit":
				return nil
			default:
				fmt.Println("commands: name <username> | play | drop <column> | quit")
			}

		case ev, ok := <-events:
			if !ok {
				fmt.Println("connection closed")
				return nil
			}
			switch ev := ev.(type) {
			case client.EventUsernameResult:
				if ev.Success {
					fmt.Printf("welcome, %s — type 'play' to find a game\n", ev.Username)
				} else {
					fmt.Printf("username %q is taken, pick another\n", ev.Username)
				}
			case client.EventTransferToGame:
				board = [game.Columns][game.Rows]uint8{}
				fmt.Println("game found, waiting for opponent...")
			case client.EventOpponentJoin:
				opponent = ev.Username
				if ev.IGoFirst {
					myPiece = game.Player1
					fmt.Printf("playing against %s — you go first\n", opponent)
				} else {
					myPiece = game.Player2
					fmt.Printf("playing against %s — they go first\n", opponent)
				}
			case client.EventPiecePlaced:
				piece := myPiece
				if !ev.Me {
					piece = 3 - myPiece
				}
				settle(&board, ev.Column, piece)
				render(&board, myPiece)
			case client.EventExitToLobby:
				fmt.Println("opponent left — back to the lobby")
			case client.EventWinGame:
				fmt.Println("you win!")
			case client.EventLoseGame:
				fmt.Println("you lose.")
			}
		}
	}
}

// settle mirrors the server's gravity: the piece lands in the lowest empty
// row of the column.
func settle(board *[game.Columns][game.Rows]uint8, column, piece uint8) {
	if column >= game.Columns {
		return
	}
	for y := 0; y < game.Rows; y++ {
		if board[column][y] == 0 {
			board[column][y] = piece
			return
		}
	}
}

// render prints the board top row first. X is this player, O the opponent.
func render(board *[game.Columns][game.Rows]uint8, myPiece uint8) {
	for y := game.Rows - 1; y >= 0; y-- {
		var sb strings.Builder
		for x := 0; x < game.Columns; x++ {
			switch board[x][y] {
			case 0:
				sb.WriteString(" .")
			case myPiece:
				sb.WriteString(" X")
			default:
				sb.WriteString(" O")
			}
		}
		fmt.Println(sb.String())
	}
	fmt.Println(" 0 1 2 3 4 5 6")
}
