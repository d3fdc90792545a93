package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkovacev/hangchat/internal/auth"
	"github.com/mkovacev/hangchat/internal/chat"
	"github.com/mkovacev/hangchat/internal/config"
	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/internal/transport/rest"
	"github.com/mkovacev/hangchat/internal/transport/ws"
	"github.com/mkovacev/hangchat/pkg/validator"
)

func main() {
	login := flag.String("login", "", "save this session token and exit")
	flag.Parse()

	cfg := config.Load()

	// Token store
	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		var err error
		tokenPath, err = auth.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
	}
	tokens := auth.NewStore(tokenPath)

	if *login != "" {
		if err := tokens.Save(*login); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Token saved.")
		return
	}

	token, err := tokens.Load()
	if errors.Is(err, auth.ErrNoToken) {
		log.Fatal("no session token; run hangchat -login <token> first")
	}
	if err != nil {
		log.Fatal(err)
	}

	if claims, err := auth.Inspect(token); err != nil {
		log.Printf("could not inspect token: %v", err)
	} else {
		if claims.Expired(time.Now()) {
			log.Printf("stored token is expired; requests will be rejected")
		}
		if claims.Subject != "" {
			fmt.Printf("Signed in as %s\n", claims.Subject)
		}
	}

	// REST client + chat view
	api := rest.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, tokens)

	var ctrl *chat.Controller
	mgr, err := ws.NewManager(cfg.APIBaseURL, token, func(m domain.Message) {
		ctrl.HandleFrame(m)
	})
	if err != nil {
		log.Fatal(err)
	}
	store := chat.NewStore(api, mgr)
	ctrl = chat.NewController(api, store, cfg.SendDebounce)
	ctrl.SetScroll(func(int) {
		msgs := ctrl.Messages()
		if len(msgs) > 0 {
			printMessage(msgs[len(msgs)-1])
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.Connect(ctx); err != nil {
		// History still works over REST; sends will be dropped.
		log.Printf("realtime unavailable: %v", err)
	}
	defer mgr.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		mgr.Close()
		return nil
	})
	g.Go(func() error {
		defer stop()
		return inputLoop(ctx, api, ctrl)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

func inputLoop(ctx context.Context, api *rest.Client, ctrl *chat.Controller) error {
	rooms := printRooms(ctx, api, ctrl)

	fmt.Println(`Commands: /rooms, /open <n>, /direct <user-id>, /hangout <id> [name], /quit.`)
	fmt.Println("Anything else is sent to the open room.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()

		switch {
		case line == "/quit":
			return nil

		case line == "/rooms":
			rooms = printRooms(ctx, api, ctrl)

		case strings.HasPrefix(line, "/open "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/open ")))
			if err != nil || n < 1 || n > len(rooms) {
				fmt.Println("Usage: /open <n> with n from the room list.")
				continue
			}
			room := rooms[n-1]
			if err := ctrl.SelectRoom(ctx, room.ID); err != nil {
				log.Printf("loading history for %s: %v", room.Name, err)
			}
			fmt.Printf("-- %s --\n", room.Name)
			for _, m := range ctrl.Messages() {
				printMessage(m)
			}

		case strings.HasPrefix(line, "/direct "):
			userID := strings.TrimSpace(strings.TrimPrefix(line, "/direct "))
			if errs := validator.ValidateDirectRoom(userID); errs.HasErrors() {
				fmt.Println(errs)
				continue
			}
			ref, err := api.CreateDirect(ctx, userID)
			if err != nil {
				log.Printf("creating direct room: %v", err)
				continue
			}
			fmt.Printf("Room %s ready; refresh with /rooms.\n", ref.ID)

		case strings.HasPrefix(line, "/hangout "):
			args := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(line, "/hangout ")), " ", 2)
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			if errs := validator.ValidateHangoutRoom(args[0], name); errs.HasErrors() {
				fmt.Println(errs)
				continue
			}
			ref, err := api.CreateHangout(ctx, args[0], name)
			if err != nil {
				log.Printf("creating hangout room: %v", err)
				continue
			}
			fmt.Printf("Room %s ready; refresh with /rooms.\n", ref.ID)

		default:
			if err := ctrl.Send(line); err != nil {
				switch {
				case errors.Is(err, chat.ErrEmptyMessage):
					// Ignore blank lines.
				case errors.Is(err, chat.ErrNoRoomSelected):
					fmt.Println("Open a room first: /open <n>")
				case errors.Is(err, chat.ErrSendInFlight):
					fmt.Println("Still sending, try again in a moment.")
				default:
					log.Printf("send: %v", err)
				}
			}
		}
	}
	return scanner.Err()
}

func printRooms(ctx context.Context, api *rest.Client, ctrl *chat.Controller) []domain.Room {
	rooms := ctrl.Rooms(ctx)
	if len(rooms) == 0 {
		fmt.Println("No chats yet. Start a conversation with /direct or /hangout.")
		return rooms
	}
	for i, r := range rooms {
		label := fmt.Sprintf("%d. %s (%s)", i+1, r.Name, r.Kind)
		if unread, err := api.Unread(ctx, r.ID); err == nil && unread > 0 {
			label += fmt.Sprintf(" [%d unread]", unread)
		}
		fmt.Println(label)
	}
	return rooms
}

func printMessage(m domain.Message) {
	sender := m.SenderID
	if m.Optimistic {
		sender = "me (sending)"
	} else if sender == "" {
		sender = "unknown"
	}
	fmt.Printf("[%s] %s: %s\n", m.CreatedAt, sender, m.Content)
}
