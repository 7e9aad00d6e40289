package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/chat"
	"github.com/ahmadsanny2/chat-ai/internal/config"
	"github.com/ahmadsanny2/chat-ai/internal/llm"
	"github.com/ahmadsanny2/chat-ai/internal/store"
)

// Cliente de terminal sobre el mismo motor de sesiones, con el store local.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	sessionStore := store.NewFileStore(cfg.StorePath)
	sessions, err := store.Bootstrap(ctx, sessionStore, logger)
	if err != nil {
		log.Fatal(err)
	}

	gateway := llm.NewOpenAIGateway(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, logger)
	controller := chat.NewController(sessionStore, gateway, logger, sessions, chat.ControllerOptions{
		HistoryLimit: cfg.HistoryLimit,
		TurnTimeout:  time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
	})

	fmt.Println("chat-ai cli. Comandos: /new /list /select N /rename TITULO /delete /search TEXTO /quit")

	for {
		active, _ := chat.Find(controller.Sessions(), controller.ActiveID())
		fmt.Printf("[%s] > ", chat.TruncateTitle(active.Title, 15))

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, controller, line); quit {
				return
			}
			continue
		}

		reply, err := controller.Submit(ctx, controller.ActiveID(), line)
		if err != nil {
			printTurnError(err)
			continue
		}
		fmt.Printf("assistant: %s\n", reply.Content)
	}
}

func runCommand(ctx context.Context, controller *chat.Controller, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit":
		return true
	case "/new":
		session, err := controller.Create(ctx)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return false
		}
		fmt.Printf("nueva sesion %s\n", session.ID)
	case "/list":
		for i, s := range controller.Sessions() {
			marker := " "
			if s.ID == controller.ActiveID() {
				marker = "*"
			}
			fmt.Printf("%s %d. %s (%d mensajes)\n", marker, i+1, s.Title, len(s.Messages))
		}
	case "/select":
		n, err := strconv.Atoi(arg)
		sessions := controller.Sessions()
		if err != nil || n < 1 || n > len(sessions) {
			fmt.Println("uso: /select N")
			return false
		}
		if err := controller.Select(sessions[n-1].ID); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "/rename":
		if err := controller.Rename(ctx, controller.ActiveID(), arg); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "/delete":
		if err := controller.Delete(ctx, controller.ActiveID()); err != nil {
			fmt.Printf("error: %v\n", err)
			return false
		}
		if controller.ActiveID() == "" {
			// Sin sesiones restantes: arrancar una nueva.
			if _, err := controller.Create(ctx); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		}
	case "/search":
		for _, s := range chat.Filter(controller.Sessions(), arg) {
			fmt.Printf("- %s\n", chat.TruncateTitle(s.Title, 30))
		}
	default:
		fmt.Println("comando desconocido")
	}
	return false
}

func printTurnError(err error) {
	switch {
	case errors.Is(err, chat.ErrSessionBusy):
		fmt.Println("la sesion tiene un turno en vuelo")
	case errors.Is(err, llm.ErrTransport):
		fmt.Println("fallo de red contra el proveedor")
	case errors.Is(err, llm.ErrUpstream), errors.Is(err, llm.ErrMalformedReply):
		fmt.Println("el proveedor no devolvio una respuesta valida")
	case errors.Is(err, store.ErrPersistence), errors.Is(err, store.ErrStaleWrite):
		fmt.Println("no se pudo persistir la sesion")
	default:
		fmt.Printf("error: %v\n", err)
	}
}
