package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rahul/dictum/internal/actions"
	"github.com/rahul/dictum/internal/agent"
	"github.com/rahul/dictum/internal/automation"
	"github.com/rahul/dictum/internal/gateway"
	"github.com/rahul/dictum/internal/hotkey"
	"github.com/rahul/dictum/internal/observability"
	"github.com/rahul/dictum/internal/store"
	"github.com/rahul/dictum/internal/vision"
	"github.com/rahul/dictum/internal/voice"
	"github.com/rahul/dictum/pkg/config"
)

const (
	configPath = "config.json"
	// historyTurns is how much of the stored conversation is reloaded.
	historyTurns = 10
)

func main() {
	observability.PrintBanner()

	// Route all log output through the terminal mutex so it never
	// splits a status line.
	log.SetOutput(observability.NewTermWriter())

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	stdin := bufio.NewReader(os.Stdin)
	username, err := readUsername(stdin)
	if err != nil {
		log.Fatal(err)
	}

	profile, err := store.LoadProfile(cfg.ProfileDir, username)
	if err != nil {
		log.Fatal(err)
	}
	if err := profile.UpdateSettings(map[string]any{"voice": cfg.Voice, "language": cfg.Language}); err != nil {
		log.Fatal(err)
	}

	history, err := store.NewHistoryStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	logger := observability.NewLogger("logs")
	defer logger.Sync()

	model, err := newModel(cfg)
	if err != nil {
		log.Fatal(err)
	}

	systemPrompt, err := agent.NewPromptManager(cfg.PromptsDir).SystemPrompt()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	inputClosed := make(chan struct{})
	buffer := voice.NewBuffer()
	listener := voice.NewListener(buffer)
	listener.Closed = inputClosed

	local := voice.NewCommandSpeaker(os.Stdout, cfg.Voice)
	speakers := voice.MultiSpeaker{local}

	relayed := false
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, tgCfg.ChatID, buffer)
		if err != nil {
			log.Printf("Warning: telegram gateway disabled: %v", err)
		} else {
			relayed = true
			speakers = append(speakers, tg)
			go func() {
				if err := tg.Start(ctx); err != nil {
					log.Printf("telegram gateway stopped: %v", err)
				}
			}()
		}
	}

	go func() {
		if err := voice.ReadLines(ctx, stdin, buffer); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Warning: reading input failed: %v", err)
		}
		if !relayed {
			close(inputClosed)
		}
	}()

	session := agent.NewSession(username, agent.NewMemory(cfg.MaxMemory))
	restoreConversation(session, history)

	engine := &agent.Engine{
		Session:  session,
		Queue:    &agent.Queue{},
		Executor: actions.NewExecutor(automation.NewXdotoolDriver()),
		Speaker:  speakers,
		Listener: listener,
		Feedback: store.NewFeedbackLog(cfg.FeedbackLogFile),
		Journal:  history,
		Logger:   logger,
	}
	router := &agent.Router{
		Session:      session,
		Engine:       engine,
		Builder:      &agent.Builder{MaxDepth: agent.MaxClarificationDepth},
		Model:        model,
		Screen:       automation.NewScreen(cfg.ScreenshotDir),
		Macros:       profile,
		Speaker:      speakers,
		Listener:     listener,
		History:      history,
		SystemPrompt: systemPrompt,
		Logger:       logger,
	}

	err = hotkey.Bind(ctx, cfg.CancelHotkey, func() {
		if engine.Interrupt() {
			stop()
			return
		}
		log.Println("Cancelling the current task.")
	})
	if err != nil {
		log.Printf("Warning: cancel hotkey not bound: %v", err)
	}

	go func() {
		err := config.Watch(ctx, configPath, func(c *config.Config) {
			local.SetVoice(c.Voice)
			session.Memory.Resize(c.MaxMemory)
			log.Printf("Configuration reloaded")
		})
		if err != nil {
			log.Printf("Warning: config watcher stopped: %v", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
				observability.PrintStatusLine()
			}
		}
	}()

	log.Printf("Welcome, %s. Speak or type a command.", username)

	for {
		session.Resume()
		session.SetIdle(true)
		observability.SetStatus(observability.RoleListening, "")

		text, err := listener.Listen(ctx)
		session.SetIdle(false)
		if err != nil {
			break
		}
		log.Printf("User: %s", text)

		if err := router.Handle(ctx, text); err != nil {
			if errors.Is(err, store.ErrPersistence) {
				log.Fatalf("Failed to save user data: %v", err)
			}
			if ctx.Err() != nil || errors.Is(err, voice.ErrInputClosed) {
				break
			}
			log.Printf("Error processing command: %v", err)
			_ = speakers.Speak(ctx, "Sorry, I could not complete that command.")
		}
		_ = speakers.Speak(ctx, "Ready for the next command.")
	}

	log.Println("Goodbye.")
}

func readUsername(r *bufio.Reader) (string, error) {
	fmt.Print("Enter your username: ")
	line, err := r.ReadString('\n')
	name := strings.TrimSpace(line)
	if name == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read username: %w", err)
		}
		return "", errors.New("username must not be empty")
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("invalid username %q", name)
	}
	return name, nil
}

func restoreConversation(s *agent.Session, h *store.HistoryStore) {
	msgs, err := h.GetHistory(s.Username, historyTurns)
	if err != nil {
		log.Printf("Warning: failed to load conversation history: %v", err)
		return
	}
	for _, m := range msgs {
		s.AddTurn(m.Role, m.Content)
	}
}

func newModel(cfg *config.Config) (vision.Model, error) {
	name, p := cfg.GetDefaultProvider()
	switch name {
	case "":
		return nil, errors.New("no enabled provider found in config")
	case "anthropic":
		key := p.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		return vision.NewAnthropicModel(key, p.Model)
	case "openai", "openrouter":
		key := p.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return vision.NewOpenAIModel(key, p.Model, p.BaseURL)
	default:
		return nil, fmt.Errorf("provider %s is not supported", name)
	}
}
