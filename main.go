package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"quotacard/internal/config"
	"quotacard/internal/editor"
	"quotacard/internal/eventbus"
	"quotacard/internal/hass"
	"quotacard/internal/quotable"
)

const loadTimeout = 30 * time.Second

func main() {
	// Parse command line arguments
	var configPath, entityID, serverURL, token, transport string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&configPath, "c", "", "Path to config file (shorthand)")
	flag.StringVar(&entityID, "entity", "", "Target quotable entity id")
	flag.StringVar(&entityID, "e", "", "Target quotable entity id (shorthand)")
	flag.StringVar(&serverURL, "server", "", "Home Assistant base URL")
	flag.StringVar(&token, "token", "", "Home Assistant access token")
	flag.StringVar(&transport, "transport", "", "Transport: websocket or rest")
	flag.Parse()

	// Load configuration
	configSvc := config.NewConfigService()
	cfg := loadConfig(configSvc, configPath)

	// Command line overrides
	if entityID != "" {
		cfg.EntityID = entityID
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if token != "" {
		cfg.Token = token
	}
	if transport != "" {
		cfg.Transport = transport
	}

	// Set up logging
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create event bus
	bus := eventbus.New()

	// Connect the transport. A failed dial is a failed load: the editor
	// starts anyway and simply never renders the form.
	client := dialClient(ctx, cfg)
	if client != nil {
		defer client.Close()
	}

	// Backend service subscribes to save/search/quote requests automatically
	svc := quotable.NewService(bus, client, cfg.EntityID)

	// Create UI model
	uiModel := editor.NewModel(bus, cfg)

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetProgram(p)

	// Forward bus events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventLoadCompleted,
		eventbus.EventLoadFailed,
		eventbus.EventSearchCompleted,
		eventbus.EventSearchFailed,
		eventbus.EventConfigSaved,
		eventbus.EventSaveFailed,
		eventbus.EventQuoteFetched,
		eventbus.EventError,
	} {
		bus.Subscribe(eventType, forward)
	}

	// Start forwarding events to UI in background
	go func() {
		for event := range eventChan {
			p.Send(editor.EventMsg{Event: event})
		}
	}()

	// Kick off the initial load
	go func() {
		loadCtx, loadCancel := context.WithTimeout(ctx, loadTimeout)
		defer loadCancel()
		if client == nil {
			bus.Publish(eventbus.LoadFailedEvent{Err: fmt.Errorf("no backend connection")})
			return
		}
		if err := svc.Load(loadCtx); err != nil {
			log.Printf("Initial load failed: %v", err)
		}
	}()

	// Run the UI
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	// Cleanup
	close(eventChan)
	cancel()
}

// loadConfig loads the editor configuration, falling back to defaults on any
// problem.
func loadConfig(configSvc config.ConfigService, path string) *config.Config {
	if path != "" {
		cfg, err := configSvc.LoadFromPath(path)
		if err != nil {
			log.Printf("Error loading config from %s: %v", path, err)
			return config.DefaultConfig()
		}
		return cfg
	}

	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return config.DefaultConfig()
	}
	return cfg
}

// dialClient connects the configured transport. Returns nil when the
// backend is unreachable; callers treat that as a failed load.
func dialClient(ctx context.Context, cfg *config.Config) hass.Client {
	switch cfg.Transport {
	case config.TransportREST:
		return hass.NewRESTClient(cfg.ServerURL, cfg.Token)
	default:
		dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
		defer dialCancel()
		client, err := hass.DialWebsocket(dialCtx, cfg.ServerURL, cfg.Token)
		if err != nil {
			log.Printf("Could not connect to %s: %v", cfg.ServerURL, err)
			return nil
		}
		return client
	}
}
