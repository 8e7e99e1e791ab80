package main

import (
	"context"
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

func main() {
	// Set up logging
	logFile, err := os.OpenFile("quotacard.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
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

	// Load configuration
	configSvc := config.NewConfigService()
	cfg, err := configSvc.Load()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		cfg = config.DefaultConfig()
	}

	// Create event bus
	bus := eventbus.New()

	// Connect the transport
	var client hass.Client
	if cfg.Transport == config.TransportREST {
		client = hass.NewRESTClient(cfg.ServerURL, cfg.Token)
	} else {
		dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
		client, err = hass.DialWebsocket(dialCtx, cfg.ServerURL, cfg.Token)
		dialCancel()
		if err != nil {
			log.Printf("Could not connect to %s: %v", cfg.ServerURL, err)
			client = nil
		}
	}
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

	// Set up event forwarding to UI
	eventChan := make(chan eventbus.DomainEvent, 100)
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
		bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			default:
				log.Println("Event channel full, dropping event")
			}
		})
	}

	// Start forwarding events to UI in background
	go func() {
		for event := range eventChan {
			p.Send(editor.EventMsg{Event: event})
		}
	}()

	// Kick off the initial load
	go func() {
		loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
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
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	// Cleanup
	close(eventChan)
	cancel()
}
