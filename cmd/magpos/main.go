package main

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/magpos/magpos/internal/cart"
	"github.com/magpos/magpos/internal/catalog"
	"github.com/magpos/magpos/internal/config"
	"github.com/magpos/magpos/internal/logging"
	"github.com/magpos/magpos/internal/magento"
	"github.com/magpos/magpos/internal/notify"
	"github.com/magpos/magpos/internal/session"
	"github.com/magpos/magpos/internal/session/vault"
	"github.com/magpos/magpos/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// the TUI owns stdout, so logs go to a file
	logger, closeLog := logging.Open(cfg.Log.Path)
	defer func() { _ = closeLog() }()

	v, err := vault.New()
	if err != nil {
		log.Fatalf("session vault: %v", err)
	}

	api := magento.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, logger)

	queue := notify.NewQueue()
	stores := tui.Stores{
		Session: session.NewStore(api, v, queue, logger),
		Catalog: catalog.NewStore(api, logger),
		Cart:    cart.NewStore(api, logger),
	}

	p := tea.NewProgram(tui.New(ctx, cfg, stores, queue, logger), tea.WithAltScreen())
	queue.SetOnChange(func() { p.Send(tui.NotifyChanged()) })

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
