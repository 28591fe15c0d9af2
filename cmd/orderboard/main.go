package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/dinesync/backend/internal/orders"
	"github.com/dinesync/backend/internal/realtime/stream"
	"github.com/dinesync/backend/internal/realtime/tracker"
	"github.com/dinesync/backend/pkg/config"
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/logger"
)

const (
	renderInterval = 2 * time.Second
	fetchPageSize  = 100
)

func main() {
	apiBase := flag.String("api", "http://localhost:8080", "base URL of the orders API")
	token := flag.String("token", os.Getenv("DINESYNC_ORDERBOARD_TOKEN"), "bearer token for the API")
	logLevel := flag.String("log-level", "warn", "log verbosity")
	flag.Parse()

	logg := logger.New(logger.Options{
		ServiceName: "orderboard",
		Level:       logger.ParseLevel(*logLevel),
		Output:      os.Stderr,
	})

	// Only the realtime tuning section; the board needs no DB or Redis env.
	var rtCfg config.RealtimeConfig
	if err := envconfig.Process(config.EnvPrefix, &rtCfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid realtime config: %v\n", err)
		os.Exit(1)
	}

	if *token == "" {
		fmt.Fprintln(os.Stderr, "missing bearer token: set -token or DINESYNC_ORDERBOARD_TOKEN")
		os.Exit(1)
	}
	base, err := url.Parse(strings.TrimRight(*apiBase, "/"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -api value: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := &apiFetcher{
		base:   base.String(),
		token:  *token,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	board := tracker.New(tracker.Options{
		Fetcher:           fetcher,
		PollInterval:      rtCfg.PollInterval,
		NewOrderNoticeTTL: rtCfg.NewOrderNoticeTTL,
		Logger:            logg,
	})
	defer board.Close()

	if initial, err := fetcher.ListOrders(ctx); err != nil {
		logg.Error(ctx, "initial order fetch failed", err)
	} else {
		board.Replace(initial)
	}

	var maxReconnects uint64
	if rtCfg.MaxReconnects > 0 {
		maxReconnects = uint64(rtCfg.MaxReconnects)
	}
	client, err := stream.New(stream.Options{
		URL:           base.String() + "/api/orders/realtime",
		BearerToken:   *token,
		ReconnectBase: rtCfg.ReconnectBase,
		ReconnectCap:  rtCfg.ReconnectCap,
		MaxReconnects: maxReconnects,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to build stream client", err)
		os.Exit(1)
	}
	client.Start(ctx)
	defer client.Close()

	go board.RunPolling(ctx)
	go watchConnection(ctx, client, board)
	go printAlerts(ctx, board)

	render := time.NewTicker(renderInterval)
	defer render.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-client.Events():
			if !ok {
				if client.State() == stream.StateGaveUp {
					logg.Error(ctx, "stream gave up, exiting", client.Err())
					os.Exit(1)
				}
				return
			}
			board.Apply(frame)
		case <-render.C:
			printBoard(board)
		}
	}
}

// watchConnection mirrors the stream client's state into the tracker so the
// polling fallback only runs while the stream is down.
func watchConnection(ctx context.Context, client *stream.Client, board *tracker.Tracker) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			board.SetConnected(false)
			return
		case <-ticker.C:
			board.SetConnected(client.State() == stream.StateConnected)
		}
	}
}

func printAlerts(ctx context.Context, board *tracker.Tracker) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-board.Alerts():
			if !ok {
				return
			}
			switch alert.Kind {
			case tracker.AlertNewOrder:
				fmt.Printf("\a*** NEW ORDER #%d (%s) ***\n", alert.Order.OrderNumber, alert.Order.CustomerName)
			case tracker.AlertKitchenConfirm:
				fmt.Printf("\a--- order #%d confirmed, start prep ---\n", alert.Order.OrderNumber)
			}
		}
	}
}

func printBoard(board *tracker.Tracker) {
	all := board.Orders()
	noticeID, hasNotice := board.NewOrderNotice()

	fmt.Printf("\n== order board (%s, %d orders) ==\n", time.Now().Format("15:04:05"), len(all))
	for _, order := range all {
		marker := "  "
		if hasNotice && order.ID == noticeID {
			marker = "> "
		}
		fmt.Printf("%s#%-5d %-20s %-12s %-10s %s\n",
			marker,
			order.OrderNumber,
			truncate(order.CustomerName, 20),
			order.Status,
			order.PaymentStatus,
			itemSummary(order.Items),
		)
	}
}

func itemSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s [%d/%d]", item.Quantity, item.Name, item.CompletedQuantity, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// apiFetcher implements tracker.BulkFetcher against the HTTP API.
type apiFetcher struct {
	base   string
	token  string
	client *http.Client
}

func (f *apiFetcher) ListOrders(ctx context.Context) ([]models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/orders?limit=%d", f.base, fetchPageSize), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list orders: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data orders.List `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding order list: %w", err)
	}
	return envelope.Data.Orders, nil
}
