// Command oxorooms starts the realtime room server.
//
// It serves the websocket game protocol at /ws, a read-only REST API under
// /api, and an MCP endpoint at /mcp. Flags control host/port, debug
// logging, and optional ngrok tunneling for sharing room links during
// development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"oxorooms/api"
	"oxorooms/game/room"
	"oxorooms/transport/mcp"
	"oxorooms/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "OXO Rooms Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cmd := &cli.Command{
		Name:    "oxorooms",
		Usage:   "realtime room-based tic-tac-toe server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServer,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// runServer starts the HTTP server with the websocket protocol, REST API,
// and /mcp endpoint, and blocks until a shutdown signal arrives.
func runServer(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	log.Printf("Starting %s v%s", AppName, Version)

	registry := room.NewRegistry()
	hub := websocket.NewHub(registry)
	apiServer := api.NewServer(registry, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"))
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves the router through a public ngrok tunnel until the
// context is cancelled. A public URL plus a room code makes an ad-hoc game
// shareable without deployment.
func runNgrokTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Println("WARNING: ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}
