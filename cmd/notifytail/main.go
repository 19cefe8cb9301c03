// Command notifytail prints the notification stream of one user, reconnecting when it drops.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/wsclient"
)

type loginResponse struct {
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API base URL")
	token := flag.String("token", os.Getenv("UGC_ACCESS_TOKEN"), "Access token (defaults to $UGC_ACCESS_TOKEN)")
	email := flag.String("email", "", "Log in with this email when no token is given")
	password := flag.String("password", os.Getenv("UGC_PASSWORD"), "Password for -email (defaults to $UGC_PASSWORD)")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	// stdout carries the envelopes
	logger.InitializeWithWriter(os.Stderr, *logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *token == "" {
		if *email == "" {
			log.Fatal("either -token or -email is required")
		}
		t, err := login(ctx, *serverURL, *email, *password)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		*token = t
	}

	out := json.NewEncoder(os.Stdout)
	client, err := wsclient.New(*serverURL, *token, func(env domain.Envelope) {
		out.Encode(struct {
			At time.Time `json:"at"`
			domain.Envelope
		}{time.Now().UTC(), env})
	})
	if err != nil {
		log.Fatalf("Invalid server URL: %v", err)
	}

	go func() {
		<-ctx.Done()
		client.Close()
	}()

	if err := client.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Notification stream failed: %v", err)
	}
}

func login(ctx context.Context, serverURL, email, password string) (string, error) {
	var body loginResponse
	resp, err := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(10*time.Second).
		R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&body).
		Post("/api/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}
	return body.Tokens.AccessToken, nil
}
