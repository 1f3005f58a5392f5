// Command latch-demo drives a full sign-in against a Latch deployment from
// the terminal. It exists to exercise the SDK end to end against a real
// service: pick a flow, receive the code or link, and watch the session
// arrive.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aussiebroadwan/latch-go/pkg/latchsdk"
	"github.com/aussiebroadwan/latch-go/pkg/slogx"
)

type config struct {
	ProjectID string // Required: Latch project ID
	BaseURL   string // Optional: service base URL (default: hosted deployment)
	Flow      string // Flow to run (otp, magiclink, enchantedlink, password) (default: otp)
	LoginID   string // Required: email address to authenticate
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

func loadConfig() config {
	return config{
		ProjectID: os.Getenv("LATCH_PROJECT_ID"),
		BaseURL:   getEnvOrDefault("LATCH_BASE_URL", latchsdk.DefaultBaseURL),
		Flow:      getEnvOrDefault("LATCH_FLOW", "otp"),
		LoginID:   os.Getenv("LATCH_LOGIN_ID"),
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger := slogx.New(slogx.Config{
		Service: "latch-demo",
		Version: "dev",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	if cfg.ProjectID == "" || cfg.LoginID == "" {
		logger.Error("LATCH_PROJECT_ID and LATCH_LOGIN_ID must be set")
		os.Exit(1)
	}

	client, err := latchsdk.NewClient(latchsdk.Config{
		ProjectID: cfg.ProjectID,
		BaseURL:   cfg.BaseURL,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var auth *latchsdk.AuthenticationResult
	switch cfg.Flow {
	case "otp":
		auth, err = runOTP(ctx, client, cfg.LoginID)
	case "magiclink":
		auth, err = runMagicLink(ctx, client, cfg.LoginID)
	case "enchantedlink":
		auth, err = runEnchantedLink(ctx, client, cfg.LoginID)
	case "password":
		auth, err = runPassword(ctx, client, cfg.LoginID)
	default:
		logger.Error("unknown flow", "flow", cfg.Flow)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("authentication failed", "flow", cfg.Flow, "error", err)
		os.Exit(1)
	}

	logger.Info("authenticated",
		"flow", cfg.Flow,
		"first_authentication", auth.FirstAuthentication,
		slogx.Token("session", auth.SessionToken),
		slogx.Token("refresh", auth.RefreshToken),
	)
	if auth.User != nil {
		logger.Info("user", "user_id", auth.User.UserID, "name", auth.User.Name)
	}

	user, err := client.Sessions().Me(ctx, auth.RefreshToken)
	if err != nil {
		logger.Error("me failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("signed in as %s (%s)\n", user.Name, strings.Join(user.LoginIDs, ", "))
}

func runOTP(ctx context.Context, client *latchsdk.Client, loginID string) (*latchsdk.AuthenticationResult, error) {
	masked, err := client.OTP().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID)
	if err != nil {
		return nil, err
	}
	code, err := prompt(fmt.Sprintf("a code was sent to %s, enter it", masked))
	if err != nil {
		return nil, err
	}
	return client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, code)
}

func runMagicLink(ctx context.Context, client *latchsdk.Client, loginID string) (*latchsdk.AuthenticationResult, error) {
	masked, err := client.MagicLink().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID, "")
	if err != nil {
		return nil, err
	}
	token, err := prompt(fmt.Sprintf("a link was sent to %s, paste its token", masked))
	if err != nil {
		return nil, err
	}
	return client.MagicLink().Verify(ctx, token)
}

func runEnchantedLink(ctx context.Context, client *latchsdk.Client, loginID string) (*latchsdk.AuthenticationResult, error) {
	resp, err := client.EnchantedLink().SignUp(ctx, loginID, "", nil)
	if err != nil {
		return nil, err
	}
	fmt.Printf("an email was sent to %s; click the link labelled %q\n", resp.MaskedEmail, resp.LinkID)
	fmt.Println("waiting for confirmation...")
	return client.EnchantedLink().WaitForSession(ctx, resp.PendingRef, 2*time.Minute)
}

func runPassword(ctx context.Context, client *latchsdk.Client, loginID string) (*latchsdk.AuthenticationResult, error) {
	password, err := prompt("password")
	if err != nil {
		return nil, err
	}
	return client.Password().SignIn(ctx, loginID, password)
}

func prompt(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
