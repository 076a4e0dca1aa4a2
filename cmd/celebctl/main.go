package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/config"
	"celebmint/native/minting"
	"celebmint/rpc/middleware"
)

const (
	tokenCommand      = "token"
	capabilityCommand = "capability"
	defaultConfig     = "./config.toml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case tokenCommand:
		err = runToken(os.Args[2:])
	case capabilityCommand:
		runCapability()
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runToken(args []string) error {
	fs := flag.NewFlagSet(tokenCommand, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the celebmint config file")
	address := fs.String("address", "", "Caller address the token speaks for")
	ttl := fs.Duration("ttl", time.Hour, "Token lifetime")
	fs.Parse(args)

	if !common.IsHexAddress(strings.TrimSpace(*address)) {
		return fmt.Errorf("--address must be a 0x-prefixed hex address")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(strings.TrimSpace(cfg.RPC.JWTSecret)) < config.MinJWTSecretLength {
		return fmt.Errorf("config %s has no usable JWTSecret", *configPath)
	}
	token, err := middleware.IssueToken(cfg.RPC.JWTSecret, cfg.RPC.JWTIssuer, common.HexToAddress(*address), *ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runCapability() {
	names := []string{"presence-check", "owned-asset", "royalty-quote"}
	for i, code := range minting.Capabilities() {
		fmt.Printf("%-15s %s\n", names[i], code)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  %s       Issue a bearer token for a caller address\n", tokenCommand)
	fmt.Fprintf(os.Stderr, "  %s  Print the supported capability codes\n", capabilityCommand)
}
