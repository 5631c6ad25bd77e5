// goyk-verify validates a single OTP from the command line.
//
// Usage:
//
//	goyk-verify -client 12345 [-key BASE64] [-config goyk.yaml] [flags] <otp>
//
// Exit codes: 0 valid, 1 replayed, 2 usage or token parse error, 3
// infrastructure failure (transport or no valid answer).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	goYK "github.com/MrEthical07/goYK"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a goYK config file; flags override it")
		clientID   = flag.String("client", "", "API client id")
		apiKey     = flag.String("key", "", "base64 shared API key; empty disables signing")
		endpoints  = flag.String("endpoints", "", "comma-separated endpoint hosts, overriding the default set")
		waitForAll = flag.Bool("wait-for-all", false, "collect every endpoint response before deciding")
		timestamp  = flag.Bool("timestamp", false, "request timestamp and session counters")
		timeout    = flag.Int("timeout", 0, "per-fetch timeout in seconds (0 = config default)")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one OTP argument")
		os.Exit(2)
	}
	token := flag.Arg(0)

	cfg := goYK.DefaultConfig()
	if *configPath != "" {
		loaded, err := goYK.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	builder := goYK.New().WithConfig(cfg)
	if *clientID != "" {
		builder = builder.WithClient(*clientID, *apiKey)
	}
	if *endpoints != "" {
		builder = builder.WithEndpoints(strings.Split(*endpoints, ","))
	}

	verifier, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(2)
	}
	defer verifier.Close()

	var opts []goYK.VerifyOption
	if *waitForAll {
		opts = append(opts, goYK.WithWaitForAll())
	}
	if *timestamp {
		opts = append(opts, goYK.WithTimestampRequest())
	}
	if *timeout > 0 {
		opts = append(opts, goYK.WithTimeout(*timeout))
	}

	result, err := verifier.VerifyWithResult(context.Background(), token, opts...)
	switch {
	case err == nil:
		fmt.Printf("OK %s (%s)\n", result.Token.PublicID(), result.DecisiveEndpoint())
	case errors.Is(err, goYK.ErrReplayedOTP):
		fmt.Fprintf(os.Stderr, "REPLAYED: %v\n", err)
		os.Exit(1)
	case errors.Is(err, goYK.ErrTokenParse):
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
		os.Exit(3)
	}
}
