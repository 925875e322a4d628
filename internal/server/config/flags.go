package config

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/flagx"
)

var serverFlags = []string{
	"-a", "-m", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e",
	"-o", "-f", "-q", "-w", "-i", "-k", "-l",
}

// parseFlags overlays command-line flags on config.
//
//	-a string   gRPC bind address
//	-m string   storage backend: memory or postgres
//	-d string   PostgreSQL DSN
//	-s string   JWT signing secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u, -p      S3 credentials
//	-b, -g, -e  S3 bucket, region, endpoint
//	-o string   contract owner account (receives the dev fee)
//	-f uint     dev fee percent, below 100
//	-q int      habit acquisition period, hours
//	-w int      grace period, hours
//	-i int      payout dispatch interval, seconds
//	-k string   payout webhook URL; empty logs transfers instead
//	-l string   log level
//
// Malformed flags panic, as does a dev fee that does not fit a byte.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (memory|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 evidence bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.Owner, "o", config.Owner, "contract owner account")
	fee := fs.Uint("f", uint(config.DevFeePercent), "dev fee percent")
	acquisitionHours := fs.Int("q", int(config.AcquisitionPeriod.Hours()), "acquisition period (hours)")
	graceHours := fs.Int("w", int(config.GracePeriod.Hours()), "grace period (hours)")
	payoutSeconds := fs.Int("i", int(config.PayoutInterval.Seconds()), "payout dispatch interval (seconds)")
	fs.StringVar(&config.PayoutWebhookURL, "k", config.PayoutWebhookURL, "payout webhook URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	if *fee > math.MaxUint8 {
		panic(fmt.Errorf("dev fee %d out of range", *fee))
	}

	// Only flags given on the command line override; the int defaults would
	// otherwise truncate sub-unit durations set by the JSON file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		case "f":
			config.DevFeePercent = uint8(*fee)
		case "q":
			config.AcquisitionPeriod = time.Duration(*acquisitionHours) * time.Hour
		case "w":
			config.GracePeriod = time.Duration(*graceHours) * time.Hour
		case "i":
			config.PayoutInterval = time.Duration(*payoutSeconds) * time.Second
		}
	})
}
