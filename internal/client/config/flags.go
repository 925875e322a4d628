package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server
//	-i int      online check interval in seconds
//	-d string   directory for fetched evidence files
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DownloadDir, "d", cfg.DownloadDir, "directory for fetched evidence")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
