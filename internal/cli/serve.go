package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/internal/api"
)

// serveCommand creates the serve command, which runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		cache cacheOptions
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout API",
		Long: `Run the HTTP layout API.

POST a netlist to /v1/layout to get its layout and rendered artifacts back.
Layouts are cached on disk by default, or in Redis with --redis so that
several servers can share results.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("layout", "POST /v1/layout")
			printKeyValue("health", "GET /healthz")
			return api.New(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", api.DefaultAddr, "listen address")
	cache.register(cmd)

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
