package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/graftml/graft/api"
	"github.com/graftml/graft/envconfig"
	"github.com/graftml/graft/format"
	"github.com/graftml/graft/logutil"
	"github.com/graftml/graft/progress"
	"github.com/graftml/graft/server"
	"github.com/graftml/graft/version"
)

func initLogging() {
	level := slog.LevelInfo
	if envconfig.Debug() {
		level = slog.LevelDebug
	}

	slog.SetDefault(logutil.NewLogger(os.Stderr, level))
}

func ServeHandler(cmd *cobra.Command, args []string) error {
	host := envconfig.Host()

	ln, err := net.Listen("tcp", host.Host)
	if err != nil {
		return err
	}

	return server.Serve(ln)
}

func LoadHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var req api.LoadGraphRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	if req.Name == "" {
		req.Name = args[0]
	}

	p := progress.NewProgress(os.Stderr)
	defer p.Stop()

	spinner := progress.NewSpinner(fmt.Sprintf("loading %s", req.Name))
	p.Add(spinner)

	start := time.Now()
	resp, err := client.LoadGraph(cmd.Context(), &req)
	p.Stop()
	if err != nil {
		return err
	}

	fmt.Printf("loaded %s: %s nodes, %s edges",
		resp.Name,
		format.HumanNumber(uint64(resp.NumNodes)),
		format.HumanNumber(uint64(resp.NumEdges)))
	if resp.EdgeTypes > 0 {
		fmt.Printf(", %d edge types", resp.EdgeTypes)
	}
	fmt.Printf(" (%s)\n", format.ExactDuration(time.Since(start)))

	return nil
}

func SampleHandler(cmd *cobra.Command, args []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	var seeds []int64
	for _, arg := range args {
		var seed int64
		if _, err := fmt.Sscanf(arg, "%d", &seed); err != nil {
			return fmt.Errorf("invalid seed %q", arg)
		}
		seeds = append(seeds, seed)
	}

	batchSize, _ := cmd.Flags().GetInt("batch-size")

	p := progress.NewProgress(os.Stderr)
	defer p.Stop()
	p.Add(progress.NewSpinner("sampling"))

	resp, err := client.InSubgraph(cmd.Context(), &api.InSubgraphRequest{
		Seeds:     seeds,
		BatchSize: batchSize,
	})
	p.Stop()
	if err != nil {
		return err
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(resp)
}

func VersionHandler(cmd *cobra.Command, args []string) error {
	fmt.Printf("graft client version %s\n", version.Version)

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	if v, err := client.Version(cmd.Context()); err == nil {
		fmt.Printf("graft server version %s\n", v)
	}

	return nil
}

func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	if err := client.Heartbeat(ctx); err != nil {
		return errors.New("could not connect to a running graft server, is it running?")
	}

	return nil
}

func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "graft",
		Short:         "GPU-style graph sampling server",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging()
		},
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the graft server",
		Args:    cobra.ExactArgs(0),
		RunE:    ServeHandler,
	}

	loadCmd := &cobra.Command{
		Use:     "load GRAPH.json",
		Short:   "Load a graph topology into the server",
		Args:    cobra.ExactArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    LoadHandler,
	}

	sampleCmd := &cobra.Command{
		Use:     "sample SEED...",
		Short:   "Sample the in-neighborhood subgraph of the given seed nodes",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: checkServerHeartbeat,
		RunE:    SampleHandler,
	}
	sampleCmd.Flags().Int("batch-size", 0, "Seeds per minibatch (default: all seeds in one batch)")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show environment variables and their current values",
		Args:  cobra.ExactArgs(0),
		RunE:  EnvHandler,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.ExactArgs(0),
		RunE:  VersionHandler,
	}

	rootCmd.AddCommand(serveCmd, loadCmd, sampleCmd, envCmd, versionCmd)

	return rootCmd
}
