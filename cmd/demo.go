package cmd

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/api"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/demo"
	"github.com/zhubert/parley/internal/demo/scenarios"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/mockserver"
)

var (
	demoSeedFile   string
	demoPort       int
	demoLatency    time.Duration
	demoOutput     string
	demoWidth      int
	demoHeight     int
	demoCaptureAll bool
)

// demoIdentity is the email in the token issued by `parley demo`.
const demoIdentity = "demo@parley.dev"

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run parley against a built-in mock service",
	Long: `Starts an in-process mock of the conversation service on localhost,
seeds it with sample conversations, and opens the TUI against it.

Available subcommands:
  list      - List available demo scenarios
  run       - Run a scenario and print its frames (for testing)
  cast      - Record a scenario as an asciinema cast file`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

var demoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available demo scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Available demo scenarios:")
		fmt.Fprintln(w)
		for _, s := range scenarios.All() {
			fmt.Fprintf(w, "  %-15s %s\n", s.Name, s.Description)
		}
	},
}

var demoRunCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario and print its frames (for testing)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemoRun,
}

var demoCastCmd = &cobra.Command{
	Use:   "cast <scenario>",
	Short: "Record a scenario as an asciinema cast file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemoCast,
}

func init() {
	demoCmd.Flags().StringVar(&demoSeedFile, "seed", "", "YAML seed file (default: built-in sample conversations)")
	demoCmd.Flags().IntVar(&demoPort, "port", 0, "Port for the mock service (default: any free port)")
	demoCmd.Flags().DurationVar(&demoLatency, "latency", 600*time.Millisecond, "Delay before each reply")

	for _, c := range []*cobra.Command{demoRunCmd, demoCastCmd} {
		c.Flags().StringVarP(&demoOutput, "output", "o", "", "Output file")
		c.Flags().IntVarP(&demoWidth, "width", "w", 0, "Terminal width (default: the scenario's)")
		c.Flags().IntVarP(&demoHeight, "height", "H", 0, "Terminal height (default: the scenario's)")
		c.Flags().BoolVar(&demoCaptureAll, "capture-all", false, "Capture a frame after every key (for debugging)")
	}

	demoCmd.AddCommand(demoListCmd)
	demoCmd.AddCommand(demoRunCmd)
	demoCmd.AddCommand(demoCastCmd)
	rootCmd.AddCommand(demoCmd)
}

// readSeed returns the seed at path, or the built-in seed when path is empty.
func readSeed(path string) ([]byte, error) {
	if path == "" {
		return mockserver.DemoSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading seed: %w", err)
	}
	return data, nil
}

// newDemoServer builds a mock service seeded from seed, and a token it accepts.
func newDemoServer(seed []byte, latency time.Duration) (*mockserver.Server, string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, "", err
	}
	srv := mockserver.New(
		mockserver.WithJWTSecret(secret),
		mockserver.WithLatency(latency),
	)
	if err := srv.LoadSeed(bytes.NewReader(seed)); err != nil {
		return nil, "", err
	}
	token, err := mockserver.IssueToken(secret, "demo", demoIdentity, 24*time.Hour)
	if err != nil {
		return nil, "", err
	}
	return srv, token, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	seed, err := readSeed(demoSeedFile)
	if err != nil {
		return err
	}
	srv, token, err := newDemoServer(seed, demoLatency)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", demoPort))
	if err != nil {
		return fmt.Errorf("error starting mock service: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := logger.Init(logger.DemoLogPath(port)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithComponent("demo").Error("mock service stopped", "error", err)
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpSrv.Shutdown(ctx)
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	baseURL := fmt.Sprintf("http://127.0.0.1:%d/api", port)
	if err := cfg.OverrideAPIURL(baseURL); err != nil {
		return err
	}
	client, err := api.New(baseURL, token)
	if err != nil {
		return err
	}
	return runProgram(cmd.Context(), cfg, client, demoIdentity)
}

func getScenario(name string) (*demo.Scenario, error) {
	scenario := scenarios.Get(name)
	if scenario == nil {
		return nil, fmt.Errorf("unknown scenario %q\nRun 'parley demo list' to see available scenarios", name)
	}

	// Override dimensions if specified
	if demoWidth > 0 {
		scenario.Width = demoWidth
	}
	if demoHeight > 0 {
		scenario.Height = demoHeight
	}

	return scenario, nil
}

func executeScenario(ctx context.Context, scenario *demo.Scenario) ([]demo.Frame, error) {
	execCfg := demo.DefaultExecutorConfig()
	execCfg.CaptureEveryStep = demoCaptureAll

	executor := demo.NewExecutor(execCfg)
	return executor.Run(ctx, scenario)
}

func runDemoRun(cmd *cobra.Command, args []string) error {
	scenario, err := getScenario(args[0])
	if err != nil {
		return err
	}

	frames, err := executeScenario(cmd.Context(), scenario)
	if err != nil {
		return fmt.Errorf("error running scenario: %w", err)
	}

	// Print frames to stdout for testing
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Captured %d frames\n", len(frames))
	for i, f := range frames {
		fmt.Fprintf(w, "\n=== Frame %d (delay: %v) ===\n", i, f.Delay)
		if f.StepIndex >= 0 && scenario.Steps[f.StepIndex].Description != "" {
			fmt.Fprintf(w, "Step: %s\n", scenario.Steps[f.StepIndex].Description)
		}
		if f.Annotation != "" {
			fmt.Fprintf(w, "Annotation: %s\n", f.Annotation)
		}
		fmt.Fprintln(w, f.Content)
	}

	return nil
}

func runDemoCast(cmd *cobra.Command, args []string) error {
	scenarioName := args[0]
	scenario, err := getScenario(scenarioName)
	if err != nil {
		return err
	}

	frames, err := executeScenario(cmd.Context(), scenario)
	if err != nil {
		return fmt.Errorf("error running scenario: %w", err)
	}

	// Determine output file
	outputFile := demoOutput
	if outputFile == "" {
		outputFile = scenarioName + ".cast"
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	if err := demo.GenerateASCIICast(f, frames, scenario.Width, scenario.Height); err != nil {
		return fmt.Errorf("error generating cast file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (%d frames)\n", outputFile, len(frames))
	fmt.Fprintf(cmd.OutOrStdout(), "Play with: asciinema play %s\n", outputFile)

	return nil
}
