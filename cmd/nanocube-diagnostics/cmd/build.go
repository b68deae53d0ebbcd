// MIT License

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanocube-go/nanocube"
)

var (
	widthsFlag []int
	pointFlags []string
	queryFlags []string
	flushFlag  bool
	compactFlag bool
	dotPath    string
)

// buildCmd constructs one cube from --widths, --point, and --query flags,
// then reports on it. It is the CLI's only command: there is nothing else
// in scope for a process whose entire job is to exercise the core's
// diagnostic API (SPEC_FULL.md, DOMAIN STACK).
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a cube from --point flags and print its diagnostics",
	Example: `  nanocube-diagnostics build --widths 2,2 \
    --point 1:0,0 --point 1:1,0 --point 1:1,1 \
    --query 0-4,0-4 --query 0-1,0-4`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().IntSliceVar(&widthsFlag, "widths", []int{4, 4}, "comma-separated per-dimension bit widths")
	buildCmd.Flags().StringArrayVar(&pointFlags, "point", nil, "a point to insert, as summary:coord,coord,... (repeatable)")
	buildCmd.Flags().StringArrayVar(&queryFlags, "query", nil, "a range query, as lo-hi,lo-hi,... per dimension (repeatable)")
	buildCmd.Flags().BoolVar(&flushFlag, "flush", true, "flush the release list before reporting")
	buildCmd.Flags().BoolVar(&compactFlag, "compact", false, "compact all arenas before reporting (implies --flush)")
	buildCmd.Flags().StringVar(&dotPath, "dot", "", "write a DOT rendering of the cube to this path (\"-\" for stdout)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	threshold := cfg.GetInt("release-threshold")

	c := nanocube.New(widthsFlag, 0, nanocube.IntSum,
		nanocube.ReleaseThreshold(threshold),
		nanocube.WithLogger(logger),
	)

	for _, raw := range pointFlags {
		summary, address, err := parsePoint(raw)
		if err != nil {
			return fmt.Errorf("--point %q: %w", raw, err)
		}
		c.Add(summary, address)
	}

	if flushFlag || compactFlag {
		c.FlushReleaseList()
	}
	if compactFlag {
		c.Compact()
	}

	c.Stats(os.Stdout)

	for _, raw := range queryFlags {
		bounds, err := parseQuery(raw)
		if err != nil {
			return fmt.Errorf("--query %q: %w", raw, err)
		}
		fmt.Fprintf(os.Stdout, "query %s => %d\n", raw, c.RangeQuery(bounds))
	}

	if dotPath != "" {
		w := os.Stdout
		if dotPath != "-" {
			f, err := os.Create(dotPath)
			if err != nil {
				return fmt.Errorf("opening --dot output: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := c.PrintDot(w); err != nil {
			return fmt.Errorf("writing dot output: %w", err)
		}
	}

	return nil
}

// parsePoint parses "summary:c0,c1,..." into an integer summary and an
// address.
func parsePoint(raw string) (int, []int, error) {
	head, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, nil, fmt.Errorf("expected summary:coord,coord,...")
	}
	summary, err := strconv.Atoi(head)
	if err != nil {
		return 0, nil, fmt.Errorf("summary %q: %w", head, err)
	}
	coords := strings.Split(rest, ",")
	address := make([]int, len(coords))
	for i, s := range coords {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, nil, fmt.Errorf("coordinate %q: %w", s, err)
		}
		address[i] = v
	}
	return summary, address, nil
}

// parseQuery parses "lo-hi,lo-hi,..." into per-dimension bounds.
func parseQuery(raw string) ([][2]int, error) {
	parts := strings.Split(raw, ",")
	bounds := make([][2]int, len(parts))
	for i, p := range parts {
		lo, hi, ok := strings.Cut(p, "-")
		if !ok {
			return nil, fmt.Errorf("range %q: expected lo-hi", p)
		}
		loV, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("lo %q: %w", lo, err)
		}
		hiV, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("hi %q: %w", hi, err)
		}
		bounds[i] = [2]int{loV, hiV}
	}
	return bounds, nil
}
