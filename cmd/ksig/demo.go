package main

import (
	"fmt"
	"io"

	"github.com/birdayz/ksignal"
	"github.com/spf13/cobra"
)

func newDemoCmd(root *rootOptions) *cobra.Command {
	var count, limit int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an in-memory pipeline and print its topology",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			g := ksignal.NewGraph(ksignal.WithLogr(newLogger(cmd, cfg)))
			return runDemo(cmd.OutOrStdout(), g, count, limit)
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "numbers to feed")
	cmd.Flags().IntVar(&limit, "limit", 3, "squares to keep")
	return cmd
}

// runDemo feeds 1..count through filter, map and limit stages and prints
// every square, the paired even/square snapshots and the final topology.
func runDemo(w io.Writer, g *ksignal.Graph, count, limit int) error {
	numbers := g.New(ksignal.Named("numbers"))
	evens := numbers.Filter(func(v any) bool { return v.(int)%2 == 0 })
	squares := evens.Map(func(v any) any {
		n := v.(int)
		return n * n
	}).Limit(limit)

	squares.Then(func(_ *ksignal.Signal, v any, _ ...any) error {
		_, err := fmt.Fprintf(w, "square %v\n", v)
		return err
	})
	g.All(map[string]any{"even": evens, "square": squares}).
		Then(func(_ *ksignal.Signal, v any, _ ...any) error {
			_, err := fmt.Fprintf(w, "pair %v\n", v)
			return err
		})

	for i := 1; i <= count; i++ {
		numbers.Put(i)
	}

	fmt.Fprintf(w, "\n%s", g.Describe())
	numbers.End()
	return g.Close()
}
