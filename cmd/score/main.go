// Command score prints the camel-cards total for a puzzle input.
//
//	score -input hands.txt -variant both
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"handscore/internal/service/game"
	"handscore/pkg/logger"

	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "puzzle input file (default stdin)")
	variantName := fs.String("variant", "both", "standard, joker-wild or both")
	detail := fs.Bool("detail", false, "print the ranked hands for every variant")
	plain := fs.Bool("plain", false, "disable colors and styling")
	verbose := fs.Bool("v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *plain {
		pterm.DisableStyling()
	}
	if *verbose {
		logger.InitLogger("debug")
		defer logger.Log.Sync()
	}

	variants, err := selectVariants(*variantName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	input, err := readInput(*inputPath, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	hands, err := game.ParseHands(string(input))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger.Log.Debug("parsed input", zap.Int("hands", len(hands)))

	for _, v := range variants {
		res := game.ScoreAll(hands, v)
		if *detail || v == game.VariantJokerWild {
			if err := printDetail(stdout, res); err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
		}
		fmt.Fprintf(stdout, "%s: %d\n", v, res.Total)
	}
	return 0
}

func selectVariants(name string) ([]game.Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "both", "all":
		return game.Variants, nil
	}
	v, err := game.ParseVariant(name)
	if err != nil {
		return nil, err
	}
	return []game.Variant{v}, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file %s not found", path)
	}
	return data, err
}

func printDetail(w io.Writer, res *game.Result) error {
	data := pterm.TableData{{"rank", "cards", "category", "bid", "score"}}
	for _, h := range res.Hands {
		data = append(data, []string{
			strconv.Itoa(h.Rank),
			h.Cards,
			h.Category.String(),
			strconv.FormatInt(h.Bid, 10),
			strconv.FormatInt(h.Score, 10),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n%s\n", pterm.Bold.Sprint(string(res.Variant)), table)
	return nil
}
