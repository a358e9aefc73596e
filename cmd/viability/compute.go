package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

type computeOptions struct {
	requestPath string
	price       float64
	offline     bool
}

func computeCmd(root *rootOptions) *cobra.Command {
	opts := &computeOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the full viability of a request file and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.Context(), root, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.requestPath, "request", "r", "", "request file (.json, .yaml or .yml)")
	cmd.Flags().Float64Var(&opts.price, "price", 0, "BTC price in BRL; skips the live quote")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use the configured fallback price instead of the live quote")
	_ = cmd.MarkFlagRequired("request")

	return cmd
}

func runCompute(ctx context.Context, root *rootOptions, opts *computeOptions, stdout, stderr io.Writer) error {
	if opts.price < 0 {
		return fmt.Errorf("--price must not be negative, got %g", opts.price)
	}

	req, err := readRequest(opts.requestPath)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig(root.configPath, stderr)
	if err != nil {
		return err
	}

	var quoter pricefeed.Quoter
	switch {
	case opts.price > 0:
		quoter = pricefeed.Static{PriceBRL: opts.price}
	case opts.offline:
		quoter = pricefeed.Static{PriceBRL: cfg.PriceFeed.FallbackBRL}
	default:
		quoter = newQuoter(cfg, logger, nil)
	}

	svc, err := newService(cfg, quoter, logger, nil)
	if err != nil {
		return fmt.Errorf("load reference catalog: %w", err)
	}

	res, err := svc.ComputeFullViability(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(stdout, res)
}

// readRequest decodes a request file, choosing YAML or JSON by extension.
func readRequest(path string) (viability.ViabilityRequest, error) {
	var req viability.ViabilityRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return req, fmt.Errorf("request file %s is empty", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("parse request %s: %w", path, err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parse request %s: %w", path, err)
		}
	default:
		return req, fmt.Errorf("unsupported request file extension %q", ext)
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
