// Command flakeenc encodes a WAV file to FLAC, modeled after the flake
// reference encoder's command line: a compression preset plus individual
// overrides for block size, prediction, order selection, partitioning,
// stereo decorrelation and variable block size.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vantablac/flake"
	"github.com/vantablac/flake/internal/bufseekio"
)

// presetFlagPattern recognizes the flake CLI's historical "-0".."-12"
// compression-level shorthand, which pflag cannot parse as an ordinary flag
// since it has no name.
var presetFlagPattern = regexp.MustCompile(`^-(1[0-2]|[0-9])$`)

// rewritePresetFlags rewrites any bare "-N" compression-level shorthand in
// args into "--level N", which pflag can parse normally. Every match is
// rewritten, so when several are given the last one wins.
func rewritePresetFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if m := presetFlagPattern.FindStringSubmatch(a); m != nil {
			out = append(out, "--level", m[1])
			continue
		}
		out = append(out, a)
	}
	return out
}

type options struct {
	output       string
	padding      int
	level        int
	blockSize    int
	predType     int
	orders       string
	orderMethod  int
	partOrders   string
	stereo       int
	vbs          int
	quiet        bool
}

func main() {
	opts := &options{level: 5, predType: -1, stereo: -1, vbs: -1}

	cmd := &cobra.Command{
		Use:   "flakeenc [options] <input.wav>",
		Short: "Encode a WAV file to FLAC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output FLAC path (default: input with .flac extension)")
	cmd.Flags().IntVarP(&opts.padding, "padding", "p", 0, "PADDING block size in bytes")
	cmd.Flags().IntVarP(&opts.level, "level", "c", opts.level, "compression level 0..12")
	cmd.Flags().IntVarP(&opts.blockSize, "block", "b", 0, "block size override (0: use preset default)")
	cmd.Flags().IntVarP(&opts.predType, "prediction", "t", opts.predType, "prediction type: 0=fixed, 1=levinson (-1: use preset)")
	cmd.Flags().StringVarP(&opts.orders, "order", "l", "", "prediction order min[,max] (empty: use preset)")
	cmd.Flags().IntVarP(&opts.orderMethod, "order-method", "m", -1, "order selection method 0..6 (-1: use preset)")
	cmd.Flags().StringVarP(&opts.partOrders, "partition-order", "r", "", "partition order min[,max] (empty: use preset)")
	cmd.Flags().IntVarP(&opts.stereo, "stereo", "s", opts.stereo, "stereo method: 0=independent, 1=estimate (-1: use preset)")
	cmd.Flags().IntVarP(&opts.vbs, "vbs", "v", opts.vbs, "variable block size: 0=off, 1=on (-1: use preset)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output")

	cmd.SetArgs(rewritePresetFlags(os.Args[1:]))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "flakeenc: %+v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string, opts *options) error {
	r, err := os.Open(inputPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	dec := wav.NewDecoder(bufseekio.NewReadSeeker(r))
	if !dec.IsValidFile() {
		return errors.Errorf("invalid WAV file %q", inputPath)
	}
	if err := dec.FwdToPCM(); err != nil {
		return errors.WithStack(err)
	}
	sampleRate, channels, bps := int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth)

	outputPath := opts.output
	if outputPath == "" {
		outputPath = pathutil.TrimExt(inputPath) + ".flac"
	}
	w, err := os.Create(outputPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	params, err := buildParams(opts)
	if err != nil {
		return err
	}

	enc, err := flake.NewEncoder(w, params, uint32(sampleRate), channels, uint8(bps))
	if err != nil {
		return errors.WithStack(err)
	}
	defer enc.Close()

	src := flake.NewBufferSource(dec.PCMBuffer, sampleRate, channels, bps)

	for blockNum := 0; ; blockNum++ {
		block, err := src.NextBlock(params.BlockSize)
		if err != nil {
			return errors.WithStack(err)
		}
		if len(block[0]) == 0 {
			break
		}
		if !opts.quiet {
			fmt.Fprintf(os.Stderr, "\rblock %d (%d samples)", blockNum, len(block[0]))
		}
		if err := enc.EncodeBlock(block); err != nil {
			return errors.WithStack(err)
		}
		if len(block[0]) < params.BlockSize {
			break
		}
	}
	if !opts.quiet {
		fmt.Fprintln(os.Stderr)
	}
	return nil
}

func buildParams(opts *options) (*flake.Params, error) {
	var p flake.Params
	if err := flake.SetDefaults(&p, opts.level); err != nil {
		return nil, errors.WithStack(err)
	}

	if opts.blockSize > 0 {
		p.BlockSize = opts.blockSize
	}
	if opts.predType == 0 {
		p.PredictionType = flake.PredictionFixed
	} else if opts.predType == 1 {
		p.PredictionType = flake.PredictionLevinson
	}
	if opts.orderMethod >= 0 {
		p.OrderMethod = flake.OrderMethod(opts.orderMethod)
	}
	if opts.stereo >= 0 {
		p.StereoMethod = flake.StereoMethod(opts.stereo)
	}
	if opts.vbs >= 0 {
		p.VariableBlockSize = opts.vbs != 0
	}
	if opts.padding > 0 {
		p.PaddingSize = opts.padding
	}
	if opts.orders != "" {
		min, max, err := parseRange(opts.orders)
		if err != nil {
			return nil, errors.Wrap(err, "prediction order")
		}
		p.MinPredOrder, p.MaxPredOrder = min, max
	}
	if opts.partOrders != "" {
		min, max, err := parseRange(opts.partOrders)
		if err != nil {
			return nil, errors.Wrap(err, "partition order")
		}
		p.MinPartOrder, p.MaxPartOrder = min, max
	}
	return &p, nil
}

// parseRange parses a "min[,max]" order specification; a bare "min" sets
// both bounds to the same value.
func parseRange(s string) (min, max int, err error) {
	parts := strings.SplitN(s, ",", 2)
	min, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Errorf("invalid range %q", s)
	}
	max = min
	if len(parts) == 2 {
		max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, errors.Errorf("invalid range %q", s)
		}
	}
	return min, max, nil
}
