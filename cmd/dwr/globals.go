package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	wl "deedles.dev/dwr/client"
	"deedles.dev/dwr/layershell"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "List the globals advertised by the compositor",
	Long: `List every global that the compositor advertises, followed by the
current mode of each output. The globals that dwr requires are marked.`,
	Args: cobra.NoArgs,
	RunE: runGlobals,
}

func init() {
	rootCmd.AddCommand(globalsCmd)
}

type outputInfo struct {
	name, description string
	make, model       string
	width, height     int32
	refresh           int32
	scale             int32
}

func required(inter wl.Interface) bool {
	return wl.IsCompositor(inter) || wl.IsShm(inter) || layershell.IsShell(inter)
}

func runGlobals(cmd *cobra.Command, args []string) error {
	timeout, err := cfg.ConnectTimeoutDuration()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	display, err := wl.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial display: %w", err)
	}
	defer display.Close()
	display.Error = func(perr wl.ProtocolError) {
		logger.Error("protocol error", "object", perr.Object, "code", perr.Code, "message", perr.Message)
	}

	registry := display.GetRegistry()
	err = display.RoundTrip(ctx)
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}

	globals := registry.Globals()
	var outputs []*outputInfo
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		if !wl.IsOutput(globals[name]) {
			continue
		}

		info := outputInfo{scale: 1}
		outputs = append(outputs, &info)

		out := wl.BindOutput(display, name)
		out.Geometry = func(x, y, pw, ph, subpixel int32, make, model string, transform wl.OutputTransform) {
			info.make, info.model = make, model
		}
		out.Mode = func(flags wl.OutputMode, w, h, refresh int32) {
			if flags&wl.OutputModeCurrent != 0 {
				info.width, info.height, info.refresh = w, h, refresh
			}
		}
		out.Scale = func(factor int32) { info.scale = factor }
		out.Name = func(v string) { info.name = v }
		out.Description = func(v string) { info.description = v }
	}

	err = display.RoundTrip(ctx)
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tINTERFACE\tVERSION\t")
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		inter := globals[name]
		mark := ""
		if required(inter) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", name, inter.Name, inter.Version, mark)
	}
	tw.Flush()

	for _, info := range outputs {
		fmt.Printf(
			"\n%v: %vx%v@%vHz, scale %v\n  %v %v\n  %v\n",
			info.name,
			info.width,
			info.height,
			humanize.FtoaWithDigits(float64(info.refresh)/1000, 3),
			info.scale,
			info.make,
			info.model,
			info.description,
		)
	}

	return nil
}
