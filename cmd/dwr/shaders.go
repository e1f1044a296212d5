package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"deedles.dev/dwr/gpu"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var shadersOpts struct {
	out string
}

var shadersCmd = &cobra.Command{
	Use:   "shaders",
	Short: "Compile the shader programs",
	Long: `Compile the built-in shader programs the same way that a client does
on startup and list them along with the rendering backend. With --out,
the SPIR-V of every program is written to DIR/NAME.spv.`,
	Args: cobra.NoArgs,
	RunE: runShaders,
}

func init() {
	rootCmd.AddCommand(shadersCmd)

	shadersCmd.Flags().StringVarP(&shadersOpts.out, "out", "o", "", "Directory to write SPIR-V modules to")
}

func runShaders(cmd *cobra.Command, args []string) error {
	pipeline, err := gpu.NewPipeline(logger, nil)
	if err != nil {
		return err
	}

	err = listPrograms(os.Stdout, pipeline)
	if err != nil {
		return err
	}

	if shadersOpts.out == "" {
		return nil
	}
	return exportPrograms(shadersOpts.out, pipeline)
}

func listPrograms(w io.Writer, pipeline *gpu.Pipeline) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "backend\t%v\t\n", gpu.Backend())
	for _, name := range pipeline.Programs() {
		prog, _ := pipeline.Program(name)
		fmt.Fprintf(tw, "%v\t%v\t\n", name, humanize.IBytes(uint64(4*len(prog.SPIRV))))
	}
	return tw.Flush()
}

func exportPrograms(dir string, pipeline *gpu.Pipeline) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	for _, name := range pipeline.Programs() {
		prog, _ := pipeline.Program(name)
		err := writeProgram(filepath.Join(dir, name+".spv"), prog)
		if err != nil {
			return fmt.Errorf("export %v: %w", name, err)
		}
	}
	return nil
}

func writeProgram(path string, prog *gpu.Program) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	err = prog.WriteSPIRV(file)
	if err != nil {
		return err
	}
	return file.Close()
}
