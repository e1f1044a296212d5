//go:build !nogpu

package gpu

// Registers gg's GPU accelerator. Shapes that it cannot handle, and
// every shape if no adapter is found, are rasterized on the CPU.
import _ "github.com/gogpu/gg/gpu"
