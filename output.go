package dwr

import (
	"fmt"
	"image"

	wl "deedles.dev/dwr/client"
)

// Output describes a monitor advertised by the compositor.
type Output struct {
	Name        string
	Description string
	Make, Model string
	Width       int32
	Height      int32
	Refresh     int32 // mHz
	Scale       int32

	global uint32
	proxy  *wl.Output
}

// Size returns the size of the output's current mode.
func (out Output) Size() image.Point {
	return image.Pt(int(out.Width), int(out.Height))
}

func (out Output) String() string {
	name := out.Name
	if name == "" {
		name = fmt.Sprintf("output %v", out.global)
	}
	return fmt.Sprintf("%v (%vx%v@%.3gHz)", name, out.Width, out.Height, float64(out.Refresh)/1000)
}

func (c *Client) bindOutput(name uint32) {
	out := Output{global: name, Scale: 1}
	out.proxy = wl.BindOutput(c.display, name)
	c.outputs = append(c.outputs, &out)

	out.proxy.Geometry = func(x, y, pw, ph, subpixel int32, make, model string, transform wl.OutputTransform) {
		out.Make, out.Model = make, model
	}
	out.proxy.Mode = func(flags wl.OutputMode, w, h, refresh int32) {
		if flags&wl.OutputModeCurrent != 0 {
			out.Width, out.Height, out.Refresh = w, h, refresh
		}
	}
	out.proxy.Scale = func(factor int32) { out.Scale = factor }
	out.proxy.Name = func(v string) { out.Name = v }
	out.proxy.Description = func(v string) { out.Description = v }
	out.proxy.Done = func() {
		c.logger.Debug("output changed", "output", out.String())
	}
}

func (c *Client) removeOutput(name uint32) {
	for i, out := range c.outputs {
		if out.global == name {
			out.proxy.Release()
			c.outputs = append(c.outputs[:i], c.outputs[i+1:]...)
			c.logger.Info("output removed", "output", out.String())
			return
		}
	}
}

func (c *Client) findOutput(name string) *wl.Output {
	if name == "" {
		return nil
	}
	for _, out := range c.outputs {
		if out.Name == name {
			return out.proxy
		}
	}

	c.logger.Warn("output not found, letting the compositor choose", "output", name)
	return nil
}

// Outputs returns the outputs that the compositor currently
// advertises.
func (c *Client) Outputs() []Output {
	outputs := make([]Output, 0, len(c.outputs))
	for _, out := range c.outputs {
		outputs = append(outputs, *out)
	}
	return outputs
}
