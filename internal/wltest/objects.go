package wltest

import (
	"fmt"

	"deedles.dev/dwr/wire"
)

var requestNames = map[string][]string{
	"wl_display":            {"sync", "get_registry"},
	"wl_registry":           {"bind"},
	"wl_callback":           {},
	"wl_compositor":         {"create_surface", "create_region"},
	"wl_shm":                {"create_pool", "release"},
	"wl_shm_pool":           {"create_buffer", "destroy", "resize"},
	"wl_buffer":             {"destroy"},
	"wl_surface":            {"destroy", "attach", "damage", "frame", "set_opaque_region", "set_input_region", "commit", "set_buffer_transform", "set_buffer_scale", "damage_buffer", "offset"},
	"wl_output":             {"release"},
	"wl_seat":               {"get_pointer", "get_keyboard", "get_touch", "release"},
	"zwlr_layer_shell_v1":   {"get_layer_surface", "destroy"},
	"zwlr_layer_surface_v1": {"set_size", "set_anchor", "set_exclusive_zone", "set_margin", "set_keyboard_interactivity", "get_popup", "ack_configure", "destroy", "set_layer"},
}

type object struct {
	id     uint32
	iface  string
	server *Server
}

func (obj *object) ID() uint32 {
	return obj.id
}

func (obj *object) SetID(id uint32) {
	obj.id = id
}

func (obj *object) Delete() {}

func (obj *object) MethodName(op uint16) string {
	names := requestNames[obj.iface]
	if int(op) < len(names) {
		return names[op]
	}
	return "unknown"
}

func (obj *object) String() string {
	return fmt.Sprintf("%v@%v", obj.iface, obj.id)
}

func (obj *object) unknown(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: obj.iface, Type: "request", Op: msg.Op()}
}

// begin records the request in msg once its arguments have been read.
func (obj *object) begin(msg *wire.MessageBuffer, args ...any) error {
	if err := msg.Err(); err != nil {
		return err
	}
	obj.server.record(*obj, obj.MethodName(msg.Op()), args...)
	return nil
}

type display struct {
	object
}

func (d *display) Dispatch(msg *wire.MessageBuffer) error {
	s := d.server

	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		if err := d.begin(msg, id); err != nil {
			return err
		}

		cb := callback{object: s.object(id, "wl_callback")}
		s.add(&cb)
		cb.done(s.nextSerial())

	case 1:
		id := msg.ReadUint()
		if err := d.begin(msg, id); err != nil {
			return err
		}

		reg := registry{object: s.object(id, "wl_registry")}
		s.add(&reg)
		for _, g := range s.globals {
			s.send(&reg, 0, "global", g.name, g.iface, g.version)
		}

	default:
		return d.unknown(msg)
	}

	return nil
}

type registry struct {
	object
}

func (r *registry) Dispatch(msg *wire.MessageBuffer) error {
	s := r.server
	if msg.Op() != 0 {
		return r.unknown(msg)
	}

	name := msg.ReadUint()
	id := msg.ReadNewID()
	if err := r.begin(msg, name, id.Interface, id.Version, id.ID); err != nil {
		return err
	}

	var g *global
	for i := range s.globals {
		if s.globals[i].name == name {
			g = &s.globals[i]
		}
	}
	if (g == nil) || (g.iface != id.Interface) || (id.Version > g.version) {
		s.postError(r.id, 0, fmt.Sprintf("invalid bind of %v v%v to global %v", id.Interface, id.Version, name))
		return nil
	}

	obj := s.object(id.ID, id.Interface)
	switch id.Interface {
	case "wl_compositor":
		s.add(&compositor{object: obj})

	case "wl_shm":
		sh := shm{object: obj}
		s.add(&sh)
		s.send(&sh, 0, "format", uint32(0))
		s.send(&sh, 0, "format", uint32(1))

	case "zwlr_layer_shell_v1":
		s.add(&layerShell{object: obj})

	case "wl_output":
		out := output{object: obj}
		s.add(&out)
		s.send(&out, 0, "geometry", int32(0), int32(0), int32(600), int32(340), int32(0), "dwr", "test", int32(0))
		s.send(&out, 1, "mode", uint32(3), int32(OutputWidth), int32(OutputHeight), int32(60000))
		if id.Version >= 2 {
			s.send(&out, 3, "scale", int32(1))
		}
		if id.Version >= 4 {
			s.send(&out, 4, "name", "TEST-1")
			s.send(&out, 5, "description", "Fake output")
		}
		if id.Version >= 2 {
			s.send(&out, 2, "done")
		}

	case "wl_seat":
		st := seat{object: obj}
		s.add(&st)
		s.send(&st, 0, "capabilities", uint32(3))
		if id.Version >= 2 {
			s.send(&st, 1, "name", "seat0")
		}
	}

	return nil
}

type callback struct {
	object
}

func (cb *callback) done(data uint32) {
	cb.server.send(cb, 0, "done", data)
	cb.server.destroy(cb.id)
}

func (cb *callback) Dispatch(msg *wire.MessageBuffer) error {
	return cb.unknown(msg)
}

type compositor struct {
	object
}

func (c *compositor) Dispatch(msg *wire.MessageBuffer) error {
	s := c.server

	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		if err := c.begin(msg, id); err != nil {
			return err
		}
		s.add(&surface{object: s.object(id, "wl_surface")})

	case 1:
		id := msg.ReadUint()
		if err := c.begin(msg, id); err != nil {
			return err
		}
		s.add(&region{object: s.object(id, "wl_region")})

	default:
		return c.unknown(msg)
	}

	return nil
}

type region struct {
	object
}

func (r *region) Dispatch(msg *wire.MessageBuffer) error {
	// Regions are accepted and ignored apart from destroy.
	if msg.Op() == 0 {
		r.server.destroy(r.id)
	}
	return nil
}

type shm struct {
	object
}

func (shm *shm) Dispatch(msg *wire.MessageBuffer) error {
	s := shm.server

	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		file := msg.ReadFile()
		size := msg.ReadInt()
		if err := shm.begin(msg, id, size); err != nil {
			return err
		}

		// The pixels are never read.
		file.Close()
		s.add(&shmPool{object: s.object(id, "wl_shm_pool"), size: size})

	case 1:
		if err := shm.begin(msg); err != nil {
			return err
		}
		s.destroy(shm.id)

	default:
		return shm.unknown(msg)
	}

	return nil
}

type shmPool struct {
	object
	size int32
}

func (pool *shmPool) Dispatch(msg *wire.MessageBuffer) error {
	s := pool.server

	switch msg.Op() {
	case 0:
		id := msg.ReadUint()
		offset := msg.ReadInt()
		w, h := msg.ReadInt(), msg.ReadInt()
		stride := msg.ReadInt()
		format := msg.ReadUint()
		if err := pool.begin(msg, id, offset, w, h, stride, format); err != nil {
			return err
		}

		if offset+stride*h > pool.size {
			s.postError(pool.id, 2, "buffer does not fit in pool")
			return nil
		}
		s.add(&buffer{object: s.object(id, "wl_buffer"), width: w, height: h})

	case 1:
		if err := pool.begin(msg); err != nil {
			return err
		}
		s.destroy(pool.id)

	case 2:
		size := msg.ReadInt()
		if err := pool.begin(msg, size); err != nil {
			return err
		}
		if size < pool.size {
			s.postError(pool.id, 2, "pool cannot shrink")
			return nil
		}
		pool.size = size

	default:
		return pool.unknown(msg)
	}

	return nil
}

type buffer struct {
	object
	width, height int32
	destroyed     bool
}

func (buf *buffer) release() {
	if buf.destroyed {
		return
	}
	buf.server.send(buf, 0, "release")
}

func (buf *buffer) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return buf.unknown(msg)
	}
	if err := buf.begin(msg); err != nil {
		return err
	}
	buf.destroyed = true
	buf.server.destroy(buf.id)
	return nil
}

type output struct {
	object
}

func (out *output) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 0 {
		return out.unknown(msg)
	}
	if err := out.begin(msg); err != nil {
		return err
	}
	out.server.destroy(out.id)
	return nil
}

type seat struct {
	object
}

func (seat *seat) Dispatch(msg *wire.MessageBuffer) error {
	if msg.Op() != 3 {
		// Input devices are not implemented.
		return seat.unknown(msg)
	}
	if err := seat.begin(msg); err != nil {
		return err
	}
	seat.server.destroy(seat.id)
	return nil
}
