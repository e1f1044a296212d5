// Package protocol defines the types necessary for unmarshalling a
// protocol-specification XML file.
package protocol

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
)

type Protocol struct {
	Name      string `xml:"name,attr"`
	Copyright string `xml:"copyright"`

	Interfaces []Interface `xml:"interface"`
}

type Interface struct {
	Name        string      `xml:"name,attr"`
	Version     int         `xml:"version,attr"`
	Description Description `xml:"description"`

	Requests []Op   `xml:"request"`
	Events   []Op   `xml:"event"`
	Enums    []Enum `xml:"enum"`
}

type Description struct {
	Summary string `xml:"summary,attr"`
	Full    string `xml:",chardata"`
}

type Op struct {
	Name        string      `xml:"name,attr"`
	Type        string      `xml:"type,attr"`
	Since       int         `xml:"since,attr"`
	Description Description `xml:"description"`

	Args []Arg `xml:"arg"`
}

type Arg struct {
	Name    string `xml:"name,attr"`
	Summary string `xml:"summary,attr"`

	AllowNull bool   `xml:"allow-null,attr"`
	Enum      string `xml:"enum,attr"`

	Type      string `xml:"type,attr"`
	Interface string `xml:"interface,attr"`
	Version   int    `xml:"version,attr"`
}

type Enum struct {
	Name        string      `xml:"name,attr"`
	Bitfield    bool        `xml:"bitfield,attr"`
	Description Description `xml:"description"`

	Entries []Entry `xml:"entry"`
}

type Entry struct {
	Name    string `xml:"name,attr"`
	Summary string `xml:"summary,attr"`
	Value   string `xml:"value,attr"`
}

func (e Entry) Int() (int, error) {
	v, err := strconv.ParseInt(e.Value, 0, 0)
	return int(v), err
}

// Load decodes a protocol XML file from r.
func Load(r io.Reader) (proto Protocol, err error) {
	d := xml.NewDecoder(r)
	err = d.Decode(&proto)
	return proto, err
}

// LoadFile decodes the protocol XML file at path.
func LoadFile(path string) (proto Protocol, err error) {
	file, err := os.Open(path)
	if err != nil {
		return proto, err
	}
	defer file.Close()

	return Load(file)
}

// Interface returns the interface with the given name.
func (p Protocol) Interface(name string) (Interface, bool) {
	for _, i := range p.Interfaces {
		if i.Name == name {
			return i, true
		}
	}
	return Interface{}, false
}

// Request returns the opcode of the named request, or -1 if there is
// no such request.
func (i Interface) Request(name string) int {
	return opcode(i.Requests, name)
}

// Event returns the opcode of the named event, or -1 if there is no
// such event.
func (i Interface) Event(name string) int {
	return opcode(i.Events, name)
}

// Enum returns the named enum.
func (i Interface) Enum(name string) (Enum, bool) {
	for _, e := range i.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return Enum{}, false
}

func opcode(ops []Op, name string) int {
	for i, op := range ops {
		if op.Name == name {
			return i
		}
	}
	return -1
}
