package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode"

	"deedles.dev/dwr/internal/xslices"
	"deedles.dev/dwr/layershell"
	"deedles.dev/dwr/protocol"
	"github.com/spf13/cobra"
)

var protocolOpts struct {
	prefix string
}

var protocolCmd = &cobra.Command{
	Use:   "protocol [FILE]",
	Short: "Summarize a Wayland protocol XML file",
	Long: `Print the interfaces, requests, events, and enums of a protocol
XML file along with their opcodes and Go names. Without a file, the
wlr-layer-shell protocol that dwr implements is summarized.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProtocol,
}

func init() {
	rootCmd.AddCommand(protocolCmd)

	protocolCmd.Flags().StringVar(&protocolOpts.prefix, "prefix", "",
		"Interface name prefix to strip from Go names, such as zwlr_")
}

func runProtocol(cmd *cobra.Command, args []string) error {
	var proto protocol.Protocol
	var err error
	if len(args) == 0 {
		proto, err = protocol.Load(bytes.NewReader(layershell.ProtocolXML))
	} else {
		proto, err = protocol.LoadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("load protocol: %w", err)
	}

	return summarize(os.Stdout, proto, protocolOpts.prefix)
}

func summarize(w io.Writer, proto protocol.Protocol, prefix string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "protocol %v\n", proto.Name)
	for _, i := range proto.Interfaces {
		fmt.Fprintf(tw, "\n%v v%v\t%v\t\n", i.Name, i.Version, ident(i.Name, prefix))
		if i.Description.Summary != "" {
			fmt.Fprintf(tw, "  %v\t\t\n", i.Description.Summary)
		}

		for op, r := range i.Requests {
			fmt.Fprintf(tw, "  request %v %v\t%v\t\n", op, signature(r), camel(r.Name))
		}
		for op, e := range i.Events {
			fmt.Fprintf(tw, "  event %v %v\t%v\t\n", op, signature(e), camel(e.Name))
		}
		for _, e := range i.Enums {
			for _, entry := range e.Entries {
				v, err := entry.Int()
				if err != nil {
					return fmt.Errorf("%v.%v.%v: %w", i.Name, e.Name, entry.Name, err)
				}
				fmt.Fprintf(tw, "  enum %v.%v = %v\t%v\t\n", e.Name, entry.Name, v, ident(i.Name, prefix)+camel(e.Name)+camel(entry.Name))
			}
		}
	}

	return tw.Flush()
}

// signature formats an op's arguments. Arguments that create an
// object of a known interface are shown as return values.
func signature(op protocol.Op) string {
	rets, args := xslices.Partition(op.Args, isRet)

	var sb strings.Builder
	sb.WriteString(op.Name)
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.Name)
		sb.WriteByte(' ')
		sb.WriteString(arg.Type)
	}
	sb.WriteByte(')')

	if len(rets) > 0 {
		sb.WriteString(" -> ")
		for i, ret := range rets {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(ret.Interface)
		}
	}

	if op.Since > 1 {
		fmt.Fprintf(&sb, " since %v", op.Since)
	}
	if op.Type == "destructor" {
		sb.WriteString(" destructor")
	}
	return sb.String()
}

func ident(v, prefix string) string {
	v, _ = strings.CutPrefix(v, prefix)
	return camel(v)
}

func camel(v string) string {
	var buf strings.Builder
	buf.Grow(len(v))
	shift := true
	for _, c := range v {
		if c == '_' {
			shift = true
			continue
		}

		if shift {
			c = unicode.ToUpper(c)
		}
		buf.WriteRune(c)
		shift = false
	}
	return buf.String()
}

func isRet(arg protocol.Arg) bool {
	return (arg.Type == "new_id") && (arg.Interface != "")
}
