package commands

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/mgutz/ansi"
	"golang.org/x/term"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
)

const indentUnit = "  "

// Printer writes the plain text reports of the commands. The first write error is kept and
// returned by Err.
type Printer struct {
	w   io.Writer
	err error

	headerColorizer  func(string) string
	featureColorizer func(string) string
}

func NewPrinter(w io.Writer) *Printer {
	plain := func(s string) string { return s }

	return &Printer{w: w, headerColorizer: plain, featureColorizer: plain}
}

// NewPrinterForOptions returns a printer writing to the output of opts, colored when the output is a
// terminal and colors are not disabled.
func NewPrinterForOptions(opts *options.ProvisioningOptions) *Printer {
	p := NewPrinter(opts.Writer)

	if file, ok := opts.Writer.(*os.File); ok && !opts.DisableLogColors && term.IsTerminal(int(file.Fd())) {
		p.headerColorizer = ansi.ColorFunc("green+bh")
		p.featureColorizer = ansi.ColorFunc("blue+h")
	}

	return p
}

// Printf writes a line indented by the given depth.
func (p *Printer) Printf(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, strings.Repeat(indentUnit, depth)+format+"\n", args...)
}

// FeaturePack writes a feature-pack with its installed packages.
func (p *Printer) FeaturePack(gav coords.Gav, packages []string) {
	p.Printf(0, "%s", p.headerColorizer("feature-pack "+gav.String()))

	for _, name := range packages {
		p.Printf(1, "package %s", name)
	}
}

// Config writes the header of a config followed by its sorted properties.
func (p *Printer) Config(id spec.ConfigID, props map[string]string) {
	p.Printf(0, "%s", p.headerColorizer("config "+id.String()))

	for _, name := range slices.Sorted(maps.Keys(props)) {
		p.Printf(1, "set %s=%s", name, props[name])
	}
}

// Feature writes a feature as its spec id followed by its params, bracketed by the batch markers.
func (p *Printer) Feature(depth int, specID spec.ResolvedSpecID, params []spec.Param, startsBatch, endsBatch bool) {
	if startsBatch {
		p.Printf(depth, "begin-batch")
	}

	line := specID.String()
	for _, param := range params {
		line += " " + param.Name + "=" + param.Value
	}

	p.Printf(depth, "%s", p.featureColorizer(line))

	if endsBatch {
		p.Printf(depth, "end-batch")
	}
}

func (p *Printer) Err() error {
	return errors.New(p.err)
}
