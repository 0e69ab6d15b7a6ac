// Package hclparse reads the HCL descriptors of feature-packs, packages, feature specs, feature groups
// and installations.
//
// Diagnostics of a descriptor are written once, through the writer set with WithDiagnosticsWriter,
// and returned as the error of the parse or decode call that produced them.
package hclparse

import (
	"io"
	"os"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"golang.org/x/term"
)

// defaultDiagnosticsWidth wraps diagnostics written to anything but a terminal.
const defaultDiagnosticsWidth = 80

// Parser parses descriptors and keeps their sources for diagnostics rendering.
type Parser struct {
	sources *hclparse.Parser
	logger  log.Logger
	report  func(hcl.Diagnostics) error
}

func NewParser(opts ...Option) *Parser {
	parser := &Parser{
		sources: hclparse.NewParser(),
		logger:  log.Default(),
	}

	for _, opt := range opts {
		opt(parser)
	}

	return parser
}

// ParseFile reads and parses the descriptor at path.
func (parser *Parser) ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err)
	}

	return parser.Parse(content, path)
}

// Parse parses descriptor content. path names the descriptor in diagnostics and errors.
func (parser *Parser) Parse(content []byte, path string) (file *File, err error) {
	// hcl and cty panic on some malformed input
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New(PanicWhileParsingConfigError{RecoveredValue: recovered, ConfigFile: path})
		}
	}()

	hclFile, diags := parser.sources.ParseHCL(content, path)
	if err := parser.check(diags); err != nil {
		parser.logger.Debugf("Descriptor %s does not parse: %d error(s)", path, len(diags.Errs()))

		return nil, err
	}

	return &File{File: hclFile, ConfigPath: path, parser: parser}, nil
}

// diagnosticsWriter renders diagnostics with the sources of the parsed descriptors. Output is colored
// and wrapped to the terminal width when writer is a terminal.
func (parser *Parser) diagnosticsWriter(writer io.Writer, disableColor bool) hcl.DiagnosticWriter {
	var (
		color = false
		width = defaultDiagnosticsWidth
	)

	if file, ok := writer.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		color = !disableColor

		if termWidth, _, err := term.GetSize(int(file.Fd())); err == nil {
			width = termWidth
		}
	}

	return hcl.NewDiagnosticTextWriter(writer, parser.sources.Files(), uint(width), color)
}

// check reports diagnostics and returns them as an error when one of them is an error.
func (parser *Parser) check(diags hcl.Diagnostics) error {
	if len(diags) == 0 {
		return nil
	}

	if parser.report != nil {
		if err := parser.report(diags); err != nil {
			return err
		}
	}

	if !diags.HasErrors() {
		return nil
	}

	return errors.New(diags)
}
