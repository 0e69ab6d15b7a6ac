package hclparse

import (
	"io"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/hashicorp/hcl/v2"
)

type Option func(*Parser)

func WithLogger(logger log.Logger) Option {
	return func(parser *Parser) {
		parser.logger = logger
	}
}

// WithDiagnosticsWriter prints the diagnostics of descriptors that fail to parse or decode.
func WithDiagnosticsWriter(writer io.Writer, disableColor bool) Option {
	return func(parser *Parser) {
		diagsWriter := parser.diagnosticsWriter(writer, disableColor)

		parser.report = func(diags hcl.Diagnostics) error {
			if !diags.HasErrors() {
				return nil
			}

			return errors.New(diagsWriter.WriteDiagnostics(diags))
		}
	}
}
