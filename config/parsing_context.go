package config

import (
	"context"
	"io"

	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/gruntwork-io/fpack/pkg/log"
)

// ParsingContext carries what every spec parsing function needs.
type ParsingContext struct {
	context.Context

	Logger log.Logger

	// `ParserOptions` is used to configure hcl Parser.
	ParserOptions []hclparse.Option
}

func NewParsingContext(ctx context.Context, logger log.Logger) *ParsingContext {
	return &ParsingContext{
		Context:       ctx,
		Logger:        logger,
		ParserOptions: DefaultParserOptions(logger),
	}
}

func (ctx ParsingContext) WithParseOption(parserOptions []hclparse.Option) *ParsingContext {
	ctx.ParserOptions = parserOptions
	return &ctx
}

// WithDiagnosticsWriter returns a copy of the context writing parse diagnostics to writer.
func (ctx ParsingContext) WithDiagnosticsWriter(writer io.Writer, disableColor bool) *ParsingContext {
	ctx.ParserOptions = append(append([]hclparse.Option{}, ctx.ParserOptions...), hclparse.WithDiagnosticsWriter(writer, disableColor))
	return &ctx
}

// DefaultParserOptions returns the parser options used unless the caller replaces them.
func DefaultParserOptions(logger log.Logger) []hclparse.Option {
	return []hclparse.Option{hclparse.WithLogger(logger)}
}

func (ctx *ParsingContext) parseFile(path string) (*hclparse.File, error) {
	return hclparse.NewParser(ctx.ParserOptions...).ParseFile(path)
}

func (ctx *ParsingContext) parseBytes(content []byte, path string) (*hclparse.File, error) {
	return hclparse.NewParser(ctx.ParserOptions...).Parse(content, path)
}
