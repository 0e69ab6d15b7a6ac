package hclparse

import (
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// File is a parsed descriptor.
type File struct {
	*hcl.File
	ConfigPath string

	parser *Parser
}

// Decode decodes the whole descriptor into out.
func (file *File) Decode(out any, evalContext *hcl.EvalContext) error {
	return file.DecodeBody(file.Body, out, evalContext)
}

// DecodeBody decodes a nested body of the descriptor, such as the remaining body of a block.
func (file *File) DecodeBody(body hcl.Body, out any, evalContext *hcl.EvalContext) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New(PanicWhileParsingConfigError{RecoveredValue: recovered, ConfigFile: file.ConfigPath})
		}
	}()

	return file.parser.check(gohcl.DecodeBody(body, evalContext, out))
}
