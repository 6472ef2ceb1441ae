// Package protocols generates training protocols, attendance sheets and
// consent forms from an application document.
//
// Generate covers the common case with the stock configuration. Front-ends
// that need their own templates, logging or archive handling use the
// protocol package directly.
package protocols

import (
	"context"

	"go.uber.org/zap"

	"github.com/aerissecure/protocols/protocol"
)

// Generate processes the application at sourcePath with the default
// configuration and returns the paths of the generated documents. Blank
// organization or contractNumber fall back to values parsed from the file
// name. An application without records yields no paths and no error.
func Generate(ctx context.Context, sourcePath, organization, contractNumber string) ([]string, error) {
	return GenerateWith(ctx, protocol.DefaultConfig(), zap.NewNop(), sourcePath, organization, contractNumber)
}

// GenerateWith is Generate with an explicit configuration and logger.
func GenerateWith(ctx context.Context, cfg protocol.Config, log *zap.Logger, sourcePath, organization, contractNumber string) ([]string, error) {
	b, err := protocol.New(cfg, log)
	if err != nil {
		return nil, err
	}
	res, err := b.Generate(ctx, protocol.Request{
		Source:       sourcePath,
		Organization: organization,
		Number:       contractNumber,
	})
	if err != nil {
		return nil, err
	}
	return res.Paths(), nil
}
