package provider

import (
	"context"
)

// Source is an interface for getting rate data from external sources. Source takes care of receiving
// the payload, decoding it and giving back the rate records in display order
//
//go:generate mockgen -source source.go -destination mock_source.go -package provider
type Source interface {
	// FetchLatest obtains the latest rate records
	FetchLatest(ctx context.Context) ([]Rate, error)

	// Name of the source used in logs and reports
	Name() string
}
