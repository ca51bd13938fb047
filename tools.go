//go:build tools
// +build tools

package ratesboard

import (
	_ "github.com/client9/misspell/cmd/misspell"
	_ "github.com/golang/mock/mockgen"
)
