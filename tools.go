//go:build tools

package lease

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/incu6us/goimports-reviser/v3"
	_ "mvdan.cc/gofumpt"
)
