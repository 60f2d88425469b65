//go:build tools
// +build tools

// Package tools records the development tools this repository expects.
// They are run with `go run` or installed with `go install` and are not imported by the service.
package tools

// mockgen - regenerates internal/mocks from the ports in internal/core
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock/mockgen@v0.6.0
//
// Air - live reload while working on cmd/hiring-pipeline
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
