// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on port interfaces, so every pipeline can be
// exercised in tests with in-memory fakes.
package services
