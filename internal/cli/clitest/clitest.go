// Package clitest builds command contexts backed by the memory store.
package clitest

import (
	"bytes"
	"testing"
	"time"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/clock"
	"github.com/tandrum/tandrum/internal/keyring"
	"github.com/tandrum/tandrum/internal/progression"
	"github.com/tandrum/tandrum/internal/storage/memory"
)

// Start is the fake clock's initial time, a Monday
var Start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type Env struct {
	Ctx   *cli.Context
	Out   *bytes.Buffer
	Clock *clock.FakeClock
	Store *memory.Store
}

// New returns an environment with an empty store and deterministic rolls.
func New(t testing.TB) *Env {
	t.Helper()
	store := memory.NewStore()
	clk := clock.Fake(Start)
	var out bytes.Buffer
	engine := progression.New(store,
		progression.WithClock(clk),
		progression.WithSeed(7),
		progression.WithLocation(time.UTC),
	)
	return &Env{
		Ctx: &cli.Context{
			Store:  store,
			Engine: engine,
			Vault:  keyring.Default(),
			Out:    &out,
		},
		Out:   &out,
		Clock: clk,
		Store: store,
	}
}

// Output returns everything written so far and resets the buffer.
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
