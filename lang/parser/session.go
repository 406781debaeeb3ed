package parser

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Session is the state shared by all compilation units of one program:
// the partial type registry and the counter used to name invariants.
// Every unit parsed with the same session sees the same registry.
type Session struct {
	mu         sync.Mutex
	partials   *PartialRegistry
	invariants atomic.Int64
}

func NewSession() *Session {
	return &Session{partials: NewPartialRegistry()}
}

// NextInvariantName returns a program-wide unique name for an invariant.
// It is safe to call from concurrent parses.
func (s *Session) NextInvariantName() string {
	return fmt.Sprintf("invariant$%d", s.invariants.Add(1))
}

// Partials returns the registry. Callers that mutate it concurrently with
// parsing must hold the session lock through Merge and MergeFragments.
func (s *Session) Partials() *PartialRegistry {
	return s.partials
}

// Merge folds one fragment into the registry.
func (s *Session) Merge(f Fragment, diags *DiagnosticList) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partials.Merge(f.Scope, f.Node, diags)
}

// MergeFragments merges fragments in the order given, reporting conflicts
// to diags.
func (s *Session) MergeFragments(fragments []Fragment, diags *DiagnosticList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fragments {
		s.partials.Merge(f.Scope, f.Node, diags)
	}
}
