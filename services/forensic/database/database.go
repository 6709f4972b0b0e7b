// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package database is the facade over the profile tree.
//
// A Database holds the two unknown sequences and the root of the profile
// tree. It builds the tree from parsed people, flags profiles that match the
// combined sequences and removes everyone who was not flagged.
//
// # Lifecycle
//
//  1. Load(ctx, people, first, second)
//  2. Flag(ctx)
//  3. UnmarkedNames() / CountMatching() to inspect
//  4. Cleanup(ctx) to keep only profiles of interest
//
// Cleanup before Flag removes every profile; that ordering is the caller's
// responsibility.
//
// # Thread Safety
//
// Database is NOT safe for concurrent use. Wrap the whole Database in one
// lock if it must be shared.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianForensics/services/forensic/bst"
	"github.com/AleutianAI/AleutianForensics/services/forensic/matcher"
	"github.com/AleutianAI/AleutianForensics/services/forensic/profile"
)

// Person is one parsed input record.
type Person struct {
	// Name is the full name, "Last, First".
	Name string

	// Markers in input order.
	Markers []profile.Marker
}

// Database owns the profile tree and the unknown sequences.
type Database struct {
	root   *bst.Node
	first  string
	second string
	logger *slog.Logger
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// New creates an empty Database.
func New(opts ...Option) *Database {
	db := &Database{logger: slog.Default()}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Load sets the unknown sequences and inserts every person in order.
//
// # Description
//
// Each person becomes one tree node keyed by Name with a fresh, unflagged
// profile. Arrival order fixes the tree shape.
//
// # Inputs
//
//   - ctx: Context for tracing.
//   - people: Parsed records with unique names.
//   - first, second: The two unknown sequences.
//
// # Outputs
//
//   - error: Wraps bst.ErrDuplicateKey if a name repeats. People inserted
//     before the duplicate stay in the tree.
func (db *Database) Load(ctx context.Context, people []Person, first, second string) error {
	start := time.Now()
	_, span := startSpan(ctx, "Load", attribute.Int("forensic.people", len(people)))
	defer span.End()
	defer func() { operationDuration.WithLabelValues("load").Observe(time.Since(start).Seconds()) }()

	db.first = first
	db.second = second

	for i, person := range people {
		root, err := bst.Insert(db.root, person.Name, profile.New(person.Markers...))
		if err != nil {
			loadErrors.Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert failed")
			return fmt.Errorf("load record %d: %w", i+1, err)
		}
		db.root = root
		profilesLoaded.Inc()
	}

	height := bst.Height(db.root)
	treeHeight.Observe(float64(height))
	span.SetAttributes(attribute.Int("forensic.tree_height", height))
	db.logger.Debug("database loaded",
		"people", len(people),
		"tree_height", height,
		"combined_length", len(first)+len(second),
	)
	return nil
}

// Flag marks every profile that matches the combined unknown sequences.
//
// Returns the number of profiles newly flagged.
func (db *Database) Flag(ctx context.Context) int {
	start := time.Now()
	_, span := startSpan(ctx, "Flag")
	defer span.End()

	flagged := bst.FlagAll(db.root, matcher.Combine(db.first, db.second))

	profilesFlagged.Add(float64(flagged))
	operationDuration.WithLabelValues("flag").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("forensic.flagged", flagged))
	db.logger.Debug("profiles flagged", "flagged", flagged)
	return flagged
}

// CountMatching returns how many profiles have the given interest status.
func (db *Database) CountMatching(ofInterest bool) int {
	return bst.CountMatching(db.root, ofInterest)
}

// UnmarkedNames returns the unflagged names in level order.
func (db *Database) UnmarkedNames() []string {
	return bst.CollectUnmarked(db.root)
}

// Remove deletes one person by full name. Absent names are ignored.
func (db *Database) Remove(name string) {
	found := bst.Find(db.root, name) != nil
	db.root = bst.Remove(db.root, name)
	if found {
		profilesRemoved.WithLabelValues("explicit").Inc()
	}
}

// Cleanup removes every profile that is not of interest.
//
// Returns the removed names in removal (level) order.
func (db *Database) Cleanup(ctx context.Context) []string {
	start := time.Now()
	_, span := startSpan(ctx, "Cleanup")
	defer span.End()

	root, removed := bst.Cleanup(db.root)
	db.root = root

	profilesRemoved.WithLabelValues("cleanup").Add(float64(len(removed)))
	operationDuration.WithLabelValues("cleanup").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("forensic.removed", len(removed)))
	db.logger.Debug("database cleaned up", "removed", len(removed), "remaining", bst.Len(db.root))
	return removed
}

// Len returns the number of stored profiles.
func (db *Database) Len() int {
	return bst.Len(db.root)
}

// Names returns every stored name in ascending order.
func (db *Database) Names() []string {
	return bst.InOrder(db.root)
}

// Lookup returns the profile stored under name, or nil.
func (db *Database) Lookup(name string) *profile.Profile {
	if n := bst.Find(db.root, name); n != nil {
		return n.Profile
	}
	return nil
}

// Root returns the tree root for external traversal.
func (db *Database) Root() *bst.Node {
	return db.root
}

// SetRoot replaces the tree. Used by tests and tooling.
func (db *Database) SetRoot(root *bst.Node) {
	db.root = root
}

// FirstSequence returns the first unknown sequence, "" before Load.
func (db *Database) FirstSequence() string {
	return db.first
}

// SetFirstSequence overrides the first unknown sequence.
func (db *Database) SetFirstSequence(s string) {
	db.first = s
}

// SecondSequence returns the second unknown sequence, "" before Load.
func (db *Database) SecondSequence() string {
	return db.second
}

// SetSecondSequence overrides the second unknown sequence.
func (db *Database) SetSecondSequence(s string) {
	db.second = s
}
