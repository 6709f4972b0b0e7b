// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) handle(_ context.Context, c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func (r *recorder) last() Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes[len(r.changes)-1]
}

func startWatcher(t *testing.T, path string, rec *recorder) *Watcher {
	t.Helper()
	w, err := New(path, rec.handle, &Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	require.NoError(t, w.Start(ctx))
	return w
}

// =============================================================================
// Tests
// =============================================================================

func TestOp_String(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "unknown", Op(9).String())
}

func TestConvertOp(t *testing.T) {
	assert.Equal(t, OpCreate, convertOp(fsnotify.Create))
	assert.Equal(t, OpWrite, convertOp(fsnotify.Write))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Remove))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Rename))
}

func TestNew_Errors(t *testing.T) {
	rec := &recorder{}

	_, err := New(filepath.Join(t.TempDir(), "missing", "case.txt"), rec.handle, nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "case.txt"), nil, nil)
	assert.Error(t, err)
}

func TestNew_ResolvesPath(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "case.txt"), (&recorder{}).handle, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, filepath.IsAbs(w.Path()))
	assert.False(t, w.IsWatching())
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\n"), 0644))

	rec := &recorder{}
	w := startWatcher(t, path, rec)
	assert.True(t, w.IsWatching())

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("AGAT\n"), 0644))
	}

	require.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	// Give a stray second window time to fire, then check the burst collapsed.
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, rec.count(), 2)
	assert.Equal(t, w.Path(), rec.last().Path)
	assert.GreaterOrEqual(t, rec.last().Events, 1)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\n"), 0644))

	rec := &recorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestWatcher_SeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\n"), 0644))

	rec := &recorder{}
	startWatcher(t, path, rec)

	tmp := filepath.Join(dir, ".case.txt.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("G\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return rec.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_SkipsWhenFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\n"), 0644))

	rec := &recorder{}
	startWatcher(t, path, rec)

	require.NoError(t, os.Remove(path))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.txt")
	w, err := New(path, (&recorder{}).handle, &Options{Debounce: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, w.IsWatching, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, w.IsWatching())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.txt")
	w, err := New(path, (&recorder{}).handle, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

func TestNew_OpensNothingUntilStart(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "case.txt"), (&recorder{}).handle, nil)
	require.NoError(t, err)
	assert.Nil(t, w.watcher)

	assert.NotPanics(t, w.Stop)
	assert.Nil(t, w.watcher)
	assert.False(t, w.IsWatching())
}

func TestWatcher_StartAfterStop(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "case.txt"), (&recorder{}).handle, nil)
	require.NoError(t, err)

	w.Stop()
	assert.ErrorIs(t, w.Start(context.Background()), ErrStopped)
	assert.Nil(t, w.watcher)
	assert.False(t, w.IsWatching())
}
