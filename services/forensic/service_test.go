// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forensic

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianForensics/services/forensic/loader"
)

// Combined sequence "AGATAGATTCTGTCTGTCTG": AGAT x2, TCTG x3, GATA x1.
// Mills, Stone and Adams match; Doe and Hill do not.
const caseFile = `AGATAGAT
TCTGTCTGTCTG
5
Ada Mills 2 AGAT 2 TCTG 3
Jane Doe 2 AGAT 4 TCTG 1
Eve Stone 2 AGAT 2 TCTG 9
Al Adams 1 GATA 1
Bo Hill 3 AGAT 0 TCTG 0 CC 2
`

func caseDataset(t *testing.T) *loader.Dataset {
	t.Helper()
	ds, err := loader.Parse(strings.NewReader(caseFile))
	require.NoError(t, err)
	return ds
}

func newTestService() *Service {
	return NewService(DefaultServiceConfig(), nil)
}

// =============================================================================
// Analyze
// =============================================================================

func TestService_Analyze(t *testing.T) {
	svc := newTestService()

	report, err := svc.Analyze(context.Background(), caseDataset(t))
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id should be a uuid")

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Flagged)
	assert.Equal(t, 2, report.Unmarked)
	assert.Equal(t, 3, report.TreeHeight)
	assert.Equal(t, []string{"Doe, Jane", "Hill, Bo"}, report.UnmarkedNames)
	assert.Equal(t, []string{"Adams, Al", "Mills, Ada", "Stone, Eve"}, report.Remaining)
	assert.GreaterOrEqual(t, report.DurationMs, int64(0))

	require.Len(t, report.Suspects, 3)
	assert.Equal(t, "Adams, Al", report.Suspects[0].Name)
	assert.Equal(t, 1, report.Suspects[0].Hits)
	assert.Equal(t, 1, report.Suspects[0].Threshold)

	mills := report.Suspects[1]
	assert.Equal(t, "Mills, Ada", mills.Name)
	assert.Equal(t, 2, mills.Hits)
	require.Len(t, mills.Markers, 2)
	assert.Equal(t, "TCTG", mills.Markers[1].Pattern)
	assert.Equal(t, 3, mills.Markers[1].Observed)
	assert.True(t, mills.Markers[1].Hit)

	stone := report.Suspects[2]
	assert.Equal(t, 1, stone.Hits)
	assert.False(t, stone.Markers[1].Hit)
	assert.Equal(t, 9, stone.Markers[1].Expected)

	assert.Equal(t, int64(1), svc.Analyses())
}

func TestService_Analyze_DoesNotModifyDataset(t *testing.T) {
	svc := newTestService()
	ds := caseDataset(t)
	before := caseDataset(t)

	_, err := svc.Analyze(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, before, ds)
}

func TestService_Analyze_EmptyDataset(t *testing.T) {
	svc := newTestService()
	report, err := svc.Analyze(context.Background(), &loader.Dataset{
		FirstSequence:  "AG",
		SecondSequence: "TC",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.UnmarkedNames)
	assert.NotNil(t, report.UnmarkedNames)
	assert.Empty(t, report.Suspects)
	assert.Empty(t, report.Remaining)
}

func TestService_Analyze_ZeroMarkerPersonIsSuspect(t *testing.T) {
	svc := newTestService()
	report, err := svc.AnalyzeText(context.Background(), strings.NewReader("AG\nTC\n1\nAmy Zeta 0\n"))
	require.NoError(t, err)

	require.Len(t, report.Suspects, 1)
	assert.Equal(t, "Zeta, Amy", report.Suspects[0].Name)
	assert.Equal(t, 0, report.Suspects[0].Threshold)
	assert.Equal(t, []string{"Zeta, Amy"}, report.Remaining)
}

func TestService_Analyze_Errors(t *testing.T) {
	t.Run("nil dataset", func(t *testing.T) {
		_, err := newTestService().Analyze(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNilDataset)
	})

	t.Run("invalid dataset", func(t *testing.T) {
		ds := caseDataset(t)
		ds.FirstSequence = "agat"
		_, err := newTestService().Analyze(context.Background(), ds)
		assert.ErrorIs(t, err, loader.ErrInvalidInput)
	})

	t.Run("duplicate person", func(t *testing.T) {
		ds := caseDataset(t)
		ds.People = append(ds.People, ds.People[0])
		_, err := newTestService().Analyze(context.Background(), ds)
		assert.ErrorIs(t, err, loader.ErrInvalidInput)
	})

	t.Run("too many people", func(t *testing.T) {
		svc := NewService(ServiceConfig{MaxPeople: 2}, nil)
		_, err := svc.Analyze(context.Background(), caseDataset(t))
		assert.ErrorIs(t, err, ErrTooManyPeople)
		assert.Equal(t, int64(0), svc.Analyses())
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestService().Analyze(ctx, caseDataset(t))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("declared count over the limit", func(t *testing.T) {
		svc := NewService(ServiceConfig{MaxPeople: 10}, nil)
		_, err := svc.AnalyzeText(context.Background(), strings.NewReader("AG\nTC\n1125899906842624\n"))
		assert.ErrorIs(t, err, ErrTooManyPeople)
	})

	t.Run("huge marker count", func(t *testing.T) {
		_, err := newTestService().AnalyzeText(context.Background(),
			strings.NewReader("AG\nTC\n1\nAnna Smith 1125899906842624\n"))
		assert.ErrorIs(t, err, loader.ErrMalformedInput)
	})

	t.Run("malformed text", func(t *testing.T) {
		_, err := newTestService().AnalyzeText(context.Background(), strings.NewReader("AG\nTC\nmany\n"))
		assert.ErrorIs(t, err, loader.ErrMalformedInput)
	})
}

func TestService_Analyze_Concurrent(t *testing.T) {
	svc := newTestService()
	const workers = 8

	var wg sync.WaitGroup
	reports := make([]*Report, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], errs[i] = svc.AnalyzeText(context.Background(), strings.NewReader(caseFile))
		}(i)
	}
	wg.Wait()

	runIDs := make(map[string]bool, workers)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 3, reports[i].Flagged)
		assert.Equal(t, []string{"Doe, Jane", "Hill, Bo"}, reports[i].UnmarkedNames)
		runIDs[reports[i].RunID] = true
	}
	assert.Len(t, runIDs, workers)
	assert.Equal(t, int64(workers), svc.Analyses())
}
