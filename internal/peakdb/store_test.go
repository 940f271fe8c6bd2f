package peakdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectra-data/peakmap/internal/peaks"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "peaks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := []peaks.Peak{
		{X: 1.5, Y: -2.5, CorrelationStrength: 0.8, XLabel: "C1", YLabel: "H2", Color: "C0", IdxX: -1, IdxY: -1},
		{X: 3.0, Y: 4.0, CorrelationStrength: -1.2, XLabel: "C3", YLabel: "H4", Color: "C1", IdxX: -1, IdxY: -1},
	}

	id, err := s.SaveSet("test-spectrum", in)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.LoadSet(id)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestLoadSetPreservesOrder(t *testing.T) {
	s := openTestStore(t)

	// Deliberately unsorted input: storage order is the contract.
	in := []peaks.Peak{
		{X: 9, Y: 1, XLabel: "c", YLabel: "z", Color: "C0", IdxX: -1, IdxY: -1},
		{X: 1, Y: 5, XLabel: "a", YLabel: "x", Color: "C0", IdxX: -1, IdxY: -1},
		{X: 4, Y: 3, XLabel: "b", YLabel: "y", Color: "C0", IdxX: -1, IdxY: -1},
	}

	id, err := s.SaveSet("unsorted", in)
	require.NoError(t, err)

	got, err := s.LoadSet(id)
	require.NoError(t, err)
	require.Equal(t, in, got)
}

func TestLoadSetUnknownID(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadSet("no-such-set")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-set")
}

func TestListSets(t *testing.T) {
	s := openTestStore(t)

	id1, err := s.SaveSet("first", []peaks.Peak{{X: 1, Y: 2, XLabel: "a", YLabel: "b"}})
	require.NoError(t, err)
	id2, err := s.SaveSet("second", []peaks.Peak{
		{X: 1, Y: 2, XLabel: "a", YLabel: "b"},
		{X: 3, Y: 4, XLabel: "c", YLabel: "d"},
	})
	require.NoError(t, err)

	sets, err := s.ListSets()
	require.NoError(t, err)
	require.Len(t, sets, 2)

	byID := map[string]SetInfo{}
	for _, info := range sets {
		byID[info.ID] = info
	}
	require.Equal(t, 1, byID[id1].PeakCount)
	require.Equal(t, "first", byID[id1].Name)
	require.Equal(t, 2, byID[id2].PeakCount)
	require.Equal(t, "second", byID[id2].Name)
}

func TestSaveEmptySet(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveSet("empty", nil)
	require.NoError(t, err)

	got, err := s.LoadSet(id)
	require.NoError(t, err)
	require.Empty(t, got)
}
